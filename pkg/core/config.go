package core

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultConfigFile is looked up in the working directory when no config path is given
const DefaultConfigFile = ".todo-tags.toml"

// Config represents the scanner configuration
type Config struct {
	Extensions      []string     `toml:"extensions"`
	FilenameFilter  string       `toml:"filename_filter"`
	DirectoryFilter []string     `toml:"directory_filter"`
	TagsFilter      []string     `toml:"tags_filter"`
	LogLevel        string       `toml:"log_level"`
	GitHub          GitHubConfig `toml:"github"`
}

// GitHubConfig represents the issue export configuration
type GitHubConfig struct {
	Token            string `toml:"-"`
	Repository       string `toml:"repository"`
	IssueTitlePrefix string `toml:"issue_title_prefix"`
}

// DefaultConfig returns the configuration used when nothing else is set
func DefaultConfig() Config {
	return Config{
		Extensions: append([]string(nil), CFamily.Extensions...),
		LogLevel:   "info",
	}
}

// LoadConfig reads a TOML config file on top of the defaults.
// An empty path falls back to DefaultConfigFile, which may be absent.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	return cfg, nil
}

// Filter builds the file filter described by the config
func (c Config) Filter() FileFilter {
	return FileFilter{
		FilenamePrefix:      c.FilenameFilter,
		DirectorySubstrings: c.DirectoryFilter,
		TagAllowlist:        c.TagsFilter,
	}
}

// Validate checks the config and normalises extensions to start with a dot
func (c *Config) Validate() error {
	if len(c.Extensions) == 0 {
		return errors.New("at least one file extension is required")
	}

	for i, ext := range c.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" || ext == "." {
			return fmt.Errorf("invalid file extension %q", c.Extensions[i])
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	return nil
}
