package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/ksysoev/todo-tags/pkg/action"
	"github.com/ksysoev/todo-tags/pkg/core"
	"github.com/ksysoev/todo-tags/pkg/report"
	"github.com/spf13/pflag"
)

var (
	loadDotEnv  = godotenv.Load
	newExporter = action.DefaultExporter
	getenv      = os.Getenv
)

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath      string
	logLevel        string
	tagsFilter      []string
	filenameFilter  string
	directoryFilter []string
	createIssues    bool
	repo            string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("todo-tags", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Find TODO comments in code files.\n\nUsage: todo-tags [flags] <directory>\n\n")
		fs.PrintDefaults()
	}

	var opts options
	fs.StringSliceVarP(&opts.tagsFilter, "tags_filter", "t", nil, "Filter the results by these tags. Multiple tags are allowed.")
	fs.StringVarP(&opts.filenameFilter, "filename_filter", "f", "", "Filter files based on the start of the filename.")
	fs.StringSliceVarP(&opts.directoryFilter, "directory_filter", "d", nil, "Filter files based on these directory names. Multiple directories are allowed.")
	fs.StringVarP(&opts.configPath, "config", "c", "", "Path to the TOML config file (default "+core.DefaultConfigFile+" if present).")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error.")
	fs.BoolVar(&opts.createIssues, "create-issues", false, "Create GitHub issues for the reported TODOs.")
	fs.StringVar(&opts.repo, "repo", "", "GitHub repository (owner/name) to create issues in.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, "error:", err)
		return exitUsage
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "error: the following arguments are required: directory")
		fs.Usage()
		return exitUsage
	}

	cfg, err := buildConfig(fs, opts)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFatal
	}

	logger := log.NewWithOptions(stderr, log.Options{
		Level:  parseLogLevel(cfg.LogLevel),
		Prefix: "todo-tags",
	})

	dir := fs.Arg(0)

	text := report.NewText(stdout)
	summary, err := core.NewAggregator(cfg, text, logger).Run(dir)
	if err != nil {
		logger.Error("Scan failed", "err", err)
		return exitFatal
	}
	if err := text.Err(); err != nil {
		logger.Error("Failed to write report", "err", err)
		return exitFatal
	}

	if !opts.createIssues {
		return exitOK
	}

	if err := exportIssues(ctx, cfg.GitHub, summary, logger); err != nil {
		logger.Error("Issue export failed", "err", err)
		return exitFatal
	}

	return exitOK
}

// buildConfig layers the config file under the command line flags
func buildConfig(fs *pflag.FlagSet, opts options) (core.Config, error) {
	cfg, err := core.LoadConfig(opts.configPath)
	if err != nil {
		return core.Config{}, err
	}

	if fs.Changed("tags_filter") {
		cfg.TagsFilter = opts.tagsFilter
	}
	if fs.Changed("filename_filter") {
		cfg.FilenameFilter = opts.filenameFilter
	}
	if fs.Changed("directory_filter") {
		cfg.DirectoryFilter = opts.directoryFilter
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if fs.Changed("repo") {
		cfg.GitHub.Repository = opts.repo
	}

	if err := cfg.Validate(); err != nil {
		return core.Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func exportIssues(ctx context.Context, cfg core.GitHubConfig, summary *core.Summary, logger *log.Logger) error {
	// .env is optional
	_ = loadDotEnv()

	cfg.Token = getenv("GITHUB_TOKEN")
	if cfg.Token == "" {
		return errors.New("GITHUB_TOKEN environment variable is required to create issues")
	}
	if cfg.Repository == "" {
		return errors.New("a repository is required to create issues, use --repo or github.repository")
	}

	exporter, err := newExporter(cfg.Token, cfg.Repository, cfg)
	if err != nil {
		return err
	}

	results, err := exporter.CreateIssuesFromTodos(ctx, summary.Records)
	for _, res := range results {
		if res.Skipped {
			logger.Info("Issue already exists", "file", res.Record.FilePath, "line", res.Record.LineNumber, "url", res.URL)
			continue
		}
		logger.Info("Created issue", "file", res.Record.FilePath, "line", res.Record.LineNumber, "url", res.URL)
	}

	return err
}

func parseLogLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
