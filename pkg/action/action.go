// Package action runs the TODO report as a GitHub Action step.
package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ksysoev/todo-tags/pkg/core"
	"github.com/ksysoev/todo-tags/pkg/github"
	"github.com/ksysoev/todo-tags/pkg/report"
	"github.com/sethvargo/go-githubactions"
)

// IssueExporter publishes TODO records as issues
type IssueExporter interface {
	CreateIssuesFromTodos(ctx context.Context, records []core.TodoRecord) ([]github.IssueResult, error)
}

// ExporterFactory creates an issue exporter for a repository
type ExporterFactory func(token, repoFullName string, cfg core.GitHubConfig) (IssueExporter, error)

// Options holds the dependencies of Run
type Options struct {
	Stdout      io.Writer
	Logger      *log.Logger
	NewExporter ExporterFactory
}

// DefaultExporter creates the GitHub API backed exporter
func DefaultExporter(token, repoFullName string, cfg core.GitHubConfig) (IssueExporter, error) {
	return github.NewClient(token, repoFullName, cfg)
}

// Run scans the workspace, prints the report, publishes outputs and the step
// summary, and optionally creates issues for the reported TODOs
func Run(ctx context.Context, a *githubactions.Action, opts Options) error {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.NewExporter == nil {
		opts.NewExporter = DefaultExporter
	}

	cfg, err := configFromInputs(a)
	if err != nil {
		return err
	}

	dir := a.GetInput("directory")
	if dir == "" {
		dir = a.Getenv("GITHUB_WORKSPACE")
	}
	if dir == "" {
		dir = "."
	}

	createIssues := false
	if v := a.GetInput("create_issues"); v != "" {
		if createIssues, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("invalid create_issues input %q: %w", v, err)
		}
	}

	a.Infof("Scanning for TODO comments in: %s", dir)

	a.Group("TODO report")
	text := report.NewText(opts.Stdout)
	summary, err := core.NewAggregator(cfg, text, opts.Logger).Run(dir)
	a.EndGroup()

	if err != nil {
		return err
	}
	if err := text.Err(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	a.Infof("Found %d TODO comments in %d files", summary.Total, summary.Files)

	tagCounts, err := TagCountsJSON(summary.Tags)
	if err != nil {
		return err
	}

	a.SetOutput("total_todos", strconv.Itoa(summary.Total))
	a.SetOutput("tag_counts", tagCounts)
	a.AddStepSummary(report.Markdown(summary))

	if !createIssues {
		return nil
	}

	return exportIssues(ctx, a, opts.NewExporter, cfg.GitHub, summary.Records)
}

func exportIssues(ctx context.Context, a *githubactions.Action, newExporter ExporterFactory, cfg core.GitHubConfig, records []core.TodoRecord) error {
	token := a.GetInput("github_token")
	if token == "" {
		token = a.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return fmt.Errorf("github_token input is required to create issues")
	}

	repoFullName := a.Getenv("GITHUB_REPOSITORY")
	if repoFullName == "" {
		return fmt.Errorf("GITHUB_REPOSITORY environment variable is not set")
	}

	exporter, err := newExporter(token, repoFullName, cfg)
	if err != nil {
		return fmt.Errorf("failed to init GitHub client: %w", err)
	}

	results, err := exporter.CreateIssuesFromTodos(ctx, records)

	created := 0
	for _, res := range results {
		if res.Skipped {
			a.Infof("Issue already exists for TODO in %s (line %d): %s", res.Record.FilePath, res.Record.LineNumber, res.URL)
			continue
		}
		created++
		a.Infof("Created issue for TODO in %s (line %d): %s", res.Record.FilePath, res.Record.LineNumber, res.URL)
	}

	a.SetOutput("issues_created", strconv.Itoa(created))

	if err != nil {
		return fmt.Errorf("failed to create issues: %w", err)
	}

	return nil
}

// configFromInputs builds the scanner config from action inputs
func configFromInputs(a *githubactions.Action) (core.Config, error) {
	cfg := core.DefaultConfig()

	if exts := SplitList(a.GetInput("extensions")); len(exts) > 0 {
		cfg.Extensions = exts
	}

	cfg.FilenameFilter = a.GetInput("filename_filter")
	cfg.DirectoryFilter = SplitList(a.GetInput("directory_filter"))
	cfg.TagsFilter = SplitList(a.GetInput("tags_filter"))
	cfg.GitHub.IssueTitlePrefix = a.GetInput("issue_title_prefix")

	if err := cfg.Validate(); err != nil {
		return core.Config{}, fmt.Errorf("invalid inputs: %w", err)
	}

	return cfg, nil
}

// SplitList splits a comma or newline separated input into trimmed values
func SplitList(input string) []string {
	var values []string
	for _, field := range strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == '\n' }) {
		if v := strings.TrimSpace(field); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// TagCountsJSON encodes tag counts as a JSON object keeping first-seen order
func TagCountsJSON(tags *core.TagCounter) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, e := range tags.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(e.Tag)
		if err != nil {
			return "", fmt.Errorf("failed to encode tag %q: %w", e.Tag, err)
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Count))
	}

	buf.WriteByte('}')
	return buf.String(), nil
}
