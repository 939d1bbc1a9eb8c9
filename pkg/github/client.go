package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/ksysoev/todo-tags/pkg/core"
	"golang.org/x/oauth2"
)

// Client handles interaction with the GitHub API
type Client struct {
	client *github.Client
	owner  string
	repo   string
	config core.GitHubConfig
}

// IssueResult describes what happened to a single TODO record during export
type IssueResult struct {
	Record  core.TodoRecord
	Title   string
	URL     string
	Skipped bool
}

// NewClient creates a new GitHub client authenticated with token
func NewClient(token, repoFullName string, config core.GitHubConfig) (*Client, error) {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return newClient(github.NewClient(tc), repoFullName, config)
}

// newClientWithHTTP creates a client talking to baseURL, used against test servers
func newClientWithHTTP(httpClient *http.Client, baseURL, repoFullName string, config core.GitHubConfig) (*Client, error) {
	gh := github.NewClient(httpClient)

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %s: %w", baseURL, err)
	}
	gh.BaseURL = u

	return newClient(gh, repoFullName, config)
}

func newClient(gh *github.Client, repoFullName string, config core.GitHubConfig) (*Client, error) {
	owner, repo, err := SplitRepository(repoFullName)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: gh,
		owner:  owner,
		repo:   repo,
		config: config,
	}, nil
}

// SplitRepository splits an owner/name repository reference
func SplitRepository(repoFullName string) (owner, repo string, err error) {
	parts := strings.Split(repoFullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/name", repoFullName)
	}

	return parts[0], parts[1], nil
}

// CreateIssuesFromTodos creates GitHub issues from TODO records.
// Records whose issue title already exists in the repository are skipped.
func (c *Client) CreateIssuesFromTodos(ctx context.Context, records []core.TodoRecord) ([]IssueResult, error) {
	existing, err := c.existingTitles(ctx)
	if err != nil {
		return nil, err
	}

	var results []IssueResult

	for _, rec := range records {
		title := c.IssueTitle(rec)

		if issueURL, ok := existing[title]; ok {
			results = append(results, IssueResult{Record: rec, Title: title, URL: issueURL, Skipped: true})
			continue
		}

		body := IssueBody(rec)
		labels := IssueLabels(rec)

		issue, _, err := c.client.Issues.Create(ctx, c.owner, c.repo, &github.IssueRequest{
			Title:  &title,
			Body:   &body,
			Labels: &labels,
		})
		if err != nil {
			return results, fmt.Errorf("failed to create issue for TODO in %s (line %d): %w",
				rec.FilePath, rec.LineNumber, err)
		}

		existing[title] = issue.GetHTMLURL()
		results = append(results, IssueResult{Record: rec, Title: title, URL: issue.GetHTMLURL()})
	}

	return results, nil
}

// existingTitles maps the titles of all issues in the repository to their URLs
func (c *Client) existingTitles(ctx context.Context) (map[string]string, error) {
	titles := make(map[string]string)

	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		issues, resp, err := c.client.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues of %s/%s: %w", c.owner, c.repo, err)
		}

		for _, issue := range issues {
			titles[issue.GetTitle()] = issue.GetHTMLURL()
		}

		if resp == nil || resp.NextPage == 0 {
			return titles, nil
		}
		opts.Page = resp.NextPage
	}
}

// IssueTitle builds the issue title with the configured prefix
func (c *Client) IssueTitle(rec core.TodoRecord) string {
	title, _, _ := strings.Cut(strings.TrimSpace(rec.Description), "\n")
	title = strings.TrimSpace(title)

	if title == "" {
		title = fmt.Sprintf("TODO in %s:%d", filepath.Base(rec.FilePath), rec.LineNumber)
	}

	if c.config.IssueTitlePrefix != "" {
		title = fmt.Sprintf("%s %s", c.config.IssueTitlePrefix, title)
	}

	return title
}

// IssueBody builds the issue body for a record
func IssueBody(rec core.TodoRecord) string {
	body := fmt.Sprintf("Found in `%s` (line %d):\n\n", rec.FilePath, rec.LineNumber)
	return body + strings.TrimSpace(rec.Description)
}

// IssueLabels turns record tags into label names
func IssueLabels(rec core.TodoRecord) []string {
	labels := make([]string, 0, len(rec.Tags))
	for _, tag := range rec.Tags {
		labels = append(labels, strings.TrimPrefix(tag, "#"))
	}
	return labels
}
