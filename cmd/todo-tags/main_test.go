package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ksysoev/todo-tags/pkg/action"
	"github.com/ksysoev/todo-tags/pkg/core"
	"github.com/ksysoev/todo-tags/pkg/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sep = "----------------------------------------\n"

func setupProject(t *testing.T) string {
	t.Helper()

	t.Chdir(t.TempDir())

	root := t.TempDir()
	files := map[string]string{
		"engine/foobar.cpp": "// TODO: fix this #bug\nint a;\n",
		"game/barfoo.cpp":   "// TODO implement caching #perf #later\n// still thinking about eviction\nreal_code();\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	return root
}

func runCLI(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Report(t *testing.T) {
	root := setupProject(t)

	code, stdout, _ := runCLI(root)

	require.Equal(t, exitOK, code)
	want := "\n=========" + root + "=========\n\n" +
		"File: foobar.cpp\nLine 2\nTags: #bug\nDescription: fix this\n" + sep +
		"File: barfoo.cpp\nLine 3\nTags: #perf #later\nDescription: implement caching\nstill thinking about eviction\n" + sep +
		"\nTotal TODOs: 2\nTODOs per Tag:\n#bug: 1\n#perf: 1\n#later: 1\n"
	assert.Equal(t, want, stdout)
}

func TestRun_Filters(t *testing.T) {
	root := setupProject(t)

	tests := []struct {
		name      string
		args      []string
		wantFiles []string
		wantTotal string
	}{
		{name: "Tag filter", args: []string{"-t", "#perf"}, wantFiles: []string{"barfoo.cpp"}, wantTotal: "Total TODOs: 2"},
		{name: "Repeated tag filter", args: []string{"--tags_filter", "#perf", "-t", "#bug"}, wantFiles: []string{"foobar.cpp", "barfoo.cpp"}, wantTotal: "Total TODOs: 2"},
		{name: "Comma tag filter", args: []string{"-t", "#nope,#bug"}, wantFiles: []string{"foobar.cpp"}, wantTotal: "Total TODOs: 2"},
		{name: "Filename filter", args: []string{"-f", "foo"}, wantFiles: []string{"foobar.cpp"}, wantTotal: "Total TODOs: 1"},
		{name: "Directory filter", args: []string{"--directory_filter", "game"}, wantFiles: []string{"barfoo.cpp"}, wantTotal: "Total TODOs: 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, _ := runCLI(append(tt.args, root)...)

			require.Equal(t, exitOK, code)
			assert.Contains(t, stdout, tt.wantTotal)
			for _, f := range []string{"foobar.cpp", "barfoo.cpp"} {
				if contains(tt.wantFiles, f) {
					assert.Contains(t, stdout, "File: "+f)
				} else {
					assert.NotContains(t, stdout, "File: "+f)
				}
			}
		})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestRun_ConfigFile(t *testing.T) {
	root := setupProject(t)
	require.NoError(t, os.WriteFile(core.DefaultConfigFile, []byte(`tags_filter = ["#bug"]`), 0644))

	code, stdout, _ := runCLI(root)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "File: foobar.cpp")
	assert.NotContains(t, stdout, "File: barfoo.cpp")

	code, stdout, _ = runCLI("-t", "#perf", root)
	require.Equal(t, exitOK, code)
	assert.NotContains(t, stdout, "File: foobar.cpp")
	assert.Contains(t, stdout, "File: barfoo.cpp")
}

func TestRun_Errors(t *testing.T) {
	root := setupProject(t)

	code, _, stderr := runCLI()
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "required: directory")

	code, _, _ = runCLI("--unknown", root)
	assert.Equal(t, exitUsage, code)

	code, _, stderr = runCLI(root, "-t")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "flag needs an argument")

	code, _, _ = runCLI("--help")
	assert.Equal(t, exitOK, code)

	code, stdout, stderr := runCLI(filepath.Join(root, "missing"))
	assert.Equal(t, exitFatal, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Scan failed")

	code, _, stderr = runCLI("--config", filepath.Join(root, "missing.toml"), root)
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr, "failed to load config")

	code, _, _ = runCLI("--log-level", "loud", root)
	assert.Equal(t, exitFatal, code)
}

type stubExporter struct {
	token   string
	repo    string
	records []core.TodoRecord
}

func (s *stubExporter) CreateIssuesFromTodos(_ context.Context, records []core.TodoRecord) ([]github.IssueResult, error) {
	s.records = records
	return []github.IssueResult{{Record: records[0], URL: "https://github.com/ksysoev/engine/issues/1"}}, nil
}

func stubGlobals(t *testing.T, env map[string]string) *stubExporter {
	t.Helper()

	stub := &stubExporter{}
	origLoad, origExporter, origGetenv := loadDotEnv, newExporter, getenv
	t.Cleanup(func() {
		loadDotEnv, newExporter, getenv = origLoad, origExporter, origGetenv
	})

	loadDotEnv = func(...string) error { return nil }
	getenv = func(key string) string { return env[key] }
	newExporter = func(token, repo string, _ core.GitHubConfig) (action.IssueExporter, error) {
		stub.token, stub.repo = token, repo
		return stub, nil
	}

	return stub
}

func TestRun_CreateIssues(t *testing.T) {
	root := setupProject(t)
	stub := stubGlobals(t, map[string]string{"GITHUB_TOKEN": "secret"})

	code, _, stderr := runCLI("--create-issues", "--repo", "ksysoev/engine", "-t", "#bug", root)

	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "secret", stub.token)
	assert.Equal(t, "ksysoev/engine", stub.repo)
	require.Len(t, stub.records, 1)
	assert.Equal(t, "fix this", stub.records[0].Description)
	assert.Contains(t, stderr, "Created issue")
}

func TestRun_CreateIssuesRequiresTokenAndRepo(t *testing.T) {
	root := setupProject(t)

	stubGlobals(t, map[string]string{})
	code, _, stderr := runCLI("--create-issues", "--repo", "ksysoev/engine", root)
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr, "GITHUB_TOKEN")

	stubGlobals(t, map[string]string{"GITHUB_TOKEN": "secret"})
	code, _, stderr = runCLI("--create-issues", root)
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr, "repository is required")
}
