package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ksysoev/todo-tags/pkg/core"
)

// Markdown renders a summary as a GitHub flavoured markdown document
func Markdown(summary *core.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## TODOs in `%s`\n\n", summary.Root)
	fmt.Fprintf(&b, "Scanned %d files, found **%d** TODOs.\n\n", summary.Files, summary.Total)

	if len(summary.Records) > 0 {
		b.WriteString("| File | Line | Tags | Description |\n")
		b.WriteString("|------|------|------|-------------|\n")

		for _, rec := range summary.Records {
			tags := "No Tags"
			if len(rec.Tags) > 0 {
				tags = strings.Join(rec.Tags, " ")
			}

			desc := strings.TrimSpace(rec.Description)
			if desc == "" {
				desc = "No Description"
			}

			fmt.Fprintf(&b, "| %s | %d | %s | %s |\n",
				escapeCell(filepath.Base(rec.FilePath)), rec.LineNumber, escapeCell(tags), escapeCell(desc))
		}

		b.WriteString("\n")
	}

	if summary.Tags != nil && summary.Tags.Len() > 0 {
		b.WriteString("| Tag | Count |\n")
		b.WriteString("|-----|-------|\n")

		for _, e := range summary.Tags.Entries() {
			fmt.Fprintf(&b, "| %s | %d |\n", escapeCell(e.Tag), e.Count)
		}
	}

	return b.String()
}

// escapeCell keeps a value inside a single markdown table cell
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}
