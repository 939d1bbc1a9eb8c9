// Package report renders aggregation results for humans.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ksysoev/todo-tags/pkg/core"
)

const separator = "----------------------------------------"

// Text writes the plain text report to a writer as records arrive
type Text struct {
	w   io.Writer
	err error
}

// NewText creates a text reporter writing to w
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// Err returns the first write error, if any
func (t *Text) Err() error {
	return t.err
}

// Banner prints the directory header
func (t *Text) Banner(root string) {
	t.printf("\n=========%s=========\n\n", root)
}

// Record prints a single TODO entry
func (t *Text) Record(rec core.TodoRecord) {
	t.printf("File: %s\n", filepath.Base(rec.FilePath))
	t.printf("Line %d\n", rec.LineNumber)

	if len(rec.Tags) > 0 {
		t.printf("Tags: %s\n", strings.Join(rec.Tags, " "))
	} else {
		t.printf("No Tags\n")
	}

	if desc := strings.TrimSpace(rec.Description); desc != "" {
		t.printf("Description: %s\n", desc)
	} else {
		t.printf("No Description\n")
	}

	t.printf("%s\n", separator)
}

// Totals prints the total count and the per tag counts
func (t *Text) Totals(total int, tags *core.TagCounter) {
	t.printf("\nTotal TODOs: %d\n", total)
	t.printf("TODOs per Tag:\n")

	for _, e := range tags.Entries() {
		t.printf("%s: %d\n", e.Tag, e.Count)
	}
}

func (t *Text) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}
