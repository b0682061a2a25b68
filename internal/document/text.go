package document

import (
	"fmt"
	"os"
	"strings"
)

// TextView is the plain-text document view (spec §4.2): whole content and
// a line count, no structural parsing.
type TextView struct {
	path    string
	content string
	lines   []string
}

// OpenText reads path as plain text.
func OpenText(path string) (*TextView, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open text %s: %w", path, err)
	}
	return &TextView{
		path:    path,
		content: string(raw),
		lines:   strings.Split(string(raw), "\n"),
	}, nil
}

func (v *TextView) Path() string { return v.path }

// Content returns the full file content, unmodified.
func (v *TextView) Content() string { return v.content }

// Lines returns the content split on "\n", preserving blank and trailing
// empty lines (grounded on the Rust original's text.rs::lines).
func (v *TextView) Lines() []string { return v.lines }

// LineCount returns len(Lines()).
func (v *TextView) LineCount() int { return len(v.lines) }
