package anchor

import (
	"fmt"
	"regexp"

	"github.com/jackzampolin/fingerprint/internal/document"
)

func resolveSection(params map[string]interface{}, doc *document.Document) (*Resolved, error) {
	md, err := doc.StructuredContent()
	if err != nil {
		return nil, err
	}
	heading, err := requireString(params, "heading")
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(heading)
	if err != nil {
		return nil, fmt.Errorf("invalid heading pattern: %w", err)
	}

	for _, sec := range md.Sections() {
		if sec.Heading != nil && re.MatchString(sec.Heading.Text) {
			return &Resolved{
				Metadata: map[string]any{
					"start_line": sec.StartLine,
					"end_line":   sec.EndLine,
					"heading":    sec.Heading.Text,
				},
				Content: sec.Content,
			}, nil
		}
	}
	return nil, fmt.Errorf("no section under heading matching %q", heading)
}
