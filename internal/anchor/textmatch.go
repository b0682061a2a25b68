package anchor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jackzampolin/fingerprint/internal/document"
)

func resolveTextMatch(params map[string]interface{}, doc *document.Document) (*Resolved, error) {
	content, err := doc.TextContent()
	if err != nil {
		return nil, err
	}
	anchorPattern, err := requireString(params, "anchor")
	if err != nil {
		return nil, err
	}
	pattern, err := requireString(params, "pattern")
	if err != nil {
		return nil, err
	}
	withinChars := getInt(params, "within_chars", 0)

	anchorRe, err := regexp.Compile(anchorPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid anchor pattern: %w", err)
	}
	patternRe, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	anchors := anchorRe.FindAllStringIndex(content, -1)
	if len(anchors) == 0 {
		return nil, fmt.Errorf("anchor %q not found", anchorPattern)
	}
	matches := patternRe.FindAllStringIndex(content, -1)

	for _, m := range matches {
		for _, a := range anchors {
			if textMatchDistance(a[0], a[1], m[0], m[1], content) <= withinChars {
				line, charOffset := lineAndOffset(content, m[0])
				return &Resolved{
					Metadata: map[string]any{
						"line":        line,
						"char_offset": charOffset,
						"matched":     content[m[0]:m[1]],
					},
					Content: content[m[0]:m[1]],
				}, nil
			}
		}
	}
	return nil, fmt.Errorf("no match of %q found within %d characters of anchor %q", pattern, withinChars, anchorPattern)
}

// textMatchDistance mirrors internal/assertion's text_near distance rule
// (spec §4.3/§8): bidirectional character gap, whitespace-only gaps under
// 10 chars collapse to 0.
func textMatchDistance(aStart, aEnd, bStart, bEnd int, content string) int {
	var gapStart, gapEnd int
	if bStart >= aEnd {
		gapStart, gapEnd = aEnd, bStart
	} else {
		gapStart, gapEnd = bEnd, aStart
	}
	if gapEnd <= gapStart {
		return 0
	}
	gap := content[gapStart:gapEnd]
	gapChars := utf8.RuneCountInString(gap)
	if gapChars < 10 && strings.TrimSpace(gap) == "" {
		return 0
	}
	return gapChars
}

// lineAndOffset converts a byte offset into a document into a 1-indexed
// line number and a 0-indexed character offset within that line.
func lineAndOffset(content string, offset int) (int, int) {
	line := 1
	lineStart := 0
	for i := 0; i < offset && i < len(content); i++ {
		if content[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	if offset > len(content) {
		offset = len(content)
	}
	return line, utf8.RuneCountInString(content[lineStart:offset])
}
