package document

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFView is the structural document view over a PDF (spec §4.2): page
// count and the trailer Info dictionary, following the teacher's
// `api.PageCount(f, nil)` usage in internal/jobs/common/pdf.go. Content
// assertions on a PDF are dispatched to an inner MarkdownView loaded from
// the record's text_path, not from this view.
type PDFView struct {
	path       string
	pageCount  int
	metadata   map[string]string
	sortedKeys []string
}

// OpenPDF reads path's page count and trailer Info dictionary
// (SUPPLEMENTED FEATURE: metadata read from the trailer Info dict rather
// than XMP, grounded on the Rust original's pdf.rs::metadata, using
// pdfcpu's Properties API as the Go-ecosystem equivalent of lopdf's
// trailer walk).
func OpenPDF(path string) (*PDFView, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return nil, fmt.Errorf("read page count of %s: %w", path, err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("read metadata of %s: %w", path, err)
	}

	props, err := api.Properties(f, nil)
	if err != nil {
		return nil, fmt.Errorf("read metadata of %s: %w", path, err)
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &PDFView{path: path, pageCount: pageCount, metadata: props, sortedKeys: keys}, nil
}

func (v *PDFView) Path() string { return v.path }

// PageCount returns the document's page count.
func (v *PDFView) PageCount() int { return v.pageCount }

// Metadata returns the trailer Info dictionary as key/value strings. The
// returned map carries no key order; the sorted key list is internal to
// MetadataValue.
func (v *PDFView) Metadata() map[string]string { return v.metadata }

// MetadataValue looks up key case-insensitively (SPEC_FULL.md supplemented
// features).
func (v *PDFView) MetadataValue(key string) (string, bool) {
	for _, k := range v.sortedKeys {
		if strings.EqualFold(k, key) {
			return v.metadata[k], true
		}
	}
	return "", false
}
