// Package document implements the typed, lazy document views spec §4.2
// describes: spreadsheet (xlsx/csv), structured text (markdown), plain
// text, PDF structural metadata, and a raw fallback. Dispatch by
// extension/mime_guess is grounded on the Rust original's
// document/dispatch.rs::open_document_with_text_path.
package document

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tags which concrete view a Document holds.
type Kind string

const (
	KindXLSX     Kind = "xlsx"
	KindCSV      Kind = "csv"
	KindPDF      Kind = "pdf"
	KindMarkdown Kind = "markdown"
	KindText     Kind = "text"
	KindRaw      Kind = "raw"
)

// ErrNoTextPath is returned by StructuredContent/TextContent when a PDF's
// content assertions are invoked without a text_path (spec §7 E_NO_TEXT:
// "reported as an assertion-level failure, not a refusal").
var ErrNoTextPath = errors.New("pdf content assertion invoked without text_path")

// Document is a dispatched, opened view over one artifact.
type Document struct {
	path string
	kind Kind

	spreadsheet Spreadsheet
	markdown    *MarkdownView
	text        *TextView
	pdf         *PDFView
	raw         *RawView

	textPath      string
	pdfContent    *MarkdownView
	pdfContentErr error
	pdfContentSet bool
}

// Open dispatches on extension (falling back to the path's own suffix)
// case-insensitively, opening the matching concrete view. textPath is the
// sibling markdown file produced by the external PDF-text-extraction tool
// (spec §1 "deliberately out of scope"); it is only consulted lazily, when
// a PDF's content assertions run.
func Open(path, extension, textPath string) (*Document, error) {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	if ext == "" {
		ext = strings.ToLower(strings.TrimPrefix(extOf(path), "."))
	}

	switch ext {
	case "xlsx", "xls":
		sheet, err := OpenXLSX(path)
		if err != nil {
			return nil, err
		}
		return &Document{path: path, kind: KindXLSX, spreadsheet: sheet, textPath: textPath}, nil
	case "csv":
		sheet, err := OpenCSV(path)
		if err != nil {
			return nil, err
		}
		return &Document{path: path, kind: KindCSV, spreadsheet: sheet, textPath: textPath}, nil
	case "pdf":
		pdf, err := OpenPDF(path)
		if err != nil {
			return nil, err
		}
		return &Document{path: path, kind: KindPDF, pdf: pdf, textPath: textPath}, nil
	case "md", "markdown":
		md, err := OpenMarkdown(path)
		if err != nil {
			return nil, err
		}
		return &Document{path: path, kind: KindMarkdown, markdown: md, textPath: textPath}, nil
	case "txt", "text":
		tv, err := OpenText(path)
		if err != nil {
			return nil, err
		}
		return &Document{path: path, kind: KindText, text: tv, textPath: textPath}, nil
	default:
		rv, err := OpenRaw(path)
		if err != nil {
			return nil, err
		}
		return &Document{path: path, kind: KindRaw, raw: rv, textPath: textPath}, nil
	}
}

func extOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	return path[idx+1:]
}

// Path returns the originating artifact path.
func (d *Document) Path() string { return d.path }

// Kind returns the dispatched view kind.
func (d *Document) Kind() Kind { return d.kind }

// FormatMatches reports whether a fingerprint's declared format string
// applies to this document (spec §4.5 step 4).
func (d *Document) FormatMatches(declared string) bool {
	return string(d.kind) == strings.ToLower(declared)
}

// Spreadsheet returns the spreadsheet view for xlsx/csv documents.
func (d *Document) Spreadsheet() (Spreadsheet, bool) {
	return d.spreadsheet, d.spreadsheet != nil
}

// PDF returns the PDF structural view.
func (d *Document) PDF() (*PDFView, bool) {
	return d.pdf, d.pdf != nil
}

// PlainText returns the plain-text view for text-format documents.
func (d *Document) PlainText() (*TextView, bool) {
	return d.text, d.text != nil
}

// StructuredContent returns the markdown-parsed content view used by
// heading/table/section assertions: the document's own parse for
// markdown, or a lazily-loaded parse of the PDF's text_path for PDF
// (spec §4.2 "dispatched to an inner structured-text view").
func (d *Document) StructuredContent() (*MarkdownView, error) {
	switch d.kind {
	case KindMarkdown:
		return d.markdown, nil
	case KindPDF:
		return d.loadPDFContent()
	default:
		return nil, fmt.Errorf("format %s has no structured content view", d.kind)
	}
}

// TextContent returns the flat text content assertions consult
// (text_contains/text_regex/text_near), available for markdown, plain
// text, and PDF-with-text_path documents (grounded on the Rust original's
// extract.rs::content_text, which additionally covers Text documents
// beyond content_document's Markdown/Pdf pair).
func (d *Document) TextContent() (string, error) {
	switch d.kind {
	case KindMarkdown:
		return d.markdown.Content(), nil
	case KindText:
		return d.text.Content(), nil
	case KindPDF:
		md, err := d.loadPDFContent()
		if err != nil {
			return "", err
		}
		return md.Content(), nil
	default:
		return "", fmt.Errorf("format %s has no text content view", d.kind)
	}
}

func (d *Document) loadPDFContent() (*MarkdownView, error) {
	if d.pdfContentSet {
		return d.pdfContent, d.pdfContentErr
	}
	d.pdfContentSet = true

	if d.textPath == "" {
		d.pdfContentErr = ErrNoTextPath
		return nil, d.pdfContentErr
	}

	md, err := OpenMarkdown(d.textPath)
	if err != nil {
		d.pdfContentErr = fmt.Errorf("read pdf text_path %s: %w", d.textPath, err)
		return nil, d.pdfContentErr
	}
	d.pdfContent = md
	return md, nil
}

// IsSparseText reports whether a loaded PDF text_path looks too short to
// carry meaningful content (spec §7 W_SPARSE_TEXT), using a small fixed
// character threshold.
func (d *Document) IsSparseText() bool {
	if d.pdfContent == nil {
		return false
	}
	return len(strings.TrimSpace(d.pdfContent.Content())) < sparseTextThreshold
}

const sparseTextThreshold = 16

// Close releases any OS resources the concrete view holds.
func (d *Document) Close() error {
	if x, ok := d.spreadsheet.(*XLSXView); ok {
		return x.Close()
	}
	return nil
}
