package document

import (
	"fmt"
	"os"
)

// RawView is the fallback document view for any extension not recognized
// as one of the four typed families (spec §4.2 "plus a raw fallback").
// No assertion vocabulary targets it directly; it exists so
// filename_regex (the one universal, format-independent assertion) still
// has a view to run against.
type RawView struct {
	path  string
	bytes []byte
}

// OpenRaw reads path's bytes without interpretation.
func OpenRaw(path string) (*RawView, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open raw %s: %w", path, err)
	}
	return &RawView{path: path, bytes: b}, nil
}

func (v *RawView) Path() string { return v.path }

// Bytes returns the file's raw content.
func (v *RawView) Bytes() []byte { return v.bytes }
