package parser

import (
	"fmt"
	"strings"
)

// FormatError reports a single malformed cell value. It is always
// attributable to one field of one row.
type FormatError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// MissingColumnsError is a file-level precondition failure raised before any
// row is processed. It names every missing required column.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// UnsupportedFormatError is raised for any file extension other than the
// supported container formats.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %s", e.Ext)
}
