package tabular

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrMissingColumn     = errors.New("missing column")
	ErrParseCell         = errors.New("unparseable cell")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file has no header row")
	ErrColumnConflict    = errors.New("column present on both sides of join")
)
