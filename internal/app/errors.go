package app

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrNoTrials means nothing survived filtering, which points at a wrong
	// procedure label, practice block or column mapping.
	ErrNoTrials = errors.New("no trials left after filtering")

	// ErrBinEdges means quartile edges could not be formed, either because
	// the column has no numeric values or because edges repeat.
	ErrBinEdges = errors.New("quartile bin edges are not unique")
)
