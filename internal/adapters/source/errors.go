package source

import "errors"

// Sentinel error kinds for this package.
var (
	ErrListing     = errors.New("list audit files")
	ErrFetch       = errors.New("fetch audit file")
	ErrUnknownKind = errors.New("unknown source kind")
)
