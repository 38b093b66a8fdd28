package repository

import "errors"

// Sentinel kinds for snapshot errors.
var (
	ErrNoSnapshot = errors.New("no snapshot published")
)
