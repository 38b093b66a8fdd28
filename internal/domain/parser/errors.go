package parser

import "errors"

// Sentinel kinds for parser errors.
var (
	ErrDecode = errors.New("decode audit payload")
)
