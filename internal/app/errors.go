package service

import "errors"

// Sentinel errors returned by the read API.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrLoading       = errors.New("ingestion in progress")
	ErrModelNotFound = errors.New("model not found")
)
