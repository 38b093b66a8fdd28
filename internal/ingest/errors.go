package ingest

import "errors"

// ErrNoData means the listing produced no parsable audit result.
var ErrNoData = errors.New("no audit data")
