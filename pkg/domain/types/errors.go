package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across layers
var (
	// ErrAbort marks a permanent failure. Task entrypoints surface it to
	// the execution platform as terminal so the run is never retried.
	ErrAbort = goerr.New("aborted: permanent failure")

	// ErrNotFound is returned by repository backends when a record does
	// not exist
	ErrNotFound = goerr.New("record not found")
)
