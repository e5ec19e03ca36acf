package domain

import "errors"

// Sentinel errors shared by repositories, services and handlers.
// Callers wrap them with fmt.Errorf("...: %w", err) and match with errors.Is.
var (
	// ErrInvalidArgument marks a client error detected before any work starts.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks an unknown generation, run or pokemon.
	ErrNotFound = errors.New("not found")

	// ErrMissingData is returned by the backfill when a required stat has no rows to normalize against.
	ErrMissingData = errors.New("missing data")

	// ErrUpstreamFetch wraps transport, status and parse failures from the upstream catalog.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrUpstreamNotFound is returned when the upstream catalog has no record for an id.
	ErrUpstreamNotFound = errors.New("upstream record not found")

	// ErrRunClosed is returned when a write targets a run that already finished.
	ErrRunClosed = errors.New("ingestion run already closed")
)
