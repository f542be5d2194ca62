package model

import "errors"

// Failure taxonomy. Per-field and per-candidate failures stay local to the
// record that hit them; only these sentinels propagate to the caller when the
// whole input is unusable.
var (
	// ErrMalformedDocument means the page index input is unusable
	// (duplicate or non-increasing page numbers). Fatal to the call.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrExtractionFailure marks a single field that could not be extracted
	// after retries. Surfaced as a zero-confidence field, never fatal.
	ErrExtractionFailure = errors.New("extraction failure")

	// ErrProviderTimeout means a model call exceeded its deadline.
	// Retried with backoff, then degrades to ErrExtractionFailure.
	ErrProviderTimeout = errors.New("provider timeout")

	// ErrProviderError is any other model-call failure.
	ErrProviderError = errors.New("provider error")

	// ErrAmbiguousProvenance means the locator found no confident span.
	// Non-fatal: the field keeps its value with nil provenance.
	ErrAmbiguousProvenance = errors.New("ambiguous provenance")

	// ErrMatchingUnavailable means the embedding provider is unreachable.
	// The matching run aborts rather than returning empty results, since
	// empty results are indistinguishable from "no match exists".
	ErrMatchingUnavailable = errors.New("matching unavailable")
)
