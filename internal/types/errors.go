package types

import "errors"

// Sentinel errors for graintel operations.
var (
	// ErrDocumentTooLarge indicates the input text exceeds MaxDocumentBytes.
	ErrDocumentTooLarge = errors.New("document exceeds maximum size")

	// ErrUnknownCandidateType indicates a condition side declares a type the
	// resolver does not recognize. Matching treats this as "no candidates";
	// the error exists for validation at the authoring boundary.
	ErrUnknownCandidateType = errors.New("unknown candidate type")

	// ErrCacheNotReady indicates no snapshot has ever been published and the
	// initial refresh failed.
	ErrCacheNotReady = errors.New("rule cache has no snapshot")
)
