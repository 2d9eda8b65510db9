// Package common defines shared constants and sentinel errors used across
// the registration core. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Caller errors (400-class).
	ErrMalformedInput     = errors.New("malformed input")
	ErrVerificationFailed = errors.New("verification failed")

	// Ceremony absent, expired or already consumed (410-class).
	ErrCeremonyNotFound = errors.New("ceremony not found")

	// Infrastructure faults (500-class). Never shown to the client verbatim.
	ErrChallengeGenerationFailed = errors.New("challenge generation failed")
	ErrStateCorrupted            = errors.New("ceremony state corrupted")
	ErrSerializationFailed       = errors.New("serialization failed")
	ErrPersistenceFailed         = errors.New("persistence failed")
)
