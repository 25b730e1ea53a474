package config

import "errors"

// Validation errors returned by Config.Validate. Callers match them with
// errors.Is.
var (
	// ErrNoDomain is returned when no start domain was given.
	ErrNoDomain = errors.New("no start domain specified")

	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidPageLimit is returned for a page limit below one; the home
	// page alone needs one slot.
	ErrInvalidPageLimit = errors.New("invalid page limit: must be at least 1")

	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	ErrInvalidRetries = errors.New("invalid retries: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidRelay is wrapped when a relay entry of the config file
	// cannot be built.
	ErrInvalidRelay = errors.New("invalid relay")

	// ErrConfigNotFound is returned by LoadFile for a missing file.
	ErrConfigNotFound = errors.New("configuration file not found")
)
