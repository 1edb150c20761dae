package common

import (
	"errors"
	"fmt"
	"time"
)

// Business logic errors
var (
	// General errors
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("duplicate record")

	// Publication errors
	ErrValidation           = errors.New("validation failed")
	ErrSlugConflict         = errors.New("slug already in use")
	ErrSlugGenerationFailed = errors.New("slug generation failed")
	ErrInconsistentState    = errors.New("inconsistent publication state")
	ErrRepository           = errors.New("repository error")

	// Version errors
	ErrVersionNotFound = errors.New("version not found")

	// Storage errors
	ErrStorageDisabled = errors.New("storage not configured")
	ErrUnknownBucket   = errors.New("unknown bucket")
)

// ValidationError is raised before any repository call when a required field
// is missing or malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError creates a ValidationError for a field
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// SlugGenerationFailedError means no free slug was found within the retry budget.
type SlugGenerationFailedError struct {
	Table     string
	Candidate string
	Attempts  int
}

func (e *SlugGenerationFailedError) Error() string {
	return fmt.Sprintf("could not find a free slug for %q in %s after %d attempts", e.Candidate, e.Table, e.Attempts)
}

func (e *SlugGenerationFailedError) Is(target error) bool { return target == ErrSlugGenerationFailed }

// RepositoryError wraps a failure from the content repository.
type RepositoryError struct {
	Op    string
	Table string
	Err   error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

func (e *RepositoryError) Is(target error) bool { return target == ErrRepository }

// InconsistentStateError is raised when status and scheduled_at disagree:
// scheduled without a timestamp, or a timestamp on a non-scheduled record.
type InconsistentStateError struct {
	Table       string
	ID          string
	Status      string
	ScheduledAt *time.Time
}

func (e *InconsistentStateError) Error() string {
	if e.ScheduledAt == nil {
		return fmt.Sprintf("%s %s has status %q but no scheduled_at", e.Table, e.ID, e.Status)
	}
	return fmt.Sprintf("%s %s has status %q but scheduled_at %s", e.Table, e.ID, e.Status, e.ScheduledAt.UTC().Format(time.RFC3339))
}

func (e *InconsistentStateError) Is(target error) bool { return target == ErrInconsistentState }
