package model

import "errors"

// Sentinel errors for case operations.
var (
	ErrMissingID       = errors.New("case id is required")
	ErrSegmentRange    = errors.New("segment index out of range")
	ErrInvalidValue    = errors.New("raw value does not convert to a competence")
	ErrNoSegments      = errors.New("test affects no segments")
	ErrAppliedNotFound = errors.New("applied test not found")
	ErrMissingFormat   = errors.New("export format is required")
	ErrItemRange       = errors.New("response item out of range")
	ErrResponseState   = errors.New("unknown response state")
)

// ErrNoCaseLoaded is returned by workspace operations before a case is
// loaded.
var ErrNoCaseLoaded = errors.New("no case loaded in the workspace")

// ErrUnsavedChanges is returned when a write would replace a workspace case
// that has unsaved edits.
var ErrUnsavedChanges = errors.New("workspace case has unsaved changes")
