package model

import "errors"

// Application-wide standard errors
var (
	// General Resource Errors
	ErrNotFound = errors.New("resource not found")

	// Session & Generation Errors
	ErrGenerationInProgress = errors.New("a generation is already in progress")
	ErrNoActiveQuest        = errors.New("no active quest in the session")

	// General Request Errors
	ErrInvalidInput = errors.New("invalid input data")
)
