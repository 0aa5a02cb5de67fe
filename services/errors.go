package services

import "errors"

// Shared errors used across services and the HTTP mapping.
var (
	// Not-found, also covers access violations that must stay
	// indistinguishable from a missing resource.
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business-rule errors.
	ErrFieldsRequired         = errors.New("all fields are required")
	ErrPasswordMismatch       = errors.New("passwords do not match")
	ErrInvalidCredentials     = errors.New("invalid username or password")
	ErrAnswerRequired         = errors.New("must select a choice")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTournamentInvalidDates = errors.New("dates must be correct")
	ErrTournamentStartInPast  = errors.New("start date must not be in the past")
	ErrInvalidCategory        = errors.New("unknown category code")
	ErrInvalidDifficulty      = errors.New("unknown difficulty code")

	// Conflicts.
	ErrUserExists = errors.New("user exists")

	// External question source.
	ErrNoQuestionsFound = errors.New("no questions found")

	// Authorization.
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Optional subsystems.
	ErrUploadsDisabled = errors.New("file uploads are not configured")
)
