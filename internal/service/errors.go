package service

import "errors"

var (
	// ErrValidation marks rejected input. Nothing was written; the caller may
	// retry with corrected input.
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyCompleted signals the topic is already finished for this
	// student. Benign: callers redirect to the completion state.
	ErrAlreadyCompleted = errors.New("topic already completed")

	// ErrNoQuestions marks a zero-question topic reaching the session engine.
	// Listings exclude such topics, so this is an upstream invariant violation.
	ErrNoQuestions = errors.New("topic has no questions")

	// ErrNotFound covers missing entities referenced by id.
	ErrNotFound = errors.New("not found")
)
