package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidCredentials is returned when login fails; deliberately does
	// not distinguish a bad username from a bad password
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserInactive is returned when a deactivated user attempts to log in
	ErrUserInactive = errors.New("user account is inactive")

	// ErrNotAssigned is returned for assignment actions on a quote with no assignment
	ErrNotAssigned = errors.New("quote has no assignment")

	// ErrQuoteAlreadyAssigned is returned when assigning a quote that has a live assignment
	ErrQuoteAlreadyAssigned = errors.New("quote already has an active assignment")

	// ErrAssignmentTerminal is returned for actions on a rejected or completed assignment
	ErrAssignmentTerminal = errors.New("assignment is in a terminal state")

	// ErrQuoteNotIssued is returned when completing an assignment before the policy is issued
	ErrQuoteNotIssued = errors.New("quote must be issued before completing the assignment")

	// ErrCodeAlreadyUsed is returned when redeeming a spent discount code
	ErrCodeAlreadyUsed = errors.New("discount code already used")
)
