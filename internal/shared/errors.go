package shared

import "errors"

// Sentinel errors shared across modules. Handlers never inspect database
// errors directly; repositories and services translate them into one of
// these so the HTTP layer can map status codes uniformly.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrNoAccount indicates no account exists for the supplied email.
	// Distinct from ErrNotFound because the API reports it as a 400.
	ErrNoAccount = errors.New("no user found with this email address")
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidCredentials indicates a failed login. The message is
	// deliberately generic so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	// ErrUnverified indicates login before email verification.
	ErrUnverified = errors.New("please verify your email before logging in")
	// ErrInactive indicates login on a disabled account.
	ErrInactive = errors.New("user account is disabled")
	// ErrInvalidToken indicates an unknown or malformed one-time token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates a one-time token past its expiry.
	ErrExpiredToken = errors.New("token has expired")
	// ErrUsedToken indicates a reset token that was already consumed.
	ErrUsedToken = errors.New("token has already been used")
	// ErrIncorrectPassword indicates a change-password old password mismatch.
	ErrIncorrectPassword = errors.New("old password is incorrect")
	// ErrForbidden indicates an authorization policy denial.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMailDispatch indicates the mail collaborator failed.
	ErrMailDispatch = errors.New("failed to send email")
)
