// Package businessflow contains the core business logic and use cases for link shortening workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// URL validation errors
	ErrInvalidURL = errors.New("invalid URL")
	ErrUnsafeURL  = errors.New("URL is not allowed")

	// Alias errors
	ErrInvalidAlias = errors.New("custom alias is invalid")
	ErrAliasTaken   = errors.New("custom alias is already taken")

	// Code allocation errors
	ErrCodeExhausted = errors.New("could not allocate a unique short code")

	// Resolution errors
	ErrLinkNotFound = errors.New("short link not found")
	ErrLinkExpired  = errors.New("short link has expired")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsInvalidURL(err error) bool {
	return errors.Is(err, ErrInvalidURL)
}

func IsUnsafeURL(err error) bool {
	return errors.Is(err, ErrUnsafeURL)
}

func IsInvalidAlias(err error) bool {
	return errors.Is(err, ErrInvalidAlias)
}

func IsAliasTaken(err error) bool {
	return errors.Is(err, ErrAliasTaken)
}

func IsCodeExhausted(err error) bool {
	return errors.Is(err, ErrCodeExhausted)
}

func IsLinkNotFound(err error) bool {
	return errors.Is(err, ErrLinkNotFound)
}

func IsLinkExpired(err error) bool {
	return errors.Is(err, ErrLinkExpired)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}
