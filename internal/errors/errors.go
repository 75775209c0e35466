// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrEmptySeries      = errors.New("series is empty")
	ErrNoData           = errors.New("no historical data")
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInsufficientData = errors.New("insufficient data for calculation")
	ErrFeedUnavailable  = errors.New("feed unavailable")
	ErrConnectionFailed = errors.New("connection failed")
	ErrFeedClosed       = errors.New("feed is closed")
	ErrMalformedMessage = errors.New("malformed feed message")
	ErrDatabaseError    = errors.New("database error")
)

// FeedError represents an error from the market data feed.
type FeedError struct {
	Symbol   string
	Interval string
	Op       string
	Err      error
}

func (e *FeedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feed error [%s@%s] %s: %v", e.Symbol, e.Interval, e.Op, e.Err)
	}
	return fmt.Sprintf("feed error [%s@%s] %s", e.Symbol, e.Interval, e.Op)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// NewFeedError creates a new FeedError.
func NewFeedError(symbol, interval, op string, err error) *FeedError {
	return &FeedError{
		Symbol:   symbol,
		Interval: interval,
		Op:       op,
		Err:      err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
