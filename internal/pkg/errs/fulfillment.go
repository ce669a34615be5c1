package errs

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrConfiguration       = errors.New("configuration error")
	ErrDuplicateCollection = errors.New("duplicate collection")
	ErrProcessing          = errors.New("processing error")
	ErrTimeout             = errors.New("timeout")
	ErrConflict            = errors.New("conflict")
)

// ConfigurationError means the fulfillment setup cannot serve the request,
// e.g. an item with no delivery option anywhere in its hierarchy.
type ConfigurationError struct {
	Setting string
	Cause   error
}

func NewConfigurationError(setting string) *ConfigurationError {
	return &ConfigurationError{Setting: setting}
}

func NewConfigurationErrorWithCause(setting string, cause error) *ConfigurationError {
	return &ConfigurationError{Setting: setting, Cause: cause}
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrConfiguration, e.Setting, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrConfiguration, e.Setting)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// DuplicateCollectionError rejects a subscription batch that requests the
// same collection twice.
type DuplicateCollectionError struct {
	Collection string
}

func NewDuplicateCollectionError(collection string) *DuplicateCollectionError {
	return &DuplicateCollectionError{Collection: collection}
}

func (e *DuplicateCollectionError) Error() string {
	return fmt.Sprintf("%s: repeated collection %s", ErrDuplicateCollection, sanitize(e.Collection))
}

func (e *DuplicateCollectionError) Unwrap() error {
	return ErrDuplicateCollection
}

// ProcessingError wraps a failure of the item processor while producing,
// packaging or deleting files.
type ProcessingError struct {
	Operation string
	Target    string
	Cause     error
}

func NewProcessingError(operation, target string, cause error) *ProcessingError {
	return &ProcessingError{Operation: operation, Target: target, Cause: cause}
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s %s (cause: %v)", ErrProcessing, e.Operation, e.Target, e.Cause)
	}
	return fmt.Sprintf("%s: %s %s", ErrProcessing, e.Operation, e.Target)
}

func (e *ProcessingError) Unwrap() error {
	return ErrProcessing
}

// TimeoutError is a ProcessingError caused by the caller-supplied deadline.
type TimeoutError struct {
	Operation string
	Target    string
	Timeout   time.Duration
}

func NewTimeoutError(operation, target string, timeout time.Duration) *TimeoutError {
	return &TimeoutError{Operation: operation, Target: target, Timeout: timeout}
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: %s %s exceeded %s", ErrTimeout, e.Operation, e.Target, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// Is makes a timeout match ErrProcessing as well as ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrProcessing
}

// ConflictError is returned when an action contradicts a decision that was
// already applied, such as rejecting an approved order.
type ConflictError struct {
	Entity string
	ID     any
	Reason string
}

func NewConflictError(entity string, id any, reason string) *ConflictError {
	return &ConflictError{Entity: entity, ID: id, Reason: reason}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s %s %s", ErrConflict, e.Entity, e.ID, e.Reason)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
