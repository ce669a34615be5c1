// Package errs provides standardized error types for the fulfillment service.
// It implements a consistent pattern for error creation, formatting, and
// unwrapping that is used throughout the application.
//
// The package includes generic validation errors:
//   - ValueIsRequiredError: For when a required value is missing
//   - ValueIsInvalidError: For when a value is invalid
//   - ObjectNotFoundError: For when an object cannot be found
//
// and the order fulfillment taxonomy:
//   - ConfigurationError: missing delivery option or order type settings
//   - DuplicateCollectionError: subscription batch admission conflict
//   - ProcessingError: item processor production, packaging or deletion failure
//   - TimeoutError: a ProcessingError caused by an expired deadline
//   - ConflictError: moderation applied to an already decided order
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
package errs
