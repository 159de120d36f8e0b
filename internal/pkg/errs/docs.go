// Package errs provides standardized error types for the fulfillment service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes validation errors:
//   - ValueIsRequiredError: For when a required value is missing
//   - ValueIsInvalidError: For when a value is invalid
//   - ValueIsOutOfRangeError: For when a value falls outside its bounds
//   - VersionIsInvalidError: For when a version marker cannot be accepted
//
// And the coordination taxonomy surfaced by the order, payment and delivery flows:
//   - ObjectNotFoundError: An order, task or gateway transaction cannot be found
//   - ConflictError: A competing aggregate already exists (duplicate active task)
//   - InvalidTransitionError: The requested target status is unreachable
//   - TerminalStateError: A mutation was attempted on a closed order or task
//   - GatewayUnavailableError: The payment gateway did not answer in time (retryable)
//   - UnauthorizedError: The acting driver does not own the entity
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel so errors.Is classifies it
//
// Callers classify with errors.Is against the sentinels. Only
// ErrGatewayUnavailable is worth an automatic retry, see IsRetryable.
package errs
