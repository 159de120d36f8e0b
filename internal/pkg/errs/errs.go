package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound     = errors.New("object not found")
	ErrValueIsInvalid     = errors.New("value is invalid")
	ErrValueIsOutOfRange  = errors.New("value is out of range")
	ErrValueIsRequired    = errors.New("value is required")
	ErrVersionIsInvalid   = errors.New("version is invalid")
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrTerminalState      = errors.New("terminal state")
	ErrGatewayUnavailable = errors.New("gateway unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
)

// IsRetryable reports whether the caller may retry the failed operation with backoff.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}

func withCause(msg string, cause error) string {
	if cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, cause)
	}
	return msg
}

func sanitize(v any) string {
	s := fmt.Sprintf("%v", v)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}

// ObjectNotFoundError reports a lookup that matched nothing.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)", ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a value that fails a business rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName), e.Cause)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside [Min..Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	return withCause(fmt.Sprintf("%s: %s is %s, min value is %s, max value is %s",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max)), e.Cause)
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName), e.Cause)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// VersionIsInvalidError reports an unusable version marker.
type VersionIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewVersionIsInvalidError(paramName string, cause error) *VersionIsInvalidError {
	return &VersionIsInvalidError{ParamName: paramName, Cause: cause}
}

func NewVersionIsInvalidErrorWithCause(paramName string) *VersionIsInvalidError {
	return &VersionIsInvalidError{ParamName: paramName}
}

func (e *VersionIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrVersionIsInvalid, e.ParamName), e.Cause)
}

func (e *VersionIsInvalidError) Unwrap() error {
	return ErrVersionIsInvalid
}

// ConflictError reports that a competing aggregate already holds the slot,
// e.g. a second non-terminal task for the same order.
type ConflictError struct {
	Entity string
	Reason string
	Cause  error
}

func NewConflictError(entity, reason string) *ConflictError {
	return &ConflictError{Entity: entity, Reason: reason}
}

func NewConflictErrorWithCause(entity, reason string, cause error) *ConflictError {
	return &ConflictError{Entity: entity, Reason: reason, Cause: cause}
}

func (e *ConflictError) Error() string {
	return withCause(fmt.Sprintf("%s: %s: %s", ErrConflict, e.Entity, e.Reason), e.Cause)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// InvalidTransitionError reports a target status that cannot be reached from From.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
	Cause  error
}

func NewInvalidTransitionError(entity, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from, To: to}
}

func NewInvalidTransitionErrorWithCause(entity, from, to string, cause error) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from, To: to, Cause: cause}
}

func (e *InvalidTransitionError) Error() string {
	return withCause(fmt.Sprintf("%s: %s from %s to %s", ErrInvalidTransition, e.Entity, e.From, e.To), e.Cause)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// TerminalStateError reports a mutation attempted on a closed entity.
type TerminalStateError struct {
	Entity string
	State  string
}

func NewTerminalStateError(entity, state string) *TerminalStateError {
	return &TerminalStateError{Entity: entity, State: state}
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("%s: %s is %s", ErrTerminalState, e.Entity, e.State)
}

func (e *TerminalStateError) Unwrap() error {
	return ErrTerminalState
}

// GatewayUnavailableError reports a transient failure talking to the payment gateway.
type GatewayUnavailableError struct {
	Operation string
	Cause     error
}

func NewGatewayUnavailableError(operation string) *GatewayUnavailableError {
	return &GatewayUnavailableError{Operation: operation}
}

func NewGatewayUnavailableErrorWithCause(operation string, cause error) *GatewayUnavailableError {
	return &GatewayUnavailableError{Operation: operation, Cause: cause}
}

func (e *GatewayUnavailableError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrGatewayUnavailable, e.Operation), e.Cause)
}

func (e *GatewayUnavailableError) Unwrap() error {
	return ErrGatewayUnavailable
}

// UnauthorizedError reports an actor acting on an entity it does not own.
type UnauthorizedError struct {
	ActorID string
	Entity  string
	ID      string
}

func NewUnauthorizedError(actorID, entity, id string) *UnauthorizedError {
	return &UnauthorizedError{ActorID: actorID, Entity: entity, ID: id}
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: actor %s does not own %s %s", ErrUnauthorized, e.ActorID, e.Entity, e.ID)
}

func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}
