package model

import "errors"

// Storage lookups return these when a row does not exist. Handlers turn
// them into NotFound errors naming the missing id.
var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrTableNotFound       = errors.New("table not found")
)

// ErrStorageBusy is returned when a seat or clear transaction loses a lock
// race. It is not retried; the caller may resend the request.
var ErrStorageBusy = errors.New("storage busy, try again")

// Kind classifies an Error and decides its HTTP status.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindMethodNotAllowed
	KindUnknownRoute
	KindUnexpected
)

// Code names the rule that failed.
type Code string

const (
	CodeMissingBody          Code = "missing_body"
	CodeMissingField         Code = "missing_field"
	CodeInvalidFormat        Code = "invalid_format"
	CodeInvalidField         Code = "invalid_field"
	CodeInvalidStatus        Code = "invalid_status"
	CodeClosedDay            Code = "closed_day"
	CodePastDate             Code = "past_date"
	CodeTooEarly             Code = "too_early"
	CodeTooLate              Code = "too_late"
	CodeTooCloseToClosing    Code = "too_close_to_closing"
	CodeReservationNotFound  Code = "reservation_not_found"
	CodeTableNotFound        Code = "table_not_found"
	CodeTableOccupied        Code = "table_occupied"
	CodeAlreadySeated        Code = "already_seated"
	CodeInsufficientCapacity Code = "insufficient_capacity"
	CodeNotOccupied          Code = "not_occupied"
	CodeFinishedImmutable    Code = "finished_immutable"
	CodeInvalidTransition    Code = "invalid_transition"
	CodeMethodNotAllowed     Code = "method_not_allowed"
	CodeUnknownRoute         Code = "unknown_route"
	CodeStorageBusy          Code = "storage_busy"
	CodeUnexpected           Code = "unexpected"
)

// Error is a rule violation reported to the caller. Message is safe to
// return in a response body.
type Error struct {
	Kind    Kind
	Code    Code
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Validation builds a 400 error for a malformed or out-of-range field or a
// business rule violation.
func Validation(code Code, field, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Field: field, Message: msg}
}

// NotFound builds a 404 error for a referenced id that does not exist.
func NotFound(code Code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

// Conflict builds a state machine or occupancy violation.
func Conflict(code Code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

// CodeOf returns the Code carried by err, or "" when err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
