// Package apperr classifies failures so that transports can map them to
// status codes and machine-readable reasons without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindForbidden  Kind = "forbidden"
	KindConflict   Kind = "conflict"
	KindUpstream   Kind = "upstream"
)

// Machine-readable reasons.
const (
	CodeInvalidPayload    = "invalid_payload"
	CodeInvalidDate       = "invalid_date"
	CodeReversedRange     = "reversed_range"
	CodeEmptyRange        = "empty_range"
	CodeZeroNightStay     = "zero_night_stay"
	CodeWindowTooLarge    = "window_too_large"
	CodeInvalidMoney      = "invalid_money"
	CodeBelowMinimumStay  = "below_minimum_stay"
	CodeAboveMaximumStay  = "above_maximum_stay"
	CodeCheckInInPast     = "check_in_in_past"
	CodeInvalidBlock      = "invalid_block"
	CodeUnitNotFound      = "unit_not_found"
	CodeBlockNotFound     = "block_not_found"
	CodeQuoteNotFound     = "quote_not_found"
	CodeFeedNotFound      = "feed_not_found"
	CodeBookingNotFound   = "booking_not_found"
	CodeUnitNotBookable   = "unit_not_bookable"
	CodeInvalidTransition = "invalid_transition"
	CodeForbidden         = "forbidden"
	CodeDatesUnavailable  = "dates_unavailable"
	CodeConcurrentUpdate  = "concurrent_update"
	CodeUnitExists        = "unit_exists"
	CodeRecordStore       = "record_store_unavailable"
	CodeBrokerUnavailable = "broker_unavailable"
)

// Error carries a Kind and Code alongside the underlying cause.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: CodeForbidden, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// Upstream wraps a record-store or collaborator failure.
func Upstream(err error) *Error {
	return &Error{Kind: KindUpstream, Code: CodeRecordStore, Message: "record store unavailable", Err: err}
}

// Wrap attaches a kind and code to an existing error.
func Wrap(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

// As extracts an *Error from the chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf reports the kind of err, or "" for unclassified errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

// CodeOf reports the machine-readable code of err, or "" when absent.
func CodeOf(err error) string {
	if e, ok := As(err); ok {
		return e.Code
	}
	return ""
}

func IsUpstream(err error) bool {
	return KindOf(err) == KindUpstream
}
