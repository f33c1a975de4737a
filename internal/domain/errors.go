package domain

import "fmt"

// Code is the status marker shown to the caller for an expected rule outcome.
type Code string

const (
	CodeAlreadyMember  Code = "ALREADY_MEMBER"
	CodeNotMember      Code = "NOT_MEMBER"
	CodeClubClosed     Code = "CLUB_CLOSED"
	CodeEventCancelled Code = "EVENT_CANCELLED"
	CodeEventEnded     Code = "EVENT_ENDED"
	CodeAlreadyJoined  Code = "ALREADY_JOINED"
	CodeEventFull      Code = "EVENT_FULL"
	CodeNotEnrolled    Code = "NOT_ENROLLED"
	CodeSuspended      Code = "SUSPENDED"
	CodeForbidden      Code = "FORBIDDEN"
	CodeNotFound       Code = "NOT_FOUND"
)

type ErrorKind int

const (
	KindPrecondition ErrorKind = iota
	KindAccessDenied
	KindNotFound
)

// RuleError is an expected, user-facing outcome of a participation rule.
// It is returned as a value and never wraps an infrastructure failure.
type RuleError struct {
	Code Code
	Kind ErrorKind
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("participation rule: %s", e.Code)
}

var (
	ErrAlreadyMember  = &RuleError{Code: CodeAlreadyMember, Kind: KindPrecondition}
	ErrNotMember      = &RuleError{Code: CodeNotMember, Kind: KindPrecondition}
	ErrClubClosed     = &RuleError{Code: CodeClubClosed, Kind: KindPrecondition}
	ErrEventCancelled = &RuleError{Code: CodeEventCancelled, Kind: KindPrecondition}
	ErrEventEnded     = &RuleError{Code: CodeEventEnded, Kind: KindPrecondition}
	ErrAlreadyJoined  = &RuleError{Code: CodeAlreadyJoined, Kind: KindPrecondition}
	ErrEventFull      = &RuleError{Code: CodeEventFull, Kind: KindPrecondition}
	ErrNotEnrolled    = &RuleError{Code: CodeNotEnrolled, Kind: KindPrecondition}

	ErrSuspended = &RuleError{Code: CodeSuspended, Kind: KindAccessDenied}
	ErrForbidden = &RuleError{Code: CodeForbidden, Kind: KindAccessDenied}

	ErrAccountNotFound      = &RuleError{Code: CodeNotFound, Kind: KindNotFound}
	ErrEventNotFound        = &RuleError{Code: CodeNotFound, Kind: KindNotFound}
	ErrNotificationNotFound = &RuleError{Code: CodeNotFound, Kind: KindNotFound}
)
