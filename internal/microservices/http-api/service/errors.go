package service

import "errors"

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindInternal     ErrorKind = "internal"
)

// Error is a typed failure raised at the service boundary. Handlers map Kind
// to a status code and show Message to the caller.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Code so a validation error built with a custom message still
// compares equal to its sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrValidation = newError(KindValidation, "VALIDATION_FAILED", "invalid request")

	ErrDJNotFound      = newError(KindNotFound, "DJ_NOT_FOUND", "dj not found")
	ErrReviewNotFound  = newError(KindNotFound, "REVIEW_NOT_FOUND", "review not found")
	ErrUserNotFound    = newError(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrCommentNotFound = newError(KindNotFound, "COMMENT_NOT_FOUND", "comment not found")
	ErrParentNotFound  = newError(KindNotFound, "PARENT_NOT_FOUND", "parent comment not found")
	ErrTaskNotFound    = newError(KindNotFound, "TASK_NOT_FOUND", "task not found")
	ErrInviteNotFound  = newError(KindNotFound, "INVITE_NOT_FOUND", "invite code not found")

	ErrAlreadyExists      = newError(KindConflict, "ALREADY_EXISTS", "you have already reviewed this dj")
	ErrDepthExceeded      = newError(KindConflict, "DEPTH_EXCEEDED", "replies cannot be nested deeper than 3 levels")
	ErrNotClaimable       = newError(KindConflict, "NOT_CLAIMABLE", "no completed task is waiting to be claimed")
	ErrQuotaExhausted     = newError(KindConflict, "QUOTA_EXHAUSTED", "no invite quota left")
	ErrInviteExpired      = newError(KindConflict, "INVITE_EXPIRED", "invite code has expired")
	ErrInviteLimitReached = newError(KindConflict, "INVITE_LIMIT_REACHED", "invite code has reached its usage limit")
	ErrAlreadyRedeemed    = newError(KindConflict, "ALREADY_REDEEMED", "an invite code has already been used on this account")

	ErrOwnInviteCode = newError(KindValidation, "OWN_INVITE_CODE", "you cannot redeem your own invite code")
	ErrOwnReview     = newError(KindValidation, "OWN_REVIEW", "you cannot rate your own review")

	ErrInvalidCredentials = newError(KindUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
	ErrInvalidToken       = newError(KindUnauthorized, "INVALID_TOKEN", "invalid token")
	ErrNotOwner           = newError(KindForbidden, "FORBIDDEN", "you can only modify your own content")
)

func validationError(message string) *Error {
	return newError(KindValidation, ErrValidation.Code, message)
}

// KindOf reports the kind of err; anything not raised by this package is internal.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}
