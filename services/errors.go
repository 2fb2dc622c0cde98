package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures that callers branch on.
type ErrorKind string

const (
	KindAlreadyJoined      ErrorKind = "already_joined"
	KindProfileIncomplete  ErrorKind = "profile_incomplete"
	KindOnboardingRequired ErrorKind = "onboarding_required"
	KindDuplicateHandle    ErrorKind = "duplicate_handle"
	KindInvalidVideoSource ErrorKind = "invalid_video_source"
	KindInvalidInput       ErrorKind = "invalid_input"
	KindFileTooLarge       ErrorKind = "file_too_large"
	KindNotFound           ErrorKind = "not_found"
	KindForbidden          ErrorKind = "forbidden"
	KindAuthFailed         ErrorKind = "auth_failed"
	KindStorageFailure     ErrorKind = "storage_failure"
)

var defaultMessages = map[ErrorKind]string{
	KindAlreadyJoined:      "You have already joined this contest.",
	KindProfileIncomplete:  "Profile incomplete. Please add your TikTok handle in Settings before joining.",
	KindOnboardingRequired: "Profile not found. Please complete the 'Join as Creator' onboarding first.",
	KindDuplicateHandle:    "This TikTok handle is already registered.",
	KindInvalidVideoSource: "Invalid URL. Please provide a valid TikTok video link.",
	KindInvalidInput:       "Invalid input.",
	KindFileTooLarge:       "File too large. Max 50MB.",
	KindNotFound:           "Not found.",
	KindForbidden:          "Admin access required.",
	KindAuthFailed:         "Authentication failed.",
	KindStorageFailure:     "Storage request failed.",
}

// Error is a user-facing failure. Detail overrides the default message for
// the kind; Err keeps the underlying cause for logs.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return defaultMessages[e.Kind]
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind so errors.Is(err, ErrAlreadyJoined) works for any detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrAlreadyJoined      = &Error{Kind: KindAlreadyJoined}
	ErrProfileIncomplete  = &Error{Kind: KindProfileIncomplete}
	ErrOnboardingRequired = &Error{Kind: KindOnboardingRequired}
	ErrDuplicateHandle    = &Error{Kind: KindDuplicateHandle}
	ErrInvalidVideoSource = &Error{Kind: KindInvalidVideoSource}
	ErrFileTooLarge       = &Error{Kind: KindFileTooLarge}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrForbidden          = &Error{Kind: KindForbidden}
)

func newError(kind ErrorKind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: cause}
}

// InvalidInput reports a validation failure with a message for the user.
func InvalidInput(detail string) *Error {
	return newError(KindInvalidInput, detail, nil)
}

// AuthFailed wraps a sign-in or sign-up failure with a friendly message.
func AuthFailed(detail string, cause error) *Error {
	return newError(KindAuthFailed, detail, cause)
}

// StorageFailure surfaces a backend write failure. prefix is prepended to
// the cause message when non-empty.
func StorageFailure(prefix string, cause error) *Error {
	msg := defaultMessages[KindStorageFailure]
	if cause != nil {
		msg = cause.Error()
	}
	if prefix != "" {
		msg = fmt.Sprintf("%s%s", prefix, msg)
	}
	return newError(KindStorageFailure, msg, cause)
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
