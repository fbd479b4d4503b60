package model

import "errors"

// Failure reasons of a connection attempt. Handlers match them with errors.Is.
var (
	ErrOAuthDenied              = errors.New("oauth_denied")
	ErrMissingAuthorizationCode = errors.New("missing_authorization_code")
	ErrStateMismatch            = errors.New("state_mismatch")
	ErrMissingCredentials       = errors.New("missing_credentials")
	ErrTokenExchangeFailed      = errors.New("token_exchange_failed")
	ErrNoConnectableTargets     = errors.New("no_connectable_targets")
	ErrPersistenceFailed        = errors.New("persistence_failed")

	ErrInvalidPlatform  = errors.New("invalid_platform")
	ErrNoActiveAttempt  = errors.New("no_active_attempt")
	ErrUnknownTarget    = errors.New("unknown_target")
	ErrSessionKeyAbsent = errors.New("session_key_absent")

	ErrInvalidContent = errors.New("invalid_content")
	ErrPlanRestricted = errors.New("plan_restricted")
	ErrPostNotFound   = errors.New("post_not_found")
)

var reasons = []error{
	ErrOAuthDenied,
	ErrMissingAuthorizationCode,
	ErrStateMismatch,
	ErrMissingCredentials,
	ErrTokenExchangeFailed,
	ErrNoConnectableTargets,
	ErrPersistenceFailed,
	ErrInvalidPlatform,
	ErrNoActiveAttempt,
	ErrUnknownTarget,
	ErrInvalidContent,
	ErrPlanRestricted,
	ErrPostNotFound,
}

// Reason returns the stable reason code carried by err, or "internal_error".
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r) {
			return r.Error()
		}
	}
	return "internal_error"
}
