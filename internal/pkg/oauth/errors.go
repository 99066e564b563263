package oauth

import "errors"

// Failure kinds of an authorization attempt. None of them is retried: codes
// and state tokens are single-use, so the user has to start over.
var (
	// ErrProvider covers non-2xx answers, network failures and timeouts.
	ErrProvider = errors.New("identity provider error")
	// ErrInvalidState means the callback does not belong to an authorization
	// this session started (possible CSRF).
	ErrInvalidState = errors.New("invalid oauth state")
	// ErrMissingScope means the user did not grant identity or email access.
	ErrMissingScope = errors.New("required scope not granted")
	// ErrUnknownProvider is returned for providers that are not configured.
	ErrUnknownProvider = errors.New("unknown identity provider")
)

// ErrorCode maps an authorization error to the short code put on the
// redirect back to the home page.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrMissingScope):
		return "missing_scope"
	default:
		return "provider_error"
	}
}

// Message is the text shown to the user for an error code.
func Message(code string) string {
	switch code {
	case "invalid_state":
		return "Your sign-in request expired or did not originate here. Please sign in again."
	case "missing_scope":
		return "Signing in requires access to your basic profile and email address. Please sign in again and grant both."
	case "provider_error":
		return "The identity provider could not complete the sign-in. Please try again."
	default:
		return ""
	}
}
