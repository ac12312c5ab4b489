package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotAuthenticated is returned by handlers that require a resolved
// identity when resolution ended unresolved. Wrap it so callers and the
// middleware can classify the failure with errors.Is.
var ErrNotAuthenticated = errors.New("not authenticated")

// RequireIdentity returns the identity resolved for this request, or an
// actionable error when the request is unauthenticated.
func RequireIdentity(ctx context.Context) (*Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: no Google account is authenticated for this request; authenticate via OAuth or pass user_google_email for an account with stored credentials", ErrNotAuthenticated)
	}
	return id, nil
}

// authErrorMarkers are substrings that identify authentication and
// credential failures surfaced by downstream handlers or Google APIs.
var authErrorMarkers = []string{
	"not authenticated",
	"no credentials",
	"invalid credentials",
	"invalid_grant",
	"token expired",
	"token has been expired or revoked",
	"unauthorized",
	"authentication required",
	"re-authenticate",
	"oauth",
}

// IsAuthError reports whether an error from a downstream handler is an
// authentication or credential failure. These are expected in normal
// operation (a user simply has not signed in yet) and are logged quietly,
// while anything else gets full error treatment.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range authErrorMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
