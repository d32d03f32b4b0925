package drive

import (
	"errors"
	"fmt"

	"github.com/udevstartup/sitecms/internal/auth"
)

var (
	// ErrUnauthenticated is returned when no token is held and consent may not be requested.
	ErrUnauthenticated = errors.New("not connected to google drive")
	// ErrNoContentFile is returned by LoadContent when no content file exists yet.
	ErrNoContentFile = errors.New("no content file found on google drive")
	// ErrNotOwned is returned when a file is not owned by the configured owner.
	ErrNotOwned = errors.New("drive file is not owned by the site account")
	// ErrNotImage is returned by UploadImage for payloads that are not images.
	ErrNotImage = errors.New("file is not an image")
)

// Consent flow failures, shared with the auth package.
var (
	ErrNotConfigured  = auth.ErrNotConfigured
	ErrConsentDenied  = auth.ErrConsentDenied
	ErrConsentTimeout = auth.ErrConsentTimeout
	ErrMalformedToken = auth.ErrMalformedToken
)

// APIError is a non-2xx response from the Drive API.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("drive api %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}
