package drive

import (
	"context"
	"sync"

	"github.com/udevstartup/sitecms/internal/auth"
	"golang.org/x/oauth2"
)

// ConsentFunc obtains a fresh token from the user.
type ConsentFunc func(ctx context.Context, client auth.GoogleClient) (*oauth2.Token, error)

// TokenHolder keeps the current Google access token in memory. Tokens are
// never persisted; a restart requires consent again.
type TokenHolder struct {
	client  auth.GoogleClient
	consent ConsentFunc

	mu    sync.Mutex
	token *oauth2.Token
}

// NewTokenHolder creates a holder for client. A nil consent runs the browser
// loopback flow.
func NewTokenHolder(client auth.GoogleClient, consent ConsentFunc) *TokenHolder {
	if consent == nil {
		consent = auth.RunGoogleOAuth
	}
	return &TokenHolder{client: client, consent: consent}
}

// EnsureToken returns a valid access token. Without a cached token it fails
// with ErrUnauthenticated unless interactive, in which case consent is
// requested once.
func (h *TokenHolder) EnsureToken(ctx context.Context, interactive bool) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.token.Valid() {
		return h.token.AccessToken, nil
	}
	h.token = nil
	if !interactive {
		return "", ErrUnauthenticated
	}

	token, err := h.consent(ctx, h.client)
	if err != nil {
		return "", err
	}
	if token == nil || token.AccessToken == "" {
		return "", ErrMalformedToken
	}
	h.token = token
	return token.AccessToken, nil
}

// Set installs a token obtained elsewhere, such as the admin OAuth callback.
func (h *TokenHolder) Set(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return ErrMalformedToken
	}
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
	return nil
}

// Connected reports whether a valid token is held.
func (h *TokenHolder) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token.Valid()
}

// Disconnect forgets the held token.
func (h *TokenHolder) Disconnect() {
	h.mu.Lock()
	h.token = nil
	h.mu.Unlock()
}

// AuthCodeURL starts the web consent flow: the browser is sent to the
// returned URL and comes back to redirectURL with a code.
func (h *TokenHolder) AuthCodeURL(redirectURL, state string) (string, error) {
	conf, err := h.client.Config(redirectURL)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Exchange completes the web consent flow and installs the resulting token.
func (h *TokenHolder) Exchange(ctx context.Context, redirectURL, code string) error {
	conf, err := h.client.Config(redirectURL)
	if err != nil {
		return err
	}
	token, err := auth.Exchange(ctx, conf, code)
	if err != nil {
		return err
	}
	return h.Set(token)
}
