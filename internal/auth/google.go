package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Consent flow failures.
var (
	ErrNotConfigured  = errors.New("google oauth client is not configured")
	ErrConsentDenied  = errors.New("google authorization was denied")
	ErrConsentTimeout = errors.New("google authorization timed out")
	ErrMalformedToken = errors.New("google returned a token without an access token")
)

// ConsentTimeout bounds how long RunGoogleOAuth waits for the browser callback.
var ConsentTimeout = 5 * time.Minute

// GoogleClient identifies the OAuth client and the scopes it requests.
type GoogleClient struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Config returns the oauth2 configuration for the client with the given redirect URL.
func (c GoogleClient) Config(redirectURL string) (*oauth2.Config, error) {
	if c.ClientID == "" || c.ClientSecret == "" {
		return nil, ErrNotConfigured
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Scopes:       c.Scopes,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
	}, nil
}

// RunGoogleOAuth performs the OAuth2 browser flow for Google API access.
// It starts a local HTTP server, opens the browser for user consent,
// and exchanges the authorization code for tokens.
func RunGoogleOAuth(ctx context.Context, client GoogleClient) (*oauth2.Token, error) {
	// Find an available port.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("starting local server: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	conf, err := client.Config(fmt.Sprintf("http://localhost:%d/callback", port))
	if err != nil {
		listener.Close()
		return nil, err
	}

	state := uuid.New().String()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			errMsg := q.Get("error")
			if errMsg == "" {
				errMsg = "no authorization code received"
			}
			fmt.Fprintf(w, "<html><body><h2>Authorization failed</h2><p>%s</p><p>You can close this tab.</p></body></html>", html.EscapeString(errMsg))
			errCh <- fmt.Errorf("%w: %s", ErrConsentDenied, errMsg)
			return
		}
		fmt.Fprint(w, "<html><body><h2>Authorization successful!</h2><p>You can close this tab and return to the terminal.</p></body></html>")
		codeCh <- code
	})

	server := &http.Server{Handler: mux}

	// Start serving in the background.
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("local server error: %w", err)
		}
	}()
	defer server.Close()

	// Open browser to consent URL.
	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("\nOpening browser for Google authorization...\n")
	fmt.Printf("If the browser doesn't open, visit this URL:\n%s\n\n", authURL)
	openBrowser(authURL)

	// Wait for the callback or timeout.
	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(ConsentTimeout):
		return nil, fmt.Errorf("%w after %s", ErrConsentTimeout, ConsentTimeout)
	}

	return Exchange(ctx, conf, code)
}

// Exchange trades an authorization code for a token and checks that the
// token carries an access token.
func Exchange(ctx context.Context, conf *oauth2.Config, code string) (*oauth2.Token, error) {
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	if token.AccessToken == "" {
		return nil, ErrMalformedToken
	}
	return token, nil
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
