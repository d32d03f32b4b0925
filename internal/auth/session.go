package auth

import (
	"context"
	"net/http"
	"time"
)

// CookieName is the cookie holding the admin session token.
const CookieName = "sitecms_session"

type tokenKey struct{}

// WithToken returns ctx carrying the raw token that authenticated the request.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the raw token stored by WithToken, or "".
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// SetSessionCookie stores token in a cookie scoped to path. SameSite=Lax keeps
// the cookie off cross-site POSTs while still sending it on the OAuth redirect.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, path, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireSession rejects requests without a valid session cookie. GET requests
// are redirected to loginPath; anything else gets 401. A nil service lets every
// request through.
func RequireSession(tokens *TokenService, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if tokens == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var claims *Claims
			c, err := r.Cookie(CookieName)
			if err == nil {
				claims, err = tokens.Parse(c.Value)
			}
			if err != nil {
				if r.Method == http.MethodGet {
					http.Redirect(w, r, loginPath, http.StatusSeeOther)
					return
				}
				unauthorized(w, "login required")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(WithToken(ctx, c.Value)))
		})
	}
}
