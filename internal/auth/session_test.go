package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequireSession(t *testing.T) {
	ts := testService()
	token, _, err := ts.Sign("editor")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	var gotSubject, gotToken string
	h := RequireSession(ts, "/admin/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = Subject(r.Context())
		gotToken = TokenFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		method string
		cookie string
		want   int
	}{
		{"get without cookie", http.MethodGet, "", http.StatusSeeOther},
		{"post without cookie", http.MethodPost, "", http.StatusUnauthorized},
		{"post with bad cookie", http.MethodPost, "nope", http.StatusUnauthorized},
		{"post with session", http.MethodPost, token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/admin/api/save", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusSeeOther && rec.Header().Get("Location") != "/admin/login" {
				t.Errorf("Location = %q, want /admin/login", rec.Header().Get("Location"))
			}
		})
	}
	if gotSubject != "editor" || gotToken != token {
		t.Errorf("subject = %q token match = %v", gotSubject, gotToken == token)
	}
}

func TestSessionCookieAttributes(t *testing.T) {
	rec := httptest.NewRecorder()
	exp := time.Now().Add(time.Hour)
	SetSessionCookie(rec, httptest.NewRequest(http.MethodPost, "/admin/login", nil), "/admin", "tok", exp)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != "tok" || c.Path != "/admin" {
		t.Errorf("cookie = %+v", c)
	}
	if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie must be HttpOnly and SameSite=Lax: %+v", c)
	}
}

func TestRequireSessionNilServiceIsOpen(t *testing.T) {
	h := RequireSession(nil, "/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
