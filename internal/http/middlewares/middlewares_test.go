package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/commenthub/internal/actorctx"
	"github.com/geocoder89/commenthub/internal/auth"
	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/identity"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver struct {
	id  identity.Identity
	err error
}

func (f fakeResolver) Resolve(ctx context.Context, header string) (identity.Identity, error) {
	if header == "" {
		return identity.Guest(), nil
	}
	return f.id, f.err
}

func newIdentityRouter(res IdentityResolver, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(NewAuthMiddleware(res, nil).ResolveIdentity())

	handlers := append(extra, func(c *gin.Context) {
		id := IdentityFromContext(c)
		fromCtx := actorctx.IdentityFrom(c.Request.Context())
		if id.UserID != fromCtx.UserID {
			c.String(http.StatusInternalServerError, "context mismatch")
			return
		}
		c.String(http.StatusOK, string(id.Role))
	})
	r.GET("/x", handlers...)

	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestResolveIdentity(t *testing.T) {
	tests := []struct {
		name     string
		resolver fakeResolver
		token    string
		status   int
		body     string
	}{
		{"guest", fakeResolver{}, "", http.StatusOK, "guest"},
		{"user", fakeResolver{id: identity.Authenticated("u1", user.RoleUser, nil)}, "tok", http.StatusOK, "user"},
		{"invalid", fakeResolver{err: auth.ErrInvalidToken}, "tok", http.StatusUnauthorized, "invalid_token"},
		{"expired", fakeResolver{err: auth.ErrExpiredToken}, "tok", http.StatusUnauthorized, "token_expired"},
		{"store down", fakeResolver{err: errors.New("store down")}, "tok", http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newIdentityRouter(tt.resolver), http.MethodGet, "/x", tt.token)

			if w.Code != tt.status {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.status, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.body) {
				t.Fatalf("body %q does not contain %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestRequireToken(t *testing.T) {
	res := fakeResolver{id: identity.Authenticated("u1", user.RoleUser, nil)}
	r := newIdentityRouter(res, RequireToken(http.StatusBadRequest))

	if w := do(r, http.MethodGet, "/x", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("guest: got %d, want 400", w.Code)
	}
	if w := do(r, http.MethodGet, "/x", "tok"); w.Code != http.StatusOK {
		t.Fatalf("user: got %d, want 200", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	userRouter := newIdentityRouter(fakeResolver{id: identity.Authenticated("u1", user.RoleUser, nil)}, RequireAdmin())
	adminRouter := newIdentityRouter(fakeResolver{id: identity.Authenticated("a1", user.RoleAdmin, nil)}, RequireAdmin())

	if w := do(userRouter, http.MethodGet, "/x", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("guest: got %d, want 401", w.Code)
	}
	if w := do(userRouter, http.MethodGet, "/x", "tok"); w.Code != http.StatusUnauthorized {
		t.Fatalf("user: got %d, want 401", w.Code)
	}
	if w := do(adminRouter, http.MethodGet, "/x", "tok"); w.Code != http.StatusOK {
		t.Fatalf("admin: got %d, want 200", w.Code)
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.Use(RequireJSON())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.DELETE("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		method, contentType string
		want                int
	}{
		{http.MethodPost, "application/json", http.StatusNoContent},
		{http.MethodPost, "application/json; charset=utf-8", http.StatusNoContent},
		{http.MethodPost, "text/plain", http.StatusBadRequest},
		{http.MethodPost, "", http.StatusBadRequest},
		{http.MethodDelete, "", http.StatusNoContent},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, "/x", strings.NewReader("{}"))
		if tc.contentType != "" {
			req.Header.Set("Content-Type", tc.contentType)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tc.want {
			t.Fatalf("%s %q: got %d, want %d", tc.method, tc.contentType, w.Code, tc.want)
		}
		if tc.want == http.StatusBadRequest && !strings.Contains(w.Body.String(), `"invalid_request"`) {
			t.Fatalf("%s %q: body %s lacks invalid_request", tc.method, tc.contentType, w.Body.String())
		}
	}
}

func TestMaxBodyBytes_DeclaredLength(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(4))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"content":"hello"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("got %d, want 413", w.Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("allow-origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight got %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}

func TestRequestID_EchoesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders(false))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "req-123" || w.Header().Get("X-Request-Id") != "req-123" {
		t.Fatalf("request id not propagated: body=%q header=%q", w.Body.String(), w.Header().Get("X-Request-Id"))
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing")
	}
}

func TestRequestID_ReplacesUnusableHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "has spaces\tand tabs")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Body.String(); got == "" || strings.ContainsAny(got, " \t") {
		t.Fatalf("expected a generated id, got %q", got)
	}
}

func TestRequestLevel(t *testing.T) {
	cases := []struct {
		route  string
		status int
		want   slog.Level
	}{
		{"/api/comments", 200, slog.LevelInfo},
		{"/api/comments", 401, slog.LevelWarn},
		{"/api/comments", 500, slog.LevelError},
		{"/readyz", 200, slog.LevelDebug},
		{"/readyz", 503, slog.LevelError},
	}
	for _, c := range cases {
		if got := requestLevel(c.route, c.status); got != c.want {
			t.Errorf("requestLevel(%q, %d) = %v, want %v", c.route, c.status, got, c.want)
		}
	}
}
