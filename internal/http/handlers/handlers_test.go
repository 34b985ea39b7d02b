package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/commenthub/internal/auth"
	"github.com/geocoder89/commenthub/internal/domain/comment"
	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/http/handlers"
	"github.com/geocoder89/commenthub/internal/identity"
	"github.com/geocoder89/commenthub/internal/policy"
	"github.com/geocoder89/commenthub/internal/service"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondServiceError_Mapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: too short", service.ErrValidation), http.StatusBadRequest, "invalid_request"},
		{identity.ErrMissingToken, http.StatusUnauthorized, "missing_token"},
		{auth.ErrExpiredToken, http.StatusUnauthorized, "token_expired"},
		{policy.ErrForbidden, http.StatusUnauthorized, "forbidden"},
		{identity.ErrUserNotFound, http.StatusNotFound, "not_found"},
		{user.ErrNotFound, http.StatusNotFound, "not_found"},
		{comment.ErrNotFound, http.StatusNotFound, "not_found"},
		{user.ErrEmailTaken, http.StatusBadRequest, "user_exists"},
		{service.ErrAccountDisabled, http.StatusUnauthorized, "account_disabled"},
		{service.ErrAccountBanned, http.StatusUnauthorized, "account_banned"},
		{service.ErrAccountDeleted, http.StatusUnauthorized, "account_deleted"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{service.ErrOldPasswordMismatch, http.StatusBadRequest, "invalid_credentials"},
		{fmt.Errorf("%w: expired", service.ErrResetTokenInvalid), http.StatusUnauthorized, "invalid_reset_token"},
		{errors.New("connection reset by peer"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		r := gin.New()
		r.GET("/x", func(ctx *gin.Context) {
			handlers.RespondServiceError(ctx, tt.err)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		if w.Code != tt.status {
			t.Fatalf("%v: got status %d, want %d", tt.err, w.Code, tt.status)
		}

		var resp struct {
			Error handlers.APIError `json:"error"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v body=%s", err, w.Body.String())
		}
		if resp.Error.Code != tt.code {
			t.Fatalf("%v: got code %q, want %q", tt.err, resp.Error.Code, tt.code)
		}
		if tt.status == http.StatusInternalServerError && resp.Error.Message != "Server error" {
			t.Fatalf("internal details leaked: %q", resp.Error.Message)
		}
	}
}

func TestRespondJSONWithETag(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(ctx *gin.Context) {
		handlers.RespondJSONWithETag(ctx, http.StatusOK, gin.H{"comments": []string{"a"}})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	etag := w.Header().Get("ETag")
	if w.Code != http.StatusOK || etag == "" {
		t.Fatalf("got status %d etag %q", w.Code, etag)
	}

	for _, header := range []string{etag, "W/" + etag, `"other", ` + etag, "*"} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("If-None-Match", header)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotModified {
			t.Fatalf("If-None-Match %q: got %d, want 304", header, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("If-None-Match", `"stale"`)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("stale etag: got %d, want 200", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	draining := false
	var pingErr error

	h := handlers.NewHealthHandler(
		func(ctx context.Context) error { return pingErr },
		func() bool { return draining },
	)

	r := gin.New()
	r.GET("/readyz", h.Readyz)

	check := func(want int) {
		t.Helper()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		if w.Code != want {
			t.Fatalf("got %d, want %d", w.Code, want)
		}
	}

	check(http.StatusOK)

	pingErr = errors.New("store down")
	check(http.StatusServiceUnavailable)

	pingErr = nil
	draining = true
	check(http.StatusServiceUnavailable)
}
