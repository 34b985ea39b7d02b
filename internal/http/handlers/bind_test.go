package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/http/handlers"
	"github.com/geocoder89/commenthub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type bindEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Details struct {
			JSON   string                `json:"json"`
			Field  string                `json:"field"`
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func registerEndpoint(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.POST("/users", func(ctx *gin.Context) {
		var req user.RegisterRequest
		if handlers.BindJSON(ctx, &req) {
			ctx.Status(http.StatusCreated)
		}
	})
	return r
}

func sendRegister(t *testing.T, r http.Handler, body string, chunked bool) (*httptest.ResponseRecorder, bindEnvelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if chunked {
		req.ContentLength = -1
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env bindEnvelope
	if w.Code != http.StatusCreated {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
		}
	}
	return w, env
}

func TestBindJSON_ReportsRulesByJSONName(t *testing.T) {
	w, env := sendRegister(t, registerEndpoint(), `{"email":"nope","password":"12345"}`, false)

	if w.Code != http.StatusBadRequest || env.Error.Code != "invalid_request" {
		t.Fatalf("got %d/%q, want 400/invalid_request", w.Code, env.Error.Code)
	}

	rules := map[string]string{}
	for _, fe := range env.Error.Details.Fields {
		if fe.Message == "" {
			t.Errorf("field %q has no message", fe.Field)
		}
		rules[fe.Field] = fe.Rule
	}

	for field, rule := range map[string]string{"name": "required", "email": "email", "password": "min"} {
		if rules[field] != rule {
			t.Errorf("field %q: got rule %q, want %q (all: %v)", field, rules[field], rule, rules)
		}
	}
}

func TestBindJSON_DecodeFailures(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantJSON  string
		wantField string
	}{
		{"empty", "", "empty_body", ""},
		{"syntax", `{"name" 1}`, "invalid_json_syntax", ""},
		{"type", `{"name":"A","email":"a@x.com","password":123456}`, "invalid_json_type", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := sendRegister(t, registerEndpoint(), tt.body, false)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want 400", w.Code)
			}
			if env.Error.Details.JSON != tt.wantJSON {
				t.Fatalf("got json detail %q, want %q", env.Error.Details.JSON, tt.wantJSON)
			}
			if env.Error.Details.Field != tt.wantField {
				t.Fatalf("got field %q, want %q", env.Error.Details.Field, tt.wantField)
			}
		})
	}
}

func TestBindJSON_ValidBody(t *testing.T) {
	w, _ := sendRegister(t, registerEndpoint(), `{"name":"Ann","email":"ann@x.com","password":"secret1"}`, false)
	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201", w.Code)
	}
}

func TestBindJSON_StreamedBodyOverLimit(t *testing.T) {
	// no declared length, so only the MaxBytesReader can stop it
	body := `{"name":"` + strings.Repeat("a", 64) + `"}`
	w, env := sendRegister(t, registerEndpoint(middlewares.MaxBodyBytes(16)), body, true)

	if w.Code != http.StatusRequestEntityTooLarge || env.Error.Code != "body_too_large" {
		t.Fatalf("got %d/%q, want 413/body_too_large", w.Code, env.Error.Code)
	}
}
