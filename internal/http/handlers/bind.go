package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// bindDetails is the details object of a 400 from BindJSON. JSON names the
// decoding problem; Fields lists per-field failures.
type bindDetails struct {
	JSON   string       `json:"json,omitempty"`
	Field  string       `json:"field,omitempty"`
	Offset int64        `json:"offset,omitempty"`
	Reason string       `json:"reason,omitempty"`
	Fields []FieldError `json:"fields,omitempty"`
}

// BindJSON decodes and validates the body into out. On failure it writes the
// response and returns false.
func BindJSON(ctx *gin.Context, out any) bool {
	err := ctx.ShouldBindJSON(out)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "body_too_large",
			fmt.Sprintf("Request body must not exceed %d bytes", tooLarge.Limit), nil)
		return false
	}

	RespondBadRequest(ctx, "Invalid request body", describeBindError(err, structType(out)))
	return false
}

func describeBindError(err error, root reflect.Type) bindDetails {
	var (
		verrs     validator.ValidationErrors
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &verrs):
		d := bindDetails{Fields: make([]FieldError, len(verrs))}
		for i, fe := range verrs {
			d.Fields[i] = FieldError{
				Field:   jsonName(root, fe.StructField()),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: ruleMessage(fe.Tag(), fe.Param()),
			}
		}
		return d

	case errors.Is(err, io.EOF):
		return bindDetails{JSON: "empty_body"}

	case errors.As(err, &syntaxErr):
		return bindDetails{JSON: "invalid_json_syntax", Offset: syntaxErr.Offset}

	case errors.As(err, &typeErr):
		name := jsonName(root, typeErr.Field)
		return bindDetails{
			JSON:  "invalid_json_type",
			Field: name,
			Fields: []FieldError{{
				Field:   name,
				Rule:    "type",
				Message: "must be of type " + typeErr.Type.String(),
			}},
		}
	}

	return bindDetails{Reason: err.Error()}
}

func structType(v any) reflect.Type {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// jsonName maps a Go field name to its json tag. Request bodies are flat, so
// only the top level is searched; decoder paths that are already json names
// fall through unchanged.
func jsonName(root reflect.Type, goName string) string {
	if root == nil {
		return goName
	}

	sf, ok := root.FieldByName(goName)
	if !ok {
		return goName
	}

	tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if tag == "" || tag == "-" {
		return sf.Name
	}
	return tag
}

var ruleMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"min":      "must be at least %s characters",
	"max":      "must be at most %s characters",
}

func ruleMessage(rule, param string) string {
	if msg, ok := ruleMessages[rule]; ok {
		if strings.Contains(msg, "%s") {
			return fmt.Sprintf(msg, param)
		}
		return msg
	}
	if param != "" {
		return fmt.Sprintf("failed %s validation (%s)", rule, param)
	}
	return "failed " + rule + " validation"
}
