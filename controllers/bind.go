package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"safetravels-api/errs"
	"safetravels-api/validation"
)

// normalizer is implemented by requests that tidy their input (trimming,
// lower-casing emails) before validation.
type normalizer interface {
	normalize()
}

// bind decodes the body by content type (JSON or form) and checks it
// against its validate tags.
func bind(c *gin.Context, req interface{}) error {
	if err := c.ShouldBind(req); err != nil {
		return bindError(c, err)
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	return validation.Check(req).Err()
}

// bindError reports a decode failure against the offending field without
// echoing decoder internals back to the client.
func bindError(c *gin.Context, err error) error {
	field, message := "body", "is malformed"

	var typeErr *json.UnmarshalTypeError
	var numErr *strconv.NumError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			field = typeErr.Field
		}
		message = "has the wrong type"
	case errors.As(err, &numErr):
		if name := formField(c, numErr.Num); name != "" {
			field = name
		}
		message = "has the wrong type"
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		message = "is not valid JSON"
	case errors.Is(err, io.EOF):
		message = "is empty"
	}

	return errs.NewValidation("Invalid request body", []errs.FieldError{{Field: field, Message: message}})
}

// formField finds the submitted form field holding value. Form binding
// does not say which field failed to parse.
func formField(c *gin.Context, value string) string {
	if c.Request.PostForm == nil {
		return ""
	}
	names := make([]string, 0, len(c.Request.PostForm))
	for name := range c.Request.PostForm {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range c.Request.PostForm[name] {
			if v == value {
				return name
			}
		}
	}
	return ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
