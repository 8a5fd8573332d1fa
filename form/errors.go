// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package form

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/danielhkuo/tokichan/upload"
)

var (
	ErrMissingKey       = errors.New("no key for one or more fields")
	ErrUnknownField     = errors.New("unrecognized field")
	ErrInvalidParent    = errors.New("parent must be a positive decimal id")
	ErrInvalidEncoding  = errors.New("text field is not valid UTF-8")
	ErrMalformed        = errors.New("malformed multipart body")
	ErrIncorrectCaptcha = errors.New("incorrect captcha")
	ErrSizeLimit        = errors.New("body exceeded allowed limit")
)

// UnrecognizedFileSlotError reports a file field whose bytes are not an
// allowed file type.
type UnrecognizedFileSlotError struct {
	Slot int
}

func (e *UnrecognizedFileSlotError) Error() string {
	return fmt.Sprintf("file `%d` doesn't have a recognized type", e.Slot)
}

// ValidationError maps a field name to what is wrong with it.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// StatusCode maps a submission error to the HTTP status returned to the client.
func StatusCode(err error) int {
	var slot *UnrecognizedFileSlotError
	var invalid ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrIncorrectCaptcha):
		return http.StatusForbidden
	case errors.Is(err, ErrSizeLimit):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, upload.ErrIO):
		return http.StatusInternalServerError
	case errors.As(err, &slot), errors.As(err, &invalid),
		errors.Is(err, ErrMissingKey), errors.Is(err, ErrUnknownField),
		errors.Is(err, ErrInvalidParent), errors.Is(err, ErrInvalidEncoding),
		errors.Is(err, ErrMalformed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message is the client facing text for a submission error. It never
// includes anything about the expected captcha.
func Message(err error) string {
	switch StatusCode(err) {
	case http.StatusForbidden:
		return ErrIncorrectCaptcha.Error()
	case http.StatusInternalServerError:
		return "Failed to create post"
	default:
		return err.Error()
	}
}
