// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package form

import (
	"net/mail"
	"unicode/utf8"

	"github.com/danielhkuo/tokichan/models"
)

const (
	MaxOpLength      = 64
	MaxEmailLength   = 128
	MaxSubjectLength = 128
	MaxBodyLength    = 10000
	MaxFiles         = 4
)

// Validate checks a parsed input before it is persisted. All problems are
// reported at once.
func Validate(in models.PostInput) error {
	errs := ValidationError{}

	if in.Board == "" {
		errs[models.FieldBoard] = "board is required"
	}
	if utf8.RuneCountInString(in.Op) > MaxOpLength {
		errs[models.FieldOp] = "name is too long"
	}
	if in.Email != "" {
		if utf8.RuneCountInString(in.Email) > MaxEmailLength {
			errs[models.FieldEmail] = "email is too long"
		} else if _, err := mail.ParseAddress(in.Email); err != nil && in.Email != "sage" {
			errs[models.FieldEmail] = "email is not a valid address"
		}
	}
	if utf8.RuneCountInString(in.Subject) > MaxSubjectLength {
		errs[models.FieldSubject] = "subject is too long"
	}
	if utf8.RuneCountInString(in.Body) > MaxBodyLength {
		errs[models.FieldBody] = "body is too long"
	}
	if in.Body == "" && len(in.Files) == 0 {
		errs[models.FieldBody] = "a post needs a body or a file"
	}
	if len(in.Files) > MaxFiles {
		errs["files"] = "too many files"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
