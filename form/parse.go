// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/danielhkuo/tokichan/models"
	"github.com/danielhkuo/tokichan/upload"
)

// setter assigns the text of one known field.
type setter func(in *models.PostInput, value string) error

var textFields = map[string]setter{
	models.FieldBoard:   func(in *models.PostInput, v string) error { in.Board = v; return nil },
	models.FieldOp:      func(in *models.PostInput, v string) error { in.Op = v; return nil },
	models.FieldEmail:   func(in *models.PostInput, v string) error { in.Email = v; return nil },
	models.FieldSubject: func(in *models.PostInput, v string) error { in.Subject = v; return nil },
	models.FieldBody:    func(in *models.PostInput, v string) error { in.Body = v; return nil },
	models.FieldCaptcha: func(in *models.PostInput, v string) error { in.Captcha = v; return nil },
	models.FieldParent:  setParent,
}

func setParent(in *models.PostInput, v string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidParent, v)
	}
	in.Parent = &id
	return nil
}

// Parser turns a post creation form into a models.PostInput.
type Parser struct {
	sniffer *upload.Sniffer
	store   upload.Store
}

func NewParser(sniffer *upload.Sniffer, store upload.Store) *Parser {
	return &Parser{sniffer: sniffer, store: store}
}

// ParseRequest parses r's multipart body. See Parse.
func (p *Parser) ParseRequest(r *http.Request) (models.PostInput, *upload.Batch, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return models.PostInput{}, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return p.Parse(r.Context(), mr)
}

// Parse walks the fields of mr in order. Fields whose bytes sniff as an
// allowed file type are scheduled for saving under their content-addressed
// name, whatever the field is called; every other non-empty field must be
// one of the known text fields. Empty fields are skipped.
//
// The returned batch holds the scheduled saves. Callers must Wait on it
// before persisting the input. It is non-nil whenever parsing got far
// enough to schedule anything, including on error.
func (p *Parser) Parse(ctx context.Context, mr *multipart.Reader) (models.PostInput, *upload.Batch, error) {
	var in models.PostInput
	batch := upload.NewBatch(ctx, p.store)
	fileSlots := 0

	for {
		if err := ctx.Err(); err != nil {
			return in, batch, err
		}

		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return in, batch, readError(err)
		}

		key := part.FormName()
		if key == "" {
			part.Close()
			return in, batch, ErrMissingKey
		}

		value, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return in, batch, readError(err)
		}

		slot, isSlot := fileSlot(key, fileSlots)
		if isSlot {
			fileSlots++
		}

		if len(value) == 0 {
			continue
		}

		if mimeType, ok := p.sniffer.Sniff(value); ok {
			name := upload.Name(value, upload.Extension(mimeType))
			batch.Save(name, value)
			continue
		}

		if set, ok := textFields[key]; ok {
			if !utf8.Valid(value) {
				return in, batch, fmt.Errorf("%w: %s", ErrInvalidEncoding, key)
			}
			if err := set(&in, string(value)); err != nil {
				return in, batch, err
			}
			continue
		}

		if isSlot {
			return in, batch, &UnrecognizedFileSlotError{Slot: slot}
		}
		return in, batch, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}

	in.Files = batch.Names()
	slog.Debug("parsed post form", "board", in.Board, "parent", in.Parent, "files", len(in.Files))
	return in, batch, nil
}

// fileSlot reports whether key names a file input. "file3" is slot 3;
// unnumbered names ("file", "files", "files[]") take the next ordinal.
func fileSlot(key string, ordinal int) (int, bool) {
	switch key {
	case "file", "files", "files[]":
		return ordinal, true
	}
	digits, ok := strings.CutPrefix(key, "file")
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func readError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrSizeLimit
	}
	return fmt.Errorf("%w: %w", ErrMalformed, err)
}
