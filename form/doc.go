// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package form parses post creation forms.

# Parsing

A Parser streams a multipart/form-data body field by field:

	parser := form.NewParser(upload.NewSniffer(cfg.AllowedMIMEs), store)
	input, batch, err := parser.ParseRequest(r)
	if err == nil {
		err = batch.Wait()
	}

Each non-empty field is sniffed. Allowed file types are saved under
upload.Name(bytes, extension) in the background and their names are
collected in input.Files. Everything else must be a known text field
(board, parent, op, email, subject, body, captcha). parent is a decimal id.

# Errors

  - ErrMissingKey: a field had no name
  - *UnrecognizedFileSlotError: a file input (file, fileN, files) whose
    bytes are not an allowed type, with its slot index
  - ErrUnknownField: any other unexpected field name
  - ErrMalformed: broken multipart framing or not multipart at all
  - ErrSizeLimit: the body hit the configured upload limit
  - ErrIncorrectCaptcha: raised by the captcha middleware, not by Parse

StatusCode and Message turn any of these into an HTTP response.

# Validation

Validate checks lengths and that a post has a body or a file.
*/
package form
