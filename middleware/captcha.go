// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/tokichan/captcha"
	"github.com/danielhkuo/tokichan/form"
	"github.com/danielhkuo/tokichan/models"
	"github.com/danielhkuo/tokichan/upload"
)

// CaptchaCookie holds the hashed secret of the last issued challenge
const CaptchaCookie = "captcha"

// Drawer hands out challenges. *captcha.Service implements it.
type Drawer interface {
	Draw() captcha.Challenge
}

// Submission is the outcome of VerifyCaptcha. Exactly one of Input and
// Err is meaningful: a rejected submission carries a zero Input.
type Submission struct {
	Input models.PostInput
	// Batch holds file saves scheduled while parsing. May be nil.
	Batch *upload.Batch
	Err   error
}

// IssueCaptcha draws a challenge, binds its hashed secret to the captcha
// cookie and exposes the image to next through ChallengeImage.
func IssueCaptcha(challenges Drawer, secure bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := challenges.Draw()

		http.SetCookie(w, &http.Cookie{
			Name:     CaptchaCookie,
			Value:    captcha.Token(c.Secret),
			Path:     "/",
			Secure:   secure,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})

		ctx := context.WithValue(r.Context(), challengeKey, c.Image)
		next(w, r.WithContext(ctx))
	}
}

// ChallengeImage returns the PNG issued for this request, or nil
func ChallengeImage(ctx context.Context) []byte {
	img, _ := ctx.Value(challengeKey).([]byte)
	return img
}

// VerifyCaptcha parses the post form and checks its captcha field against
// the cookie set by IssueCaptcha. The result reaches next as a Submission.
// A missing cookie and a wrong answer are indistinguishable downstream.
func VerifyCaptcha(parser *form.Parser, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, batch, err := parser.ParseRequest(r)
		if err == nil {
			cookie, cerr := r.Cookie(CaptchaCookie)
			if cerr != nil || !captcha.Match(cookie.Value, in.Captcha) {
				slog.Debug("captcha rejected",
					"id", RequestID(r.Context()),
					"cookie", cerr == nil,
				)
				err = form.ErrIncorrectCaptcha
			}
		}

		sub := Submission{Batch: batch, Err: err}
		if err == nil {
			sub.Input = in
		}

		ctx := context.WithValue(r.Context(), submissionKey, sub)
		next(w, r.WithContext(ctx))
	}
}

// SubmissionFrom returns the Submission left by VerifyCaptcha
func SubmissionFrom(ctx context.Context) (Submission, bool) {
	sub, ok := ctx.Value(submissionKey).(Submission)
	return sub, ok
}
