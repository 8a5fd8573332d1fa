// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package captcha

import (
	"context"
	"crypto/hmac"
	cryptorand "crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/danielhkuo/tokichan/upload"
)

const DefaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Challenge is a secret phrase and its PNG rendering.
type Challenge struct {
	Secret string
	Image  []byte
}

type Config struct {
	PoolSize int
	Interval time.Duration
	Length   int
	Alphabet string
}

// Renderer turns a secret into an image.
type Renderer interface {
	Render(secret string) ([]byte, error)
}

type Service struct {
	cfg      Config
	renderer Renderer
	pool     atomic.Pointer[[]Challenge]
}

// New renders the first pool. It fails if any challenge cannot be rendered,
// so a returned Service always has a full pool.
func New(cfg Config, renderer Renderer) (*Service, error) {
	if cfg.PoolSize <= 0 {
		return nil, errors.New("captcha pool size must be positive")
	}
	if cfg.Length <= 0 {
		return nil, errors.New("captcha length must be positive")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("captcha rotation interval must be positive")
	}
	if cfg.Alphabet == "" {
		cfg.Alphabet = DefaultAlphabet
	}

	s := &Service{cfg: cfg, renderer: renderer}
	pool, err := s.generate()
	if err != nil {
		return nil, fmt.Errorf("failed to render initial captcha pool: %w", err)
	}
	s.pool.Store(&pool)
	return s, nil
}

// Draw returns a uniformly random challenge of the current pool.
func (s *Service) Draw() Challenge {
	pool := *s.pool.Load()
	return pool[rand.IntN(len(pool))]
}

// Run rotates the pool until ctx is done.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Rotate(); err != nil {
				slog.Warn("captcha rotation failed, keeping previous pool", "error", err)
			}
		}
	}
}

// Rotate replaces the whole pool. On error the current pool is untouched.
func (s *Service) Rotate() error {
	pool, err := s.generate()
	if err != nil {
		return err
	}
	s.pool.Store(&pool)
	return nil
}

// generate renders a pool whose secrets all come from one freshly seeded
// generator, drawing from the full alphabet.
func (s *Service) generate() ([]Challenge, error) {
	var seed [32]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("failed to seed captcha secrets: %w", err)
	}
	rng := rand.New(rand.NewChaCha8(seed))

	pool := make([]Challenge, s.cfg.PoolSize)
	for i := range pool {
		secret := sample(rng, s.cfg.Alphabet, s.cfg.Length)
		img, err := s.renderer.Render(secret)
		if err != nil {
			return nil, err
		}
		pool[i] = Challenge{Secret: secret, Image: img}
	}
	return pool, nil
}

func sample(rng *rand.Rand, alphabet string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rng.IntN(len(alphabet))]
	}
	return string(b)
}

// Token is the cookie value bound to a secret: base64 of its RIPEMD-160 digest.
func Token(secret string) string {
	return base64.StdEncoding.EncodeToString(upload.Sum([]byte(secret)))
}

// Match reports whether answer hashes to the token previously issued.
func Match(token, answer string) bool {
	return hmac.Equal([]byte(token), []byte(Token(answer)))
}
