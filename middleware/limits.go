// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/time/rate"
)

// BodyLimit caps the request body at limit bytes. Reads past the cap fail
// with *http.MaxBytesError.
func BodyLimit(limit int64, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > limit {
			slog.Info("request body too large",
				"id", RequestID(r.Context()),
				"size", humanize.IBytes(uint64(r.ContentLength)),
				"limit", humanize.IBytes(uint64(limit)),
			)
			ErrorResponse(w, http.StatusRequestEntityTooLarge, "body exceeded allowed limit")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next(w, r)
	}
}

// sweepEvery is how often Allow looks for idle buckets to drop.
const sweepEvery = time.Minute

// RateLimiter hands out one token bucket per client key. Buckets that have
// refilled completely are dropped, since a fresh bucket behaves the same.
type RateLimiter struct {
	limiters  *xsync.Map[string, *rate.Limiter]
	interval  time.Duration
	burst     int
	proxies   []netip.Prefix
	lastSweep atomic.Int64
}

// NewRateLimiter allows perMinute requests per client, with bursts of the
// same size. Forwarding headers are only believed from peers inside proxies.
func NewRateLimiter(perMinute int, proxies ...netip.Prefix) *RateLimiter {
	l := &RateLimiter{
		limiters: xsync.NewMap[string, *rate.Limiter](xsync.WithPresize(100)),
		interval: time.Minute / time.Duration(perMinute),
		burst:    perMinute,
		proxies:  proxies,
	}
	l.lastSweep.Store(time.Now().UnixNano())
	return l
}

// Allow takes a token from key's bucket.
func (l *RateLimiter) Allow(key string) bool {
	now := time.Now()
	if last := l.lastSweep.Load(); now.UnixNano()-last > int64(sweepEvery) &&
		l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		l.Sweep(now)
	}

	lim, _ := l.limiters.LoadOrCompute(key, func() (*rate.Limiter, bool) {
		return rate.NewLimiter(rate.Every(l.interval), l.burst), false
	})
	return lim.AllowN(now, 1)
}

// Sweep drops the buckets that are full at now and returns how many went.
func (l *RateLimiter) Sweep(now time.Time) int {
	dropped := 0
	l.limiters.Range(func(key string, _ *rate.Limiter) bool {
		l.limiters.Compute(key, func(lim *rate.Limiter, loaded bool) (*rate.Limiter, xsync.ComputeOp) {
			if loaded && lim.TokensAt(now) >= float64(l.burst) {
				dropped++
				return lim, xsync.DeleteOp
			}
			return lim, xsync.CancelOp
		})
		return true
	})
	if dropped > 0 {
		slog.Debug("rate limiter swept idle clients", "dropped", dropped, "clients", l.limiters.Size())
	}
	return dropped
}

// Clients is the number of tracked client keys.
func (l *RateLimiter) Clients() int {
	return l.limiters.Size()
}

// ClientKey is the address a request is limited under: the TCP peer, or,
// when the peer is a trusted proxy, the nearest untrusted X-Forwarded-For
// hop (then X-Real-IP).
func (l *RateLimiter) ClientKey(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !l.trusted(peer) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop != "" && !l.trusted(hop) {
			return hop
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func (l *RateLimiter) trusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range l.proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Limit rejects requests from clients that ran out of tokens with 429.
func (l *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(l.ClientKey(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(l.interval.Seconds()))))
			ErrorResponse(w, http.StatusTooManyRequests, "Posting too fast")
			return
		}
		next(w, r)
	}
}
