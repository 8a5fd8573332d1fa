// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package captcha maintains a rotating pool of rendered challenges.

# Service

A Service renders PoolSize challenges up front and then regenerates the
whole pool every Interval:

	svc, err := captcha.New(cfg, renderer)
	go svc.Run(ctx)

	c := svc.Draw() // c.Secret, c.Image (PNG)

Draw never blocks and never sees an empty or half-built pool: a rotation
builds a fresh slice and publishes it with a single atomic pointer swap.
A failed rotation is logged and the previous pool stays in service until
the next tick.

# Binding

The secret is never sent to the client. Instead the client gets a cookie
holding a one-way token of it:

	value := captcha.Token(c.Secret)
	ok := captcha.Match(value, submitted)
*/
package captcha
