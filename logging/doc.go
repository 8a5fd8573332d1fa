// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package logging wires log/slog to a zerolog backend.
//
// Packages log through the slog default; main calls Setup once:
//
//	logger, err := logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogPretty)
package logging
