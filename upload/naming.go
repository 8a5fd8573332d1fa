// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upload

import (
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // names must stay compatible with existing stores
)

// Sum returns the RIPEMD-160 digest of data.
func Sum(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)
	return h.Sum(nil)
}

// Name derives the stored name of a file from its content and a type
// label, e.g. "Cd2x...Q.png". Identical content and label always give
// the same name.
func Name(content []byte, label string) string {
	return base64.RawURLEncoding.EncodeToString(Sum(content)) + "." + label
}

// ValidName reports whether name has the shape produced by Name.
// Used to reject path tricks before a name reaches a Store.
func ValidName(name string) bool {
	digest, label, ok := strings.Cut(name, ".")
	if !ok || len(digest) != base64.RawURLEncoding.EncodedLen(ripemd160.Size) || label == "" {
		return false
	}
	for _, c := range digest {
		if !isURLSafe(c) {
			return false
		}
	}
	for _, c := range label {
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' || c == '+') {
			return false
		}
	}
	return true
}

func isURLSafe(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_'
}
