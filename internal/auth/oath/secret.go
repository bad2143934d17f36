// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2024 UnderNET

package oath

import (
	"encoding/base32"
	"errors"
	"strings"
	"unicode"
)

// ErrInvalidEncoding is returned when a secret is empty or not valid base32.
var ErrInvalidEncoding = errors.New("invalid secret encoding")

// DecodeError describes why a secret could not be decoded.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return ErrInvalidEncoding.Error() + ": " + e.Reason + ": " + e.Err.Error()
	}
	return ErrInvalidEncoding.Error() + ": " + e.Reason
}

// Unwrap lets errors.Is match ErrInvalidEncoding.
func (e *DecodeError) Unwrap() error {
	return ErrInvalidEncoding
}

// DecodeSecret decodes a base32 secret. Whitespace is ignored, lowercase letters
// are accepted and missing padding is added. An empty secret, a non-alphabet
// character or an empty decoded key is rejected.
func DecodeSecret(secret string) ([]byte, error) {
	s, ok := normalize(secret)
	if !ok {
		return nil, &DecodeError{Reason: "secret is not valid base32"}
	}
	if s == "" {
		return nil, &DecodeError{Reason: "secret is empty"}
	}

	if n := len(s) % 8; n != 0 {
		s += strings.Repeat("=", 8-n)
	}

	key, err := base32.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &DecodeError{Reason: "secret is not valid base32", Err: err}
	}
	if len(key) == 0 {
		return nil, &DecodeError{Reason: "decoded key is empty"}
	}

	return key, nil
}

// normalize strips ASCII whitespace and upper-cases the rest. It reports false
// when the secret holds a non-ASCII rune, since case folding would otherwise map
// letters such as U+0131 onto the base32 alphabet.
func normalize(secret string) (string, bool) {
	var b strings.Builder
	b.Grow(len(secret))
	for _, r := range secret {
		if r > unicode.MaxASCII {
			return "", false
		}
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			continue
		}
		if 'a' <= r && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String(), true
}
