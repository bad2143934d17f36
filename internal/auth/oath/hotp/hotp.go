// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023 UnderNET

// Package hotp provides the counter-based one-time password (RFC 4226).
package hotp

import "github.com/undernetirc/otpsvg/internal/auth/oath"

type HOTP struct {
	*oath.OTP
}

// New decodes seed and returns a HOTP generator with codes of length digits.
func New(seed string, length int) (*HOTP, error) {
	otp, err := oath.New(seed, length)
	if err != nil {
		return nil, err
	}
	return &HOTP{OTP: otp}, nil
}

func (h *HOTP) Generate(counter uint64) string {
	return h.GenerateOTP(counter)
}

// Generate is a one-shot helper decoding secret and computing the code for counter.
func Generate(secret string, counter uint64, digits int) (string, error) {
	h, err := New(secret, digits)
	if err != nil {
		return "", err
	}
	return h.Generate(counter), nil
}
