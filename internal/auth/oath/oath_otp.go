// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2024 UnderNET

// Package oath implements the HMAC-based one-time password primitive (RFC 4226)
// shared by the hotp and totp packages.
package oath

import (
	"crypto/hmac"

	// SHA1 is required by RFC 4226 (HOTP) and RFC 6238 (TOTP). Authenticator apps
	// default to HMAC-SHA1, so it is kept for interoperability only.
	// nolint:gosec // SHA1 is used as part of HMAC-SHA1 which is still secure for this use case
	"crypto/sha1"
	"encoding/binary"
	"fmt"
)

const (
	// MinDigits is the smallest code length accepted by GenerateOTP.
	MinDigits = 1
	// MaxDigits is the largest code length accepted by GenerateOTP. The truncated
	// value is 31 bits wide, so more than 10 digits would only add leading zeros.
	MaxDigits = 10
)

var pow10 = [...]uint64{
	1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000, 1000000000, 10000000000,
}

// OTP holds a decoded key and the code length.
type OTP struct {
	key       []byte
	otpLength int
}

// New decodes seed and returns an OTP generator producing codes of otpLength digits.
// A seed that is not valid base32 yields a *DecodeError.
func New(seed string, otpLength int) (*OTP, error) {
	if otpLength < MinDigits || otpLength > MaxDigits {
		return nil, fmt.Errorf("otp length must be between %d and %d, got %d", MinDigits, MaxDigits, otpLength)
	}
	key, err := DecodeSecret(seed)
	if err != nil {
		return nil, err
	}
	return &OTP{key: key, otpLength: otpLength}, nil
}

// GenerateOTP computes the code for counter.
func (otp *OTP) GenerateOTP(counter uint64) string {
	code := Truncate(otp.Sum(counter)) % pow10[otp.otpLength]
	return fmt.Sprintf("%0*d", otp.otpLength, code)
}

// Sum returns HMAC-SHA1(key, counter) with counter as 8 bytes big endian.
func (otp *OTP) Sum(counter uint64) []byte {
	h := hmac.New(sha1.New, otp.key)
	h.Write(itob(counter))
	return h.Sum(nil)
}

// Length returns the number of digits in generated codes.
func (otp *OTP) Length() int {
	return otp.otpLength
}

// Truncate performs the RFC 4226 dynamic truncation of an HMAC-SHA1 digest.
func Truncate(sum []byte) uint64 {
	o := sum[len(sum)-1] & 0xf
	v := binary.BigEndian.Uint32(sum[o : o+4])
	v &= 0x7fffffff
	return uint64(v)
}

func itob(input uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, input)
	return buf
}
