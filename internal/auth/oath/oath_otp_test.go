// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023 UnderNET

package oath

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// base32 of "12345678901234567890"
const rfcSeed = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestOathNewKeepsLength(t *testing.T) {
	otp, err := New(rfcSeed, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, otp.Length())
	assert.Equal(t, []byte("12345678901234567890"), otp.key)
}

func TestOathNewRejectsLength(t *testing.T) {
	for _, n := range []int{-1, 0, 11} {
		_, err := New(rfcSeed, n)
		assert.Error(t, err, "length %d", n)
	}
}

func TestOathGenerateZeroPadded(t *testing.T) {
	otp, err := New(rfcSeed, 10)
	require.NoError(t, err)
	for c := uint64(0); c < 50; c++ {
		assert.Len(t, otp.GenerateOTP(c), 10)
	}
}

func TestTruncate(t *testing.T) {
	// Worked example from RFC 4226 section 5.4
	sum := []byte{
		0x1f, 0x86, 0x98, 0x69, 0x0e, 0x02, 0xca, 0x16, 0x61, 0x85,
		0x50, 0xef, 0x7f, 0x19, 0xda, 0x8e, 0x94, 0x5b, 0x55, 0x5a,
	}
	assert.Equal(t, uint64(0x50ef7f19), Truncate(sum))
	assert.Equal(t, uint64(872921), Truncate(sum)%1000000)
}

func TestTruncateMasksSignBit(t *testing.T) {
	sum := make([]byte, 20)
	sum[0], sum[1], sum[2], sum[3] = 0xff, 0xff, 0xff, 0xff
	assert.Equal(t, uint64(0x7fffffff), Truncate(sum))
}

func TestDecodeSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   []byte
	}{
		{"padded", "GEZDGNBVGY======", []byte("123456")},
		{"unpadded", "GEZDGNBVGY", []byte("123456")},
		{"lowercase", "gezdgnbvgy3tqojq", []byte("1234567890")},
		{"spaces", "GEZD GNBV GY3T QOJQ", []byte("1234567890")},
		{"surrounding whitespace", "\tGEZDGNBVGY3TQOJQ\n", []byte("1234567890")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSecret(tt.secret)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeSecretInvalid(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"invalid characters", "not base32!!"},
		{"digits outside alphabet", "GEZDGNB1"},
		{"bad length", "A"},
		{"padding only", "========"},
		{"dotless i", "ıııııııı"},
		{"long s", "ſſſſſſſſ"},
		{"no-break space", "GEZD\u00a0GNBV"},
		{"em space", "GEZD\u2003GNBV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := DecodeSecret(tt.secret)
			assert.Nil(t, key)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidEncoding))

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			assert.NotEmpty(t, decodeErr.Reason)
		})
	}
}

func TestNewRejectsInvalidSecret(t *testing.T) {
	otp, err := New("not base32!!", 6)
	assert.Nil(t, otp)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}
