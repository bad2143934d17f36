// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

package render

// Outcome is what gets rendered: either a code or the reason no code could be
// produced. The zero value is an invalid outcome without a reason.
type Outcome struct {
	code   string
	reason string
	ok     bool
}

// Success returns an outcome carrying a one-time password.
func Success(code string) Outcome {
	return Outcome{code: code, ok: true}
}

// Invalid returns an outcome for input that could not be turned into a code.
func Invalid(reason string) Outcome {
	return Outcome{reason: reason}
}

// OK reports whether the outcome carries a code.
func (o Outcome) OK() bool {
	return o.ok
}

// Code returns the one-time password, or "" for an invalid outcome.
func (o Outcome) Code() string {
	return o.code
}

// Reason returns why the outcome is invalid, or "" for a successful one.
func (o Outcome) Reason() string {
	return o.reason
}
