// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package auth

import (
	"net/mail"

	"github.com/samber/oops"

	"github.com/ringdex/ringdex/internal/validate"
)

// Normalisation failure codes.
const (
	CodeInvalidUsername = "INVALID_USERNAME"
	CodeInvalidEmail    = "INVALID_EMAIL"
)

var (
	usernameNormaliser = validate.Normaliser{InvalidCode: CodeInvalidUsername, Field: "username", Fold: true}
	emailNormaliser    = validate.Normaliser{InvalidCode: CodeInvalidEmail, Field: "email", Fold: true}
)

// NormaliseUsername trims and lower-cases a username.
func NormaliseUsername(username string) (string, error) {
	return usernameNormaliser.Normalise(username)
}

// NormaliseEmail trims and lower-cases an email address.
func NormaliseEmail(email string) (string, error) {
	return emailNormaliser.Normalise(email)
}

// Limits holds the configurable account field constraints.
type Limits struct {
	UsernameMin int
	UsernameMax int
	EmailMax    int
	PasswordMin int
	PasswordMax int
	// PasswordMaxBytes caps the encoded length for hashers that truncate or
	// reject long input. Zero disables the cap.
	PasswordMaxBytes int
}

// DefaultLimits returns the stock account constraints.
func DefaultLimits() Limits {
	return Limits{
		UsernameMin: 3,
		UsernameMax: 30,
		EmailMax:    254,
		PasswordMin: 8,
		PasswordMax: 128,
	}
}

// ValidateUsername checks a normalised username: letters, digits and underscores.
func (l Limits) ValidateUsername(username string) error {
	return validate.Rule{
		Code:    "USERNAME",
		Field:   "username",
		Min:     l.UsernameMin,
		Max:     l.UsernameMax,
		Charset: validate.Identifier,
	}.Check(username)
}

// ValidateEmail checks a normalised email address. The address must be a bare
// RFC 5322 address without a display name.
func (l Limits) ValidateEmail(email string) error {
	if err := (validate.Rule{Code: "EMAIL", Field: "email", Max: l.EmailMax}).Check(email); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return oops.Code("EMAIL_INVALID_FORMAT").
			With("field", "email").
			Errorf("email must be a valid address")
	}
	return nil
}

// ValidatePassword checks a plaintext password's length.
func (l Limits) ValidatePassword(password string) error {
	err := validate.Rule{
		Code:  "PASSWORD",
		Field: "password",
		Min:   l.PasswordMin,
		Max:   l.PasswordMax,
	}.Check(password)
	if err != nil {
		return err
	}
	if l.PasswordMaxBytes > 0 && len(password) > l.PasswordMaxBytes {
		return oops.Code("PASSWORD" + validate.SuffixTooLong).
			With("field", "password").
			With("max_bytes", l.PasswordMaxBytes).
			Errorf("password must be at most %d bytes", l.PasswordMaxBytes)
	}
	return nil
}
