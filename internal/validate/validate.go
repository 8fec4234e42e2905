// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package validate provides the ordered field rules shared by every entity
// validator. A Rule reports the first failing check out of, in order:
// emptiness, minimum length, maximum length and character set. Each reason has
// its own error code so callers can report exactly which constraint failed.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"
)

// Error code suffixes appended to Rule.Code.
const (
	SuffixEmpty        = "_EMPTY"
	SuffixTooShort     = "_TOO_SHORT"
	SuffixTooLong      = "_TOO_LONG"
	SuffixInvalidChars = "_INVALID_CHARS"
)

// Charset restricts the characters a value may contain.
type Charset int

// Supported character sets.
const (
	// FreeText accepts any non-empty string within the length bounds.
	FreeText Charset = iota
	// Identifier accepts only ASCII letters, digits and underscores.
	Identifier
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Rule describes the constraints for a single field.
type Rule struct {
	// Code is the error code prefix, e.g. "USERNAME".
	Code string
	// Field is the human readable field name used in messages.
	Field string
	// Min and Max bound the length in runes. Zero disables the bound.
	Min int
	Max int
	// Charset selects the allowed characters.
	Charset Charset
}

// Check validates value against the rule.
func (r Rule) Check(value string) error {
	if value == "" {
		return oops.Code(r.Code+SuffixEmpty).
			With("field", r.Field).
			Errorf("%s cannot be empty", r.Field)
	}

	length := utf8.RuneCountInString(value)
	if r.Min > 0 && length < r.Min {
		return oops.Code(r.Code+SuffixTooShort).
			With("field", r.Field).
			With("min", r.Min).
			Errorf("%s must be at least %d characters", r.Field, r.Min)
	}
	if r.Max > 0 && length > r.Max {
		return oops.Code(r.Code+SuffixTooLong).
			With("field", r.Field).
			With("max", r.Max).
			Errorf("%s must be at most %d characters", r.Field, r.Max)
	}
	if r.Charset == Identifier && !identifierRegex.MatchString(value) {
		return oops.Code(r.Code+SuffixInvalidChars).
			With("field", r.Field).
			Errorf("%s may only contain letters, numbers, and underscores", r.Field)
	}
	return nil
}

// Normaliser trims a value and optionally folds it to lower case.
type Normaliser struct {
	// InvalidCode is returned when the trimmed value is empty.
	InvalidCode string
	Field       string
	Fold        bool
}

// Normalise returns the canonical form of value.
func (n Normaliser) Normalise(value string) (string, error) {
	out := strings.TrimSpace(value)
	if out == "" {
		return "", oops.Code(n.InvalidCode).
			With("field", n.Field).
			Errorf("%s cannot be empty", n.Field)
	}
	if n.Fold {
		out = strings.ToLower(out)
	}
	return out, nil
}
