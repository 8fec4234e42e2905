// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringdex/ringdex/internal/validate"
	"github.com/ringdex/ringdex/pkg/errutil"
)

func TestRule_Check(t *testing.T) {
	identifier := validate.Rule{Code: "USERNAME", Field: "username", Min: 3, Max: 8, Charset: validate.Identifier}
	text := validate.Rule{Code: "RING_NAME", Field: "name", Min: 1, Max: 5, Charset: validate.FreeText}

	tests := []struct {
		name     string
		rule     validate.Rule
		value    string
		wantCode string
	}{
		{"valid identifier", identifier, "ab_12", ""},
		{"empty", identifier, "", "USERNAME_EMPTY"},
		{"too short", identifier, "ab", "USERNAME_TOO_SHORT"},
		{"too long", identifier, "abcdefghi", "USERNAME_TOO_LONG"},
		{"bad characters", identifier, "ab-cd", "USERNAME_INVALID_CHARS"},
		{"short wins over charset", identifier, "a!", "USERNAME_TOO_SHORT"},
		{"long wins over charset", identifier, "a-b-c-d-e", "USERNAME_TOO_LONG"},
		{"free text allows punctuation", text, "a b!", ""},
		{"free text counts runes", text, "héllo", ""},
		{"free text too long", text, "hello!", "RING_NAME_TOO_LONG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Check(tt.value)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestRule_CheckZeroBounds(t *testing.T) {
	rule := validate.Rule{Code: "DESCRIPTION", Field: "description"}
	assert.NoError(t, rule.Check("x"))
	errutil.AssertErrorCode(t, rule.Check(""), "DESCRIPTION_EMPTY")
}

func TestNormaliser_Normalise(t *testing.T) {
	folding := validate.Normaliser{InvalidCode: "INVALID_EMAIL", Field: "email", Fold: true}
	trimming := validate.Normaliser{InvalidCode: "INVALID_RING_NAME", Field: "name"}

	got, err := folding.Normalise("  TEST@EXAMPLE.ORG")
	require.NoError(t, err)
	assert.Equal(t, "test@example.org", got)

	got, err = trimming.Normalise("  My Ring \t")
	require.NoError(t, err)
	assert.Equal(t, "My Ring", got)

	_, err = trimming.Normalise("")
	errutil.AssertErrorCode(t, err, "INVALID_RING_NAME")

	_, err = folding.Normalise("   ")
	errutil.AssertErrorCode(t, err, "INVALID_EMAIL")
}
