// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ringdex/ringdex/internal/auth"
	"github.com/ringdex/ringdex/pkg/errutil"
)

func TestArgon2idHasher(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	t.Run("hash verifies and is salted", func(t *testing.T) {
		first, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		second, err := hasher.Hash("samepassword")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(first, "$argon2id$"))
		assert.NotEqual(t, first, second)

		ok, err := hasher.Verify("samepassword", first)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password does not verify", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("wrongpassword", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		errutil.AssertErrorCode(t, err, "AUTH_EMPTY_PASSWORD")
	})

	t.Run("malformed hashes are errors", func(t *testing.T) {
		for _, hash := range []string{
			"",
			"not-a-hash",
			"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=65536,t=1,p=999$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
		} {
			_, err := hasher.Verify("password", hash)
			errutil.AssertErrorCode(t, err, "AUTH_INVALID_HASH")
		}
	})

	t.Run("needs upgrade for foreign hashes", func(t *testing.T) {
		assert.False(t, hasher.NeedsUpgrade("$argon2id$v=19$m=65536,t=1,p=4$salt$hash"))
		assert.True(t, hasher.NeedsUpgrade("$2a$10$abcdefghijklmnopqrstuv"))
	})
}

func TestBcryptHasher(t *testing.T) {
	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := hasher.Hash("correctpassword")
	require.NoError(t, err)

	ok, err := hasher.Verify("correctpassword", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("wrongpassword", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = hasher.Verify("password", "garbage")
	errutil.AssertErrorCode(t, err, "AUTH_INVALID_HASH")

	assert.False(t, hasher.NeedsUpgrade(hash))
	assert.True(t, hasher.NeedsUpgrade("$argon2id$v=19$m=65536,t=1,p=4$salt$hash"))

	stronger, err := auth.NewBcryptHasher(bcrypt.MinCost + 1)
	require.NoError(t, err)
	assert.True(t, stronger.NeedsUpgrade(hash))
}

func TestNewBcryptHasherRejectsBadCost(t *testing.T) {
	_, err := auth.NewBcryptHasher(bcrypt.MaxCost + 1)
	errutil.AssertErrorCode(t, err, "AUTH_INVALID_BCRYPT_COST")
}

func TestNewHasher(t *testing.T) {
	argon := auth.NewArgon2idHasher()
	argonHash, err := argon.Hash("password123")
	require.NoError(t, err)

	bc, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	bcryptHash, err := bc.Hash("password123")
	require.NoError(t, err)

	t.Run("argon2id primary verifies both algorithms", func(t *testing.T) {
		hasher, err := auth.NewHasher(auth.AlgorithmArgon2id, bcrypt.MinCost)
		require.NoError(t, err)

		for _, hash := range []string{argonHash, bcryptHash} {
			ok, err := hasher.Verify("password123", hash)
			require.NoError(t, err)
			assert.True(t, ok)
		}
		assert.False(t, hasher.NeedsUpgrade(argonHash))
		assert.True(t, hasher.NeedsUpgrade(bcryptHash))

		fresh, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(fresh, "$argon2id$"))
	})

	t.Run("bcrypt primary upgrades argon2id hashes", func(t *testing.T) {
		hasher, err := auth.NewHasher(auth.AlgorithmBcrypt, bcrypt.MinCost)
		require.NoError(t, err)

		assert.True(t, hasher.NeedsUpgrade(argonHash))
		assert.False(t, hasher.NeedsUpgrade(bcryptHash))

		ok, err := hasher.Verify("password123", argonHash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := auth.NewHasher("md5", 0)
		errutil.AssertErrorCode(t, err, "AUTH_UNKNOWN_HASHER")
	})
}
