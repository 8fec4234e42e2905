// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package auth provides account authentication for Ringdex.
//
// # Domain Types
//
// User and Session are created with their constructors:
//   - NewUser - creates an active User with a password hash
//   - NewSession - creates a Session with a random identifier and expiry
//
// Lockout is an explicit two-state field on User (AccountActive,
// AccountLocked). It is entered by RecordFailure and left only through Unlock
// or a password change.
//
// # Services
//
//   - SessionService - session authentication, creation and ending
//   - Authenticator - login with lockout, registration, password changes
//
// Services are created with New* constructors that validate dependencies.
// Every repository method takes an optional store.Tx so callers can join a
// transaction they already hold.
package auth
