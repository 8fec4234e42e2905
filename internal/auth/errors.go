// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package auth

// Error codes returned by this package. Callers map them to transport statuses.
const (
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeUserExists          = "USER_ALREADY_EXISTS"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeSessionExpired      = "SESSION_EXPIRED"
	CodeSessionInvalid      = "SESSION_INVALID"
	CodeSessionUserUnsaved  = "SESSION_USER_NOT_PERSISTED"
	CodeInvalidCredentials  = "AUTH_INVALID_CREDENTIALS"
	CodeAttemptsExceeded    = "AUTH_ATTEMPTS_EXCEEDED"
	CodeLoginDisabled       = "AUTH_LOGIN_DISABLED"
	CodePasswordExpired     = "AUTH_PASSWORD_EXPIRED"
	CodeLoginFailed         = "AUTH_LOGIN_FAILED"
	CodeSessionCreateFailed = "SESSION_CREATE_FAILED"
)

// credentialsMessage is shared by unknown-user and bad-password failures so
// the two cannot be told apart by message.
const credentialsMessage = "invalid email or password"
