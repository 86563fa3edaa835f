// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

// Package auth provides the authentication core for AuthCore.
//
// # Domain Types
//
// Domain types (User, Session, PasswordResetSession) should be created
// using their respective constructors:
//   - NewUser - creates a User with a normalized email and display name
//   - NewSession - creates a Session whose ID is the hash of its token
//   - NewPasswordResetSession - creates a reset session with a fresh code
//
// The raw session token never leaves the caller. Only HashSessionToken(token)
// reaches a repository.
//
// # Services
//
// Service types coordinate domain operations and return result.Result values:
//   - SessionManager - token generation, validation with sliding renewal, invalidation
//   - UserService - registration, lookup, password updates
//   - Authenticator - login and logout
//   - ResetService - password reset flow
//   - RecoveryService - single-use recovery codes
//   - StrengthChecker - k-anonymity breach check for new passwords
//
// Services are created with New* constructors that validate dependencies.
package auth
