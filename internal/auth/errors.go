// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when an email is already registered.
var ErrEmailTaken = errors.New("email already registered")
