// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package auth

// Outcome labels reported to a Recorder.
const (
	OutcomeAnonymous = "anonymous"
	OutcomeExpired   = "expired"
	OutcomeRenewed   = "renewed"
	OutcomeActive    = "active"
	OutcomeError     = "error"

	OutcomeBreached    = "breached"
	OutcomeClean       = "clean"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder receives counters for auth events.
type Recorder interface {
	SessionValidation(outcome string)
	BreachCheck(outcome string)
	LoginAttempt(outcome string)
}

// NopRecorder discards all events.
type NopRecorder struct{}

// SessionValidation implements Recorder.
func (NopRecorder) SessionValidation(string) {}

// BreachCheck implements Recorder.
func (NopRecorder) BreachCheck(string) {}

// LoginAttempt implements Recorder.
func (NopRecorder) LoginAttempt(string) {}
