// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

//go:build integration

package postgres_test

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/authcore/authcore/internal/auth"
	"github.com/authcore/authcore/internal/auth/postgres"
)

var _ = Describe("auth repositories", func() {
	var (
		ctx   context.Context
		repos *postgres.Repositories
		user  *auth.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		repos = postgres.NewRepositories(testPool)

		var err error
		user, err = auth.NewUser(ulid.Make().String()+"@example.com", "Ada", "Lovelace", "$argon2id$hash")
		Expect(err).NotTo(HaveOccurred())
		user.CreatedAt = user.CreatedAt.Truncate(time.Microsecond)
		Expect(repos.Users.Create(ctx, user)).To(Succeed())

		DeferCleanup(func() {
			_, _ = testPool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID.String())
		})
	})

	Describe("users", func() {
		It("round trips a user by email and id", func() {
			byEmail, err := repos.Users.GetByEmail(ctx, user.Email)
			Expect(err).NotTo(HaveOccurred())
			Expect(byEmail.ID).To(Equal(user.ID))
			Expect(byEmail.EmailVerified).To(BeFalse())

			byID, err := repos.Users.GetByID(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(byID.Email).To(Equal(user.Email))
			Expect(byID.CreatedAt.Equal(user.CreatedAt)).To(BeTrue())
		})

		It("rejects a duplicate email", func() {
			dup, err := auth.NewUser(user.Email, "Eve", "Other", "$argon2id$hash")
			Expect(err).NotTo(HaveOccurred())
			Expect(repos.Users.Create(ctx, dup)).To(MatchError(auth.ErrEmailTaken))
		})

		It("updates password and verification flag", func() {
			Expect(repos.Users.UpdatePassword(ctx, user.ID, "$argon2id$new")).To(Succeed())
			Expect(repos.Users.SetEmailVerified(ctx, user.ID)).To(Succeed())

			got, err := repos.Users.GetByID(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.PasswordHash).To(Equal("$argon2id$new"))
			Expect(got.EmailVerified).To(BeTrue())
		})

		It("reports a missing user", func() {
			_, err := repos.Users.GetByID(ctx, ulid.Make())
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})

	Describe("sessions", func() {
		var manager *auth.SessionManager
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		BeforeEach(func() {
			var err error
			manager, err = auth.NewSessionManager(repos.Sessions, auth.WithClock(func() time.Time { return now }))
			Expect(err).NotTo(HaveOccurred())
		})

		It("creates, validates and invalidates a session", func() {
			token, err := auth.GenerateSessionToken()
			Expect(err).NotTo(HaveOccurred())

			created := manager.CreateSession(ctx, token, user.ID, auth.SessionFlags{})
			Expect(created.Error()).NotTo(HaveOccurred())

			v := manager.ValidateSessionToken(ctx, token).Unwrap()
			Expect(v.Authenticated()).To(BeTrue())
			Expect(v.User.Email).To(Equal(user.Email))

			Expect(manager.InvalidateSession(ctx, created.Unwrap().ID).Error()).NotTo(HaveOccurred())
			Expect(manager.ValidateSessionToken(ctx, token).Unwrap().Authenticated()).To(BeFalse())
			Expect(manager.InvalidateSession(ctx, created.Unwrap().ID).Error()).NotTo(HaveOccurred())
		})

		It("renews only the validated session", func() {
			a, err := auth.NewSession("token-a", user.ID, auth.SessionFlags{}, now.Add(24*time.Hour))
			Expect(err).NotTo(HaveOccurred())
			b, err := auth.NewSession("token-b", user.ID, auth.SessionFlags{}, now.Add(24*time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(repos.Sessions.Create(ctx, a)).To(Succeed())
			Expect(repos.Sessions.Create(ctx, b)).To(Succeed())

			v := manager.ValidateSessionToken(ctx, "token-a").Unwrap()
			Expect(v.Session.ExpiresAt).To(BeTemporally("~", now.Add(manager.Lifetime()), time.Millisecond))

			stored, _, err := repos.Sessions.GetWithUser(ctx, b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ExpiresAt).To(BeTemporally("~", now.Add(24*time.Hour), time.Millisecond))
		})

		It("deletes an expired session on validation", func() {
			s, err := auth.NewSession("token-old", user.ID, auth.SessionFlags{}, now.Add(-time.Minute))
			Expect(err).NotTo(HaveOccurred())
			Expect(repos.Sessions.Create(ctx, s)).To(Succeed())

			Expect(manager.ValidateSessionToken(ctx, "token-old").Unwrap().Authenticated()).To(BeFalse())
			_, _, err = repos.Sessions.GetWithUser(ctx, s.ID)
			Expect(err).To(MatchError(auth.ErrNotFound))
		})

		It("prunes expired sessions", func() {
			s, err := auth.NewSession("token-prune", user.ID, auth.SessionFlags{}, now.Add(-time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(repos.Sessions.Create(ctx, s)).To(Succeed())

			Expect(manager.PruneExpired(ctx).Unwrap()).To(BeNumerically(">=", 1))
		})

		It("marks a session two factor verified", func() {
			s, err := auth.NewSession("token-2fa", user.ID, auth.SessionFlags{}, now.Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(repos.Sessions.Create(ctx, s)).To(Succeed())

			Expect(manager.SetSessionAs2FAVerified(ctx, s.ID).Error()).NotTo(HaveOccurred())
			got, _, err := repos.Sessions.GetWithUser(ctx, s.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.TwoFactorVerified).To(BeTrue())
		})
	})

	Describe("recovery codes", func() {
		It("consumes each code once", func() {
			svc, err := auth.NewRecoveryService(repos.Recovery, nil)
			Expect(err).NotTo(HaveOccurred())

			codes := svc.Generate(ctx, user.ID, 2).Unwrap()
			Expect(svc.Redeem(ctx, user.ID, codes[0]).Unwrap()).To(BeTrue())
			Expect(svc.Redeem(ctx, user.ID, codes[0]).Unwrap()).To(BeFalse())

			// Regenerating invalidates the remaining code.
			svc.Generate(ctx, user.ID, 1).Unwrap()
			Expect(svc.Redeem(ctx, user.ID, codes[1]).Unwrap()).To(BeFalse())
		})
	})

	Describe("password resets", func() {
		It("stores and flags a reset session", func() {
			reset, err := auth.NewPasswordResetSession("reset-token", user, time.Now().Add(auth.ResetSessionLifetime))
			Expect(err).NotTo(HaveOccurred())
			Expect(repos.Resets.Create(ctx, reset)).To(Succeed())

			Expect(repos.Resets.SetEmailVerified(ctx, reset.ID)).To(Succeed())
			got, err := repos.Resets.Get(ctx, reset.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.EmailVerified).To(BeTrue())
			Expect(got.Code).To(Equal(reset.Code))

			Expect(repos.Resets.DeleteByUser(ctx, user.ID)).To(Succeed())
			_, err = repos.Resets.Get(ctx, reset.ID)
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})
})
