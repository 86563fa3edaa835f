// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Username validation constraints.
const (
	MinUsernameLength = 4
	MaxUsernameLength = 16
)

// MaxEmailLength bounds accepted email addresses.
const MaxEmailLength = 255

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var validate = validator.New()

// VerifyUsernameInput reports whether name is 4 to 16 characters of letters,
// digits and underscores.
func VerifyUsernameInput(name string) bool {
	n := utf8.RuneCountInString(name)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return false
	}
	return usernameRegex.MatchString(name)
}

// VerifyEmailInput reports whether email is a well-formed address.
func VerifyEmailInput(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > MaxEmailLength {
		return false
	}
	return validate.Var(email, "email") == nil
}

var (
	gmailDomains   = map[string]bool{"gmail.com": true, "googlemail.com": true}
	outlookDomains = map[string]bool{"outlook.com": true, "hotmail.com": true, "live.com": true}
	icloudDomains  = map[string]bool{"icloud.com": true, "me.com": true}
	yahooDomains   = map[string]bool{"yahoo.com": true, "ymail.com": true, "rocketmail.com": true}
)

// NormalizeEmail canonicalizes an address so that aliases of one mailbox
// compare equal. It lowercases the whole address, removes subaddresses for
// the major providers, drops dots in gmail local parts and maps
// googlemail.com to gmail.com.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return email
	}
	local, domain := email[:at], email[at+1:]

	switch {
	case gmailDomains[domain]:
		local = cutSubaddress(local, "+")
		local = strings.ReplaceAll(local, ".", "")
		domain = "gmail.com"
	case outlookDomains[domain], icloudDomains[domain]:
		local = cutSubaddress(local, "+")
	case yahooDomains[domain]:
		local = cutSubaddress(local, "-")
	}

	if local == "" {
		return ""
	}
	return local + "@" + domain
}

func cutSubaddress(local, sep string) string {
	before, _, _ := strings.Cut(local, sep)
	return before
}
