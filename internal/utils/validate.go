package utils

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes
	MaxPasswordLength = 72
	MaxNameLength     = 50
)

func ValidateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "email is required"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return "email must be a valid email address"
	}
	return ""
}

func ValidateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "name is required"
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "name must be at most 50 characters"
	}
	return ""
}

func ValidatePassword(field, password string) string {
	if password == "" {
		return field + " is required"
	}
	if len(password) < MinPasswordLength {
		return field + " must be at least 6 characters"
	}
	if len(password) > MaxPasswordLength {
		return field + " must be at most 72 bytes"
	}
	return ""
}

// Collect drops empty messages.
func Collect(messages ...string) []string {
	var out []string
	for _, m := range messages {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
