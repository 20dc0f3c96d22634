package services

import (
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

const (
	minPasswordLen = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLen = 72
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return common.WithMessage(common.ErrorValidation, "Name is required")
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return common.WithMessage(common.ErrorValidation, "Email is invalid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return common.WithMessage(common.ErrorValidation, "Password must be at least 8 characters")
	}
	if len(password) > maxPasswordLen {
		return common.WithMessage(common.ErrorValidation, "Password must be at most 72 bytes")
	}
	return nil
}

func validateRegistration(name, email, password string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	return validatePassword(password)
}

func validateLogin(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return common.WithMessage(common.ErrorValidation, "Password is required")
	}
	return nil
}
