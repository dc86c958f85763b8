package service

import (
	"errors"
	"net/mail"
	"unicode/utf8"

	"github.com/tasktrack/tasktrack-go/internal/model"
)

const (
	minPasswordLength    = 6
	minNameLength        = 2
	maxTitleLength       = 100
	maxDescriptionLength = 500
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrPasswordRequired   = errors.New("password is required")
	ErrNameTooShort       = errors.New("name must be at least 2 characters")
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title must be at most 100 characters")
	ErrDescriptionTooLong = errors.New("description must be at most 500 characters")
	ErrInvalidStatus      = errors.New("status must be pending or completed")
)

// IsValidationError reports whether err is a request validation failure.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidEmail, ErrPasswordTooShort, ErrPasswordRequired, ErrNameTooShort,
		ErrTitleRequired, ErrTitleTooLong, ErrDescriptionTooLong, ErrInvalidStatus,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

func validateSignup(req model.SignupRequest) error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if utf8.RuneCountInString(req.Name) < minNameLength {
		return ErrNameTooShort
	}
	return nil
}

func validateLogin(req model.LoginRequest) error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if req.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n == 0 {
		return ErrTitleRequired
	}
	if n > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func validateUpdate(req model.UpdateTaskRequest) error {
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return err
		}
	}
	if req.Description != nil {
		if err := validateDescription(*req.Description); err != nil {
			return err
		}
	}
	if req.Status != nil && !req.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
