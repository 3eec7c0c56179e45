package domain

import "fmt"

const (
	MinPasswordLength = 8
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

// ValidateNewPassword checks the length policy applied to passwords that
// are about to be hashed.
func ValidateNewPassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, MaxPasswordBytes)
	}
	return nil
}

// ValidatePasswordChange applies the change rules that run after the
// current password has been verified.
func ValidatePasswordChange(current, next, confirm string) error {
	if current == next {
		return ErrPasswordUnchanged
	}
	if next != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
