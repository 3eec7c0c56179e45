package domain

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict signals a failed conditional write on the store.
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	// ErrTokenInvalid covers malformed tokens, bad signatures and unexpected algorithms.
	ErrTokenInvalid = errors.New("session token invalid")
	// ErrTokenExpired is returned for a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("session token expired")
)

// RuleError is a business-rule violation that is reported back to the
// caller as data instead of failing the request.
type RuleError struct {
	Code    string
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

var (
	ErrDuplicateEmail = &RuleError{Code: "DUPLICATE_EMAIL", Message: "Failed to create user. Please try again."}
	// ErrInvalidCredentials hides whether email or password failed.
	ErrInvalidCredentials      = &RuleError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password. Please try again."}
	ErrInvalidInvitation       = &RuleError{Code: "INVALID_INVITATION", Message: "Invalid or expired invitation."}
	ErrNotInTeam               = &RuleError{Code: "NOT_IN_TEAM", Message: "User is not part of a team"}
	ErrAlreadyMember           = &RuleError{Code: "ALREADY_MEMBER", Message: "User is already a member of this team"}
	ErrAlreadyInvited          = &RuleError{Code: "ALREADY_INVITED", Message: "An invitation has already been sent to this email"}
	ErrIncorrectPassword       = &RuleError{Code: "INCORRECT_PASSWORD", Message: "Current password is incorrect."}
	ErrPasswordUnchanged       = &RuleError{Code: "PASSWORD_UNCHANGED", Message: "New password must be different from the current password."}
	ErrPasswordMismatch        = &RuleError{Code: "PASSWORD_MISMATCH", Message: "New password and confirmation password do not match."}
	ErrAccountDeletionPassword = &RuleError{Code: "INCORRECT_PASSWORD", Message: "Incorrect password. Account deletion failed."}
	ErrEmailTaken              = &RuleError{Code: "EMAIL_TAKEN", Message: "Email is already in use."}
	ErrKeyNotFound             = &RuleError{Code: "KEY_NOT_FOUND", Message: "Key not found."}
	ErrInvalidSSHKey           = &RuleError{Code: "INVALID_SSH_KEY", Message: "Invalid SSH public key."}
	ErrCheckoutUnavailable     = &RuleError{Code: "CHECKOUT_UNAVAILABLE", Message: "Checkout is not available for this team."}
)

// AsRuleError reports whether err carries a business-rule violation.
func AsRuleError(err error) (*RuleError, bool) {
	var rule *RuleError
	if errors.As(err, &rule) {
		return rule, true
	}
	return nil, false
}
