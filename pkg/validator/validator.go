package validator

import (
	"net/mail"
	"regexp"
	"strings"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

const (
	// MaxEmailLength matches the users.email column.
	MaxEmailLength    = 255
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	MaxPasswordLength = 72
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

func ValidateRegister(email, username, password string) ValidationErrors {
	errs := make(ValidationErrors)
	validateEmail(email, errs)
	validateUsername(username, errs)
	validatePassword(password, errs)
	return errs
}

// ValidateLogin only checks presence; identifier may be an email or a username.
func ValidateLogin(identifier, password string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(identifier) == "" {
		errs.Add("username", "Username is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ValidateUpdate checks the fields present in a partial update.
func ValidateUpdate(email, username, password *string) ValidationErrors {
	errs := make(ValidationErrors)

	if email != nil {
		validateEmail(*email, errs)
	}
	if username != nil {
		validateUsername(*username, errs)
	}
	if password != nil && *password != "" {
		validatePassword(*password, errs)
	}

	return errs
}

// Normalize trims surrounding whitespace. Handlers apply it to email and
// username before validating, so the stored value is the validated one.
func Normalize(s string) string {
	return strings.TrimSpace(s)
}

// NormalizePtr is Normalize for optional fields; nil stays nil.
func NormalizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := Normalize(*s)
	return &v
}

func validateEmail(email string, errs ValidationErrors) {
	if email == "" {
		errs.Add("email", "Email is required")
	} else if len(email) > MaxEmailLength {
		errs.Add("email", "Email is too long")
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		errs.Add("email", "Invalid email address")
	}
}

func validateUsername(username string, errs ValidationErrors) {
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) < 3 {
		errs.Add("username", "Username must be at least 3 characters")
	} else if len(username) > 50 {
		errs.Add("username", "Username is too long")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers, _, . and -")
	}
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < MinPasswordLength {
		errs.Add("password", "Password must be at least 8 characters")
	} else if len(password) > MaxPasswordLength {
		errs.Add("password", "Password must be at most 72 bytes")
	}
}
