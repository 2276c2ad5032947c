package validator

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// ValidEmail checks basic address shape. Client contacts can use any
// provider, so there is no corporate-domain restriction here.
func ValidEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("invalid email format")
	}
	if addr.Address != email {
		return errors.New("invalid email format")
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[1] == "" {
		return errors.New("invalid email format")
	}
	return nil
}

func Required(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " is required")
	}
	return nil
}

func MinLength(value string, min int, field string) error {
	if len(value) < min {
		return fmt.Errorf("%s must be at least %d characters", field, min)
	}
	return nil
}
