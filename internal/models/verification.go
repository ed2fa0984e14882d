package models

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Verification is the self-asserted affiliation of the local user.
// Institution is empty unless Verified is true.
type Verification struct {
	Verified    bool        `json:"isVerified"`
	Institution Institution `json:"verifiedInstitution,omitempty"`
}

type VerifyRequest struct {
	Institution Institution `json:"institution"`
	Email       string      `json:"email"`
	Location    string      `json:"location"`
}

func (r *VerifyRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if !r.Institution.Valid() {
		errors["institution"] = "Please select an institution."
	}

	email := strings.TrimSpace(r.Email)
	if email == "" {
		errors["email"] = "Please enter a valid email address."
	} else if _, err := mail.ParseAddress(email); err != nil {
		errors["email"] = "Please enter a valid email address."
	}

	if utf8.RuneCountInString(strings.TrimSpace(r.Location)) < 2 {
		errors["location"] = "Location must be at least 2 characters."
	}

	return errors
}

// Identity is what the board knows about the local user.
type Identity struct {
	UserID string `json:"userId"`
	Verification
}
