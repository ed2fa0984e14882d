package models

import (
	"strings"
	"unicode/utf8"
)

// ListingOptimization holds free-text suggestions for improving a description.
type ListingOptimization struct {
	Suggestions string `json:"suggestions"`
}

// VerificationSafeguards holds advisory security guidance for a verification
// attempt. It never influences the verification outcome.
type VerificationSafeguards struct {
	Safeguards string `json:"safeguards"`
	Warnings   string `json:"warnings"`
}

type OptimizeRequest struct {
	Description string `json:"description"`
}

func (r *OptimizeRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if utf8.RuneCountInString(strings.TrimSpace(r.Description)) < minDescriptionLength {
		errors["description"] = "Please provide a longer description to optimize."
	}
	return errors
}
