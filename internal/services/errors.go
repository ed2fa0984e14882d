package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrItemNotFound         = errors.New("item not found")
	ErrCacheClosed          = errors.New("item cache closed")
	ErrAlreadySubscribed    = errors.New("item cache already subscribed")
	ErrInstitutionRequired  = errors.New("institution is required when verified")
	ErrUnknownInstitution   = errors.New("unknown institution")
	ErrAdvisorNotConfigured = errors.New("advisor not configured")
)

// ValidationError reports malformed input rejected before any remote call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
