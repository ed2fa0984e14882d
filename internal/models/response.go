package models

// APIResponse is the envelope for every HTTP response body.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func NewSuccessResponse(data any) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

func NewErrorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   message,
	}
}

func NewValidationErrorResponse(errors map[string]string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   "Validation failed",
		Errors:  errors,
	}
}

// ItemsResponse is a filtered view of the cache.
type ItemsResponse struct {
	Items    []Item `json:"items"`
	Lost     int    `json:"lost"`
	Found    int    `json:"found"`
	Degraded bool   `json:"degraded"`
}

type CreateItemResponse struct {
	ID string `json:"id"`
}

// VerifyResponse reports the new verification state. AdvisoryError is set when
// the safeguards call failed; verification still took effect.
type VerifyResponse struct {
	Identity
	Safeguards    *VerificationSafeguards `json:"safeguards,omitempty"`
	AdvisoryError string                  `json:"advisoryError,omitempty"`
}

type ImageUploadResponse struct {
	URL string `json:"url"`
}

// ResolveItemResponse echoes the requested resolved state. The cache shows it
// once the store reflects the write back.
type ResolveItemResponse struct {
	ID       string `json:"id"`
	Resolved bool   `json:"resolved"`
}

type MetadataResponse struct {
	Institutions []InstitutionInfo `json:"institutions,omitempty"`
	Categories   []string          `json:"categories,omitempty"`
}
