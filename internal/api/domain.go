package api

import "errors"

// Sentinel errors shared across feature packages. Handlers map these to
// HTTP status codes; repositories wrap them with context via fmt.Errorf.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrValidation      = errors.New("invalid input")
)

// Response is a generic API response for simple success/error messages.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
