// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}

// DocumentError is returned when an uploaded document cannot be parsed.
// Resultado carries the parser output so the client can show every message.
type DocumentError struct {
	Detail    string      `json:"detail"`
	Resultado interface{} `json:"resultado,omitempty"`
}

func NewDocument(msg string, resultado interface{}) *DocumentError {
	return &DocumentError{Detail: msg, Resultado: resultado}
}

// ConflictError points at the resource that already owns the identifier.
type ConflictError struct {
	Detail     string `json:"detail"`
	ResourceID string `json:"resource_id"`
	Status     string `json:"status,omitempty"`
}

// InternalError hides the cause of a 500 and hands the client the request id
// to quote when reporting it.
type InternalError struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func NewInternal(requestID string) *InternalError {
	return &InternalError{Detail: "Erro interno do servidor", RequestID: requestID}
}
