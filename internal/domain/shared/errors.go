package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrAllocationConflict  = NewDomainError("ALLOCATION_CONFLICT", "Sequence allocation conflicted with a concurrent request")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by a concurrent request, reload and retry")
	ErrSequenceOverflow    = NewDomainError("SEQUENCE_OVERFLOW", "Sequence limit reached for scope, contact support")
	ErrDocumentPersist     = NewDomainError("DOCUMENT_PERSIST_FAILED", "Document could not be stored")
)
