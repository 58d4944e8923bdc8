// Package apperr defines the stable, surface-facing error taxonomy shared by
// every HTTP handler, worker stage, and WebSocket gateway in this service.
package apperr

import "fmt"

// Kind is a stable identifier surfaced to API clients. Never renumber or
// rename an existing Kind: clients match on the string value.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindNotFound           Kind = "not_found"
	KindDuplicateName      Kind = "duplicate_name"
	KindFieldInUse         Kind = "field_in_use"
	KindSchemaInvariant    Kind = "schema_invariant_violated"
	KindCategoryInvariant  Kind = "category_invariant_violated"
	KindIngestRejected     Kind = "ingest_rejected"
	KindEnrichmentFailed   Kind = "enrichment_failed"
	KindAuthFailed         Kind = "auth_failed"
	KindAuthTimeout        Kind = "auth_timeout"
	KindBackpressureDrop   Kind = "backpressure_drop"
	KindInternal           Kind = "internal_error"
)

// Error is the concrete error type every package in this service returns for
// caller-visible failures. Details carries structured context (e.g. the
// referents that blocked a delete, or the specific schema rule violated);
// it is optional and handler-shaped, not meant for logging alone.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an *Error with no details.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithDetails builds an *Error carrying structured context for the response body.
func WithDetails(kind Kind, message string, details map[string]interface{}) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

// Validation is a convenience constructor for the most common kind.
func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

// NotFound is a convenience constructor for missing-entity lookups.
func NotFound(entity, id string) *Error {
	return New(KindNotFound, fmt.Sprintf("%s %s not found", entity, id))
}

// HTTPStatus maps a Kind to the status code this service commits to in §6/§7.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindSchemaInvariant, KindCategoryInvariant:
		return 422
	case KindNotFound:
		return 404
	case KindDuplicateName, KindFieldInUse:
		return 409
	case KindIngestRejected:
		return 400
	case KindEnrichmentFailed:
		return 500
	case KindAuthFailed, KindAuthTimeout, KindBackpressureDrop:
		return 0 // WebSocket-only kinds; not surfaced over HTTP.
	default:
		return 500
	}
}

// As extracts an *Error from err, following the same pattern as the teacher's
// db error helpers (IsNotFound, IsDuplicateKey, ...).
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}

// Is reports whether err is an *apperr.Error of the given Kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
