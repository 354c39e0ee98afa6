package service

import (
	"github.com/dukerupert/census/internal/validate"
)

// Kind tags the outcome of an operation.
type Kind int

const (
	OK Kind = iota
	Created
	ValidationFailed
	AuthenticationRequired
	Denied
	NotFound
	Conflict
	StorageFailed
	// PartiallyApplied means the first write of a composite operation
	// landed and a later one failed.
	PartiallyApplied
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "ok"
	case Created:
		return "created"
	case ValidationFailed:
		return "validation failed"
	case AuthenticationRequired:
		return "authentication required"
	case Denied:
		return "denied"
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	case StorageFailed:
		return "storage failed"
	case PartiallyApplied:
		return "partially applied"
	default:
		return "unknown"
	}
}

// Success reports whether the operation completed.
func (k Kind) Success() bool {
	return k == OK || k == Created
}

// Result is what every operation returns. Value is set on success and on
// PartiallyApplied; Fields on ValidationFailed; Detail carries the storage
// error text and is not meant for untrusted callers.
type Result[T any] struct {
	Kind    Kind
	Value   T
	Message string
	Fields  []validate.FieldError
	Detail  string
}

// Empty is the value of operations that return nothing but a success signal.
type Empty struct{}

type failure struct {
	kind    Kind
	message string
	fields  []validate.FieldError
	detail  string
}

func ok[T any](v T, msg string) Result[T] {
	return Result[T]{Kind: OK, Value: v, Message: msg}
}

func created[T any](v T, msg string) Result[T] {
	return Result[T]{Kind: Created, Value: v, Message: msg}
}

func partial[T any](v T, msg string, detail string) Result[T] {
	return Result[T]{Kind: PartiallyApplied, Value: v, Message: msg, Detail: detail}
}

func failed[T any](f *failure) Result[T] {
	return Result[T]{Kind: f.kind, Message: f.message, Fields: f.fields, Detail: f.detail}
}

// Invalid is the result for input rejected before it reached an operation,
// such as an undecodable request body.
func Invalid[T any](fields []validate.FieldError) Result[T] {
	return failed[T](invalid(fields))
}

func invalid(fields []validate.FieldError) *failure {
	return &failure{kind: ValidationFailed, message: "invalid fields", fields: fields}
}

func invalidField(field, reason string) *failure {
	return invalid([]validate.FieldError{{Field: field, Reason: reason}})
}

func notFound(msg string) *failure {
	return &failure{kind: NotFound, message: msg}
}

func denied(msg string) *failure {
	return &failure{kind: Denied, message: msg}
}

func conflict(msg string) *failure {
	return &failure{kind: Conflict, message: msg}
}

var errLoginRequired = &failure{kind: AuthenticationRequired, message: "authentication required, please log in"}
