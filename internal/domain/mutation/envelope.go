package mutation

import (
	"github.com/okian/paddock/internal/domain/validation"
)

// Outcome classifies a mutation response so transports can pick a status.
type Outcome int

const (
	// OK means the write was applied.
	OK Outcome = iota
	// Invalid means field validation or key parsing failed.
	Invalid
	// NotFound means the target row does not exist.
	NotFound
	// Conflict means the write broke a uniqueness rule.
	Conflict
	// BadRequest means the intent was missing or unknown.
	BadRequest
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Invalid:
		return "invalid"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case BadRequest:
		return "bad_request"
	default:
		return "unknown"
	}
}

// Envelope is the uniform mutation result returned to clients.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Errors  validation.Errors `json:"errors,omitempty"`
}

// Response pairs an Envelope with its Outcome.
type Response struct {
	Outcome  Outcome
	Envelope Envelope
}

func ok(msg string) Response {
	return Response{Outcome: OK, Envelope: Envelope{Success: true, Message: msg}}
}

func failed(o Outcome, msg string) Response {
	return Response{Outcome: o, Envelope: Envelope{Message: msg}}
}

func invalid(errs validation.Errors) Response {
	return Response{Outcome: Invalid, Envelope: Envelope{Errors: errs}}
}
