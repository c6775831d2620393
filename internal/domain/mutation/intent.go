package mutation

import (
	"errors"
	"fmt"
	"strings"
)

// IntentField is the form field that selects the mutation.
const IntentField = "intent"

// Intent is the requested mutation.
type Intent string

// Supported intents.
const (
	IntentCreate Intent = "create"
	IntentUpdate Intent = "update"
	IntentDelete Intent = "delete"
)

// ErrInvalidIntent is returned for a missing or unknown intent.
var ErrInvalidIntent = errors.New("invalid intent")

// ParseIntent maps the raw form value to an Intent.
func ParseIntent(raw string) (Intent, error) {
	switch in := Intent(strings.TrimSpace(raw)); in {
	case IntentCreate, IntentUpdate, IntentDelete:
		return in, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidIntent, raw)
	}
}

// pastTense is the verb used in success messages.
func (i Intent) pastTense() string {
	switch i {
	case IntentCreate:
		return "created"
	case IntentUpdate:
		return "updated"
	case IntentDelete:
		return "deleted"
	default:
		return string(i)
	}
}
