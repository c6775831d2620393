// Package mutation implements the form-driven create/update/delete protocol
// shared by every editable entity.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/validation"
	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
)

// Store is the write side of an entity gateway.
type Store[T any, K comparable, P any] interface {
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, key K, patch P) (T, error)
	Delete(ctx context.Context, key K) (T, error)
}

// Codec turns raw forms into an entity's key, record and patch.
type Codec[T any, K comparable, P any] interface {
	// Entity is the lowercase name used in metrics and logs.
	Entity() string
	// Label is the display name used in messages, e.g. "Driver".
	Label() string
	// ParseKey reads the key of the row to update or delete.
	ParseKey(form url.Values) (K, validation.Errors)
	// Record validates a full form and builds a new row.
	Record(form url.Values, v *validation.Validator) (T, validation.Errors, error)
	// Patch validates the fields present in form and builds a patch.
	Patch(form url.Values, v *validation.Validator) (P, validation.Errors, error)
}

// Handler runs the mutation protocol for one entity.
type Handler[T any, K comparable, P any] struct {
	store     Store[T, K, P]
	codec     Codec[T, K, P]
	validator *validation.Validator
	logger    logger.Logger
}

// NewHandler creates a Handler over store using codec.
func NewHandler[T any, K comparable, P any](store Store[T, K, P], codec Codec[T, K, P], opts ...Option) *Handler[T, K, P] {
	o := options{validator: validation.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("mutation")
	}
	return &Handler[T, K, P]{
		store:     store,
		codec:     codec,
		validator: o.validator,
		logger:    o.logger,
	}
}

// Entity returns the codec's entity name.
func (h *Handler[T, K, P]) Entity() string {
	return h.codec.Entity()
}

// Handle dispatches form on its intent. Validation failures, missing rows
// and unknown intents are reported in the Response; only storage failures
// are returned as errors.
func (h *Handler[T, K, P]) Handle(ctx context.Context, form url.Values) (Response, error) {
	entity := h.codec.Entity()
	intent, err := ParseIntent(form.Get(IntentField))
	if err != nil {
		metrics.RecordMutation(entity, "unknown", BadRequest.String())
		return failed(BadRequest, "Invalid action"), nil
	}

	var resp Response
	switch intent {
	case IntentCreate:
		resp, err = h.create(ctx, form)
	case IntentUpdate:
		resp, err = h.update(ctx, form)
	case IntentDelete:
		resp, err = h.delete(ctx, form)
	}
	if err != nil {
		metrics.RecordMutation(entity, string(intent), "error")
		h.logger.Error(ctx, "mutation failed",
			logger.String("entity", entity),
			logger.String("intent", string(intent)),
			logger.Error(err))
		return Response{}, fmt.Errorf("%s %s: %w", intent, entity, err)
	}

	metrics.RecordMutation(entity, string(intent), resp.Outcome.String())
	for field := range resp.Envelope.Errors {
		metrics.RecordValidationFailure(entity, field)
	}
	h.logger.Info(ctx, "mutation handled",
		logger.String("entity", entity),
		logger.String("intent", string(intent)),
		logger.String("outcome", resp.Outcome.String()))
	return resp, nil
}

func (h *Handler[T, K, P]) create(ctx context.Context, form url.Values) (Response, error) {
	rec, errs, err := h.codec.Record(form, h.validator)
	if err != nil {
		return Response{}, err
	}
	if !errs.Empty() {
		return invalid(errs), nil
	}
	if _, err := h.store.Create(ctx, rec); err != nil {
		return h.storeFailure(err)
	}
	return ok(h.success(IntentCreate)), nil
}

func (h *Handler[T, K, P]) update(ctx context.Context, form url.Values) (Response, error) {
	key, keyErrs := h.codec.ParseKey(form)
	patch, errs, err := h.codec.Patch(form, h.validator)
	if err != nil {
		return Response{}, err
	}
	if errs == nil {
		errs = validation.Errors{}
	}
	for f, msgs := range keyErrs {
		for _, m := range msgs {
			errs.Add(f, m)
		}
	}
	if !errs.Empty() {
		return invalid(errs), nil
	}
	if _, err := h.store.Update(ctx, key, patch); err != nil {
		return h.storeFailure(err)
	}
	return ok(h.success(IntentUpdate)), nil
}

func (h *Handler[T, K, P]) delete(ctx context.Context, form url.Values) (Response, error) {
	key, errs := h.codec.ParseKey(form)
	if !errs.Empty() {
		return invalid(errs), nil
	}
	if _, err := h.store.Delete(ctx, key); err != nil {
		return h.storeFailure(err)
	}
	return ok(h.success(IntentDelete)), nil
}

// storeFailure turns known gateway kinds into responses and passes storage
// errors through.
func (h *Handler[T, K, P]) storeFailure(err error) (Response, error) {
	label := h.codec.Label()
	switch {
	case errors.Is(err, model.ErrNotFound):
		return failed(NotFound, label+" not found"), nil
	case errors.Is(err, model.ErrDuplicateKey):
		return failed(Conflict, label+" already exists"), nil
	case errors.Is(err, model.ErrInvalidReference):
		return failed(Invalid, label+" references an unknown record"), nil
	default:
		return Response{}, err
	}
}

func (h *Handler[T, K, P]) success(intent Intent) string {
	return fmt.Sprintf("%s %s successfully", h.codec.Label(), intent.pastTense())
}
