// Package validation checks raw form input against per-entity rule sets and
// reports every failing field at once.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/okian/paddock/internal/domain/model"
)

// fieldTag carries the wire name of an input field.
const fieldTag = "form"

// Input is a raw, string-typed form payload with its own rule messages.
type Input interface {
	// Messages maps "field.rule" to the message reported when rule fails on field.
	Messages() map[string]string
}

// Validator applies struct-tag rules to Inputs.
type Validator struct {
	validate *validator.Validate
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Default returns a process-wide Validator.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// New builds a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get(fieldTag), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("positive_int", positiveInt)
	_ = v.RegisterValidation("calendar_date", calendarDate)
	return &Validator{validate: v}
}

func positiveInt(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
	return err == nil && n >= 1
}

// calendarDate accepts YYYY-MM-DD dates that model.ParseDate can represent.
func calendarDate(fl validator.FieldLevel) bool {
	_, err := model.ParseDate(fl.Field().String())
	return err == nil
}

// trimSpaceHook strips surrounding whitespace from every string before it is
// stored, so rules see the value that will be persisted.
func trimSpaceHook(from, to reflect.Kind, data interface{}) (interface{}, error) {
	if from != reflect.String || to != reflect.String {
		return data, nil
	}
	return strings.TrimSpace(data.(string)), nil
}

// Bind copies form values into dst by their wire names and returns the names
// that were present in the form. String values are trimmed.
func Bind(form url.Values, dst Input) ([]string, error) {
	raw := make(map[string]any, len(form))
	for k, vs := range form {
		if len(vs) > 0 {
			raw[k] = vs[0]
		}
	}
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          fieldTag,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncKind(trimSpaceHook),
		Metadata:         &md,
		Result:           dst,
	})
	if err != nil {
		return nil, fmt.Errorf("build form decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	return md.Keys, nil
}

// Validate checks every rule of in.
func (v *Validator) Validate(in Input) Errors {
	return v.collect(in, v.validate.Struct(in))
}

// ValidateFields checks only the rules of the named wire fields. Unknown
// names are ignored.
func (v *Validator) ValidateFields(in Input, fields []string) Errors {
	names := goFieldNames(in, fields)
	if len(names) == 0 {
		return Errors{}
	}
	return v.collect(in, v.validate.StructPartial(in, names...))
}

func (v *Validator) collect(in Input, err error) Errors {
	out := Errors{}
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add("_", err.Error())
		return out
	}
	msgs := in.Messages()
	for _, fe := range verrs {
		field := fe.Field()
		msg, ok := msgs[field+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", field)
		}
		out.Add(field, msg)
	}
	return out
}

// goFieldNames maps wire names to the Go field names StructPartial expects.
func goFieldNames(in Input, wire []string) []string {
	t := reflect.TypeOf(in)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	want := make(map[string]bool, len(wire))
	for _, w := range wire {
		want[strings.ToLower(w)] = true
	}
	var out []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get(fieldTag), ",")
		if want[strings.ToLower(name)] {
			out = append(out, f.Name)
		}
	}
	return out
}
