package mutation

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/validation"
)

// KeyField is the form field carrying the key of the row to update or delete.
const KeyField = "id"

func parseID(form url.Values) (int64, validation.Errors) {
	id, err := strconv.ParseInt(strings.TrimSpace(form.Get(KeyField)), 10, 64)
	if err != nil || id < 1 {
		return 0, validation.Errors{KeyField: {"ID must be a positive number"}}
	}
	return id, validation.Errors{}
}

// bind decodes form into in and validates it. With partial set, only the
// fields present in form are checked, minus the ones in skip.
func bind(form url.Values, in validation.Input, v *validation.Validator, partial bool, skip ...string) ([]string, validation.Errors, error) {
	if v == nil {
		v = validation.Default()
	}
	present, err := validation.Bind(form, in)
	if err != nil {
		return nil, nil, err
	}
	if !partial {
		return present, v.Validate(in), nil
	}
	present = without(present, skip...)
	return present, v.ValidateFields(in, present), nil
}

func without(fields []string, skip ...string) []string {
	out := fields[:0:0]
	for _, f := range fields {
		drop := false
		for _, s := range skip {
			if f == s {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, f)
		}
	}
	return out
}

func has(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

func mustDate(raw string) (model.Date, error) {
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, fmt.Errorf("coerce validated date: %w", err)
	}
	return d, nil
}

// optionalInt returns nil for blank input.
func optionalInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("coerce validated number: %w", err)
	}
	return &n, nil
}

// DriverCodec handles driver forms.
type DriverCodec struct{}

func (DriverCodec) Entity() string { return "driver" }
func (DriverCodec) Label() string  { return "Driver" }

func (DriverCodec) ParseKey(form url.Values) (int64, validation.Errors) {
	return parseID(form)
}

func (DriverCodec) Record(form url.Values, v *validation.Validator) (model.Driver, validation.Errors, error) {
	var in validation.DriverInput
	_, errs, err := bind(form, &in, v, false)
	if err != nil || !errs.Empty() {
		return model.Driver{}, errs, err
	}
	bd, err := mustDate(in.BirthDate)
	if err != nil {
		return model.Driver{}, nil, err
	}
	return model.Driver{
		Name:      in.Name,
		Sex:       model.Sex(in.Sex),
		BirthDate: bd,
		Country:   in.Country,
	}, errs, nil
}

func (DriverCodec) Patch(form url.Values, v *validation.Validator) (model.DriverPatch, validation.Errors, error) {
	var in validation.DriverInput
	present, errs, err := bind(form, &in, v, true)
	if err != nil || !errs.Empty() {
		return model.DriverPatch{}, errs, err
	}
	var p model.DriverPatch
	if has(present, "name") {
		p.Name = model.Set(in.Name)
	}
	if has(present, "sex") {
		p.Sex = model.Set(model.Sex(in.Sex))
	}
	if has(present, "birthDate") {
		bd, err := mustDate(in.BirthDate)
		if err != nil {
			return model.DriverPatch{}, nil, err
		}
		p.BirthDate = model.Set(bd)
	}
	if has(present, "country") {
		p.Country = model.Set(in.Country)
	}
	return p, errs, nil
}

// GPCodec handles GP forms. The key of an existing GP is its date, sent in
// the id field.
type GPCodec struct{}

func (GPCodec) Entity() string { return "gp" }
func (GPCodec) Label() string  { return "GP" }

func (GPCodec) ParseKey(form url.Values) (model.Date, validation.Errors) {
	d, err := model.ParseDate(strings.TrimSpace(form.Get(KeyField)))
	if err != nil {
		return model.Date{}, validation.Errors{KeyField: {"ID must be a valid date (YYYY-MM-DD)"}}
	}
	return d, validation.Errors{}
}

func (GPCodec) Record(form url.Values, v *validation.Validator) (model.GP, validation.Errors, error) {
	var in validation.GPInput
	_, errs, err := bind(form, &in, v, false)
	if err != nil || !errs.Empty() {
		return model.GP{}, errs, err
	}
	d, err := mustDate(in.Date)
	if err != nil {
		return model.GP{}, nil, err
	}
	return model.GP{
		Date:    d,
		Name:    in.Name,
		Country: in.Country,
	}, errs, nil
}

func (GPCodec) Patch(form url.Values, v *validation.Validator) (model.GPPatch, validation.Errors, error) {
	var in validation.GPInput
	present, errs, err := bind(form, &in, v, true, "date")
	if err != nil || !errs.Empty() {
		return model.GPPatch{}, errs, err
	}
	var p model.GPPatch
	if has(present, "name") {
		p.Name = model.Set(in.Name)
	}
	if has(present, "country") {
		p.Country = model.Set(in.Country)
	}
	return p, errs, nil
}

// ResultCodec handles result forms.
type ResultCodec struct{}

func (ResultCodec) Entity() string { return "result" }
func (ResultCodec) Label() string  { return "Result" }

func (ResultCodec) ParseKey(form url.Values) (int64, validation.Errors) {
	return parseID(form)
}

func (ResultCodec) Record(form url.Values, v *validation.Validator) (model.Result, validation.Errors, error) {
	var in validation.ResultInput
	_, errs, err := bind(form, &in, v, false)
	if err != nil || !errs.Empty() {
		return model.Result{}, errs, err
	}
	r, err := resultFromInput(in)
	return r, errs, err
}

func resultFromInput(in validation.ResultInput) (model.Result, error) {
	driverID, err := strconv.ParseInt(in.DriverID, 10, 64)
	if err != nil {
		return model.Result{}, fmt.Errorf("coerce validated number: %w", err)
	}
	d, err := mustDate(in.GPDate)
	if err != nil {
		return model.Result{}, err
	}
	pos, err := optionalInt(in.Position)
	if err != nil {
		return model.Result{}, err
	}
	return model.Result{
		DriverID: driverID,
		GPDate:   d,
		Position: pos,
		Team:     in.Team,
		Engine:   in.Engine,
		Type:     in.Type,
	}, nil
}

func (ResultCodec) Patch(form url.Values, v *validation.Validator) (model.ResultPatch, validation.Errors, error) {
	var in validation.ResultInput
	present, errs, err := bind(form, &in, v, true)
	if err != nil || !errs.Empty() {
		return model.ResultPatch{}, errs, err
	}
	var p model.ResultPatch
	if has(present, "driverId") {
		id, err := strconv.ParseInt(in.DriverID, 10, 64)
		if err != nil {
			return model.ResultPatch{}, nil, fmt.Errorf("coerce validated number: %w", err)
		}
		p.DriverID = model.Set(id)
	}
	if has(present, "gpDate") {
		d, err := mustDate(in.GPDate)
		if err != nil {
			return model.ResultPatch{}, nil, err
		}
		p.GPDate = model.Set(d)
	}
	if has(present, "position") {
		pos, err := optionalInt(in.Position)
		if err != nil {
			return model.ResultPatch{}, nil, err
		}
		p.Position = model.Set(pos)
	}
	if has(present, "team") {
		p.Team = model.Set(in.Team)
	}
	if has(present, "engine") {
		p.Engine = model.Set(in.Engine)
	}
	if has(present, "type") {
		p.Type = model.Set(in.Type)
	}
	return p, errs, nil
}
