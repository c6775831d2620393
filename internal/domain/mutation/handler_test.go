package mutation

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeDrivers is an in-memory driver store.
type fakeDrivers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Driver
	err    error
}

func newFakeDrivers() *fakeDrivers {
	return &fakeDrivers{rows: map[int64]model.Driver{}}
}

func (f *fakeDrivers) Create(_ context.Context, d model.Driver) (model.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Driver{}, f.err
	}
	f.nextID++
	d.ID = f.nextID
	f.rows[d.ID] = d
	return d, nil
}

func (f *fakeDrivers) Update(_ context.Context, id int64, p model.DriverPatch) (model.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	if !ok {
		return model.Driver{}, model.ErrNotFound
	}
	d = p.Apply(d)
	f.rows[id] = d
	return d, nil
}

func (f *fakeDrivers) Delete(_ context.Context, id int64) (model.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	if !ok {
		return model.Driver{}, model.ErrNotFound
	}
	delete(f.rows, id)
	return d, nil
}

// fakeResults rejects every write as referencing unknown rows.
type fakeResults struct{}

func (fakeResults) Create(context.Context, model.Result) (model.Result, error) {
	return model.Result{}, model.ErrInvalidReference
}

func (fakeResults) Update(context.Context, int64, model.ResultPatch) (model.Result, error) {
	return model.Result{}, model.ErrInvalidReference
}

func (fakeResults) Delete(context.Context, int64) (model.Result, error) {
	return model.Result{}, model.ErrNotFound
}

// fakeGPs records the last write.
type fakeGPs struct {
	created model.GP
	patched model.GPPatch
	key     model.Date
	dup     bool
}

func (f *fakeGPs) Create(_ context.Context, g model.GP) (model.GP, error) {
	if f.dup {
		return model.GP{}, model.ErrDuplicateKey
	}
	f.created = g
	return g, nil
}

func (f *fakeGPs) Update(_ context.Context, k model.Date, p model.GPPatch) (model.GP, error) {
	f.key, f.patched = k, p
	return model.GP{Date: k}, nil
}

func (f *fakeGPs) Delete(_ context.Context, k model.Date) (model.GP, error) {
	f.key = k
	return model.GP{Date: k}, nil
}

func form(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}

func TestDriverMutations(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	Convey("Given a driver handler", t, func() {
		store := newFakeDrivers()
		h := NewHandler[model.Driver, int64, model.DriverPatch](store, DriverCodec{})
		ctx := context.Background()

		Convey("When Max Verstappen is created, moved to Belgium and deleted", func() {
			resp, err := h.Handle(ctx, form("intent", "create", "name", "Max Verstappen", "sex", "M",
				"birthDate", "1997-09-30", "country", "Netherlands"))
			So(err, ShouldBeNil)
			So(resp.Outcome, ShouldEqual, OK)
			So(resp.Envelope, ShouldResemble, Envelope{Success: true, Message: "Driver created successfully"})
			So(store.rows[1].BirthDate.String(), ShouldEqual, "1997-09-30")

			resp, err = h.Handle(ctx, form("intent", "update", "id", "1", "country", "Belgium"))
			So(err, ShouldBeNil)
			So(resp.Envelope.Message, ShouldEqual, "Driver updated successfully")
			So(store.rows[1].Country, ShouldEqual, "Belgium")
			So(store.rows[1].Name, ShouldEqual, "Max Verstappen")

			resp, err = h.Handle(ctx, form("intent", "delete", "id", "1"))
			So(err, ShouldBeNil)
			So(resp.Envelope.Message, ShouldEqual, "Driver deleted successfully")

			Convey("Then the row should be gone and a second delete should fail", func() {
				So(store.rows, ShouldBeEmpty)
				resp, err := h.Handle(ctx, form("intent", "delete", "id", "1"))
				So(err, ShouldBeNil)
				So(resp.Outcome, ShouldEqual, NotFound)
				So(resp.Envelope, ShouldResemble, Envelope{Message: "Driver not found"})
			})
		})

		Convey("When the create form is invalid", func() {
			resp, err := h.Handle(ctx, form("intent", "create", "name", "M", "sex", "X",
				"birthDate", "1997-09-30", "country", "Netherlands"))

			Convey("Then every failing field is reported and nothing is stored", func() {
				So(err, ShouldBeNil)
				So(resp.Outcome, ShouldEqual, Invalid)
				So(resp.Envelope.Success, ShouldBeFalse)
				So(resp.Envelope.Errors.Fields(), ShouldResemble, []string{"name", "sex"})
				So(store.rows, ShouldBeEmpty)
			})
		})

		Convey("When the intent is unknown", func() {
			resp, err := h.Handle(ctx, form("intent", "archive"))

			Convey("Then an invalid action envelope is returned", func() {
				So(err, ShouldBeNil)
				So(resp.Outcome, ShouldEqual, BadRequest)
				So(resp.Envelope, ShouldResemble, Envelope{Message: "Invalid action"})
			})
		})

		Convey("When the key is malformed", func() {
			del, _ := h.Handle(ctx, form("intent", "delete", "id", "abc"))
			upd, _ := h.Handle(ctx, form("intent", "update", "id", "", "name", "X"))

			Convey("Then the id field is reported", func() {
				So(del.Outcome, ShouldEqual, Invalid)
				So(del.Envelope.Errors["id"], ShouldResemble, []string{"ID must be a positive number"})
				So(upd.Envelope.Errors.Fields(), ShouldResemble, []string{"id", "name"})
			})
		})

		Convey("When updating a missing driver", func() {
			resp, err := h.Handle(ctx, form("intent", "update", "id", "99", "name", "Lando Norris"))

			So(err, ShouldBeNil)
			So(resp.Outcome, ShouldEqual, NotFound)
		})

		Convey("When storage fails", func() {
			store.err = errors.New("disk on fire")
			_, err := h.Handle(ctx, form("intent", "create", "name", "Max Verstappen", "sex", "M",
				"birthDate", "1997-09-30", "country", "Netherlands"))

			Convey("Then the error is propagated", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "disk on fire")
			})
		})
	})
}

func TestGPMutations(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	Convey("Given a GP handler", t, func() {
		store := &fakeGPs{}
		h := NewHandler[model.GP, model.Date, model.GPPatch](store, GPCodec{})
		ctx := context.Background()

		Convey("When a GP is created", func() {
			resp, err := h.Handle(ctx, form("intent", "create", "date", "2024-03-02", "name", "Bahrain GP", "country", "Bahrain"))

			So(err, ShouldBeNil)
			So(resp.Envelope.Message, ShouldEqual, "GP created successfully")
			So(store.created.Date.String(), ShouldEqual, "2024-03-02")
		})

		Convey("When an update also sends a date", func() {
			resp, err := h.Handle(ctx, form("intent", "update", "id", "2024-03-02", "date", "bogus", "name", "Sakhir GP"))

			Convey("Then the key comes from id and the date field is ignored", func() {
				So(err, ShouldBeNil)
				So(resp.Outcome, ShouldEqual, OK)
				So(store.key.String(), ShouldEqual, "2024-03-02")
				So(store.patched.Name, ShouldResemble, model.Set("Sakhir GP"))
				So(store.patched.Country.Set, ShouldBeFalse)
			})
		})

		Convey("When the key is not a date", func() {
			resp, _ := h.Handle(ctx, form("intent", "delete", "id", "7"))

			So(resp.Envelope.Errors["id"], ShouldResemble, []string{"ID must be a valid date (YYYY-MM-DD)"})
		})

		Convey("When the date already exists", func() {
			store.dup = true
			resp, err := h.Handle(ctx, form("intent", "create", "date", "2024-03-02", "name", "Bahrain GP", "country", "Bahrain"))

			So(err, ShouldBeNil)
			So(resp.Outcome, ShouldEqual, Conflict)
			So(resp.Envelope.Message, ShouldEqual, "GP already exists")
		})
	})
}

func TestResultMutations(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	Convey("Given a result handler over a store without matching rows", t, func() {
		h := NewHandler[model.Result, int64, model.ResultPatch](fakeResults{}, ResultCodec{})

		Convey("When a valid result is created", func() {
			resp, err := h.Handle(context.Background(), form("intent", "create", "driverId", "1", "gpDate", "2024-03-02", "position", "1"))

			Convey("Then the reference failure is reported", func() {
				So(err, ShouldBeNil)
				So(resp.Outcome, ShouldEqual, Invalid)
				So(resp.Envelope.Message, ShouldEqual, "Result references an unknown record")
			})
		})
	})

	Convey("Given the result codec", t, func() {
		c := ResultCodec{}

		Convey("When the position is blank", func() {
			r, errs, err := c.Record(form("driverId", "4", "gpDate", "2024-03-02", "position", "", "team", " Ferrari "), nil)

			Convey("Then a DNF is built", func() {
				So(err, ShouldBeNil)
				So(errs.Empty(), ShouldBeTrue)
				So(r.Position, ShouldBeNil)
				So(r.DriverID, ShouldEqual, 4)
				So(r.Team, ShouldEqual, "Ferrari")
			})
		})

		Convey("When a patch clears the position", func() {
			p, errs, err := c.Patch(form("position", ""), nil)

			Convey("Then the field is set to nil", func() {
				So(err, ShouldBeNil)
				So(errs.Empty(), ShouldBeTrue)
				So(p.Position.Set, ShouldBeTrue)
				So(p.Position.Value, ShouldBeNil)
				So(p.DriverID.Set, ShouldBeFalse)
			})
		})
	})
}

func TestParseIntent(t *testing.T) {
	Convey("Given raw intents", t, func() {
		in, err := ParseIntent(" update ")
		So(err, ShouldBeNil)
		So(in, ShouldEqual, IntentUpdate)

		_, err = ParseIntent("")
		So(errors.Is(err, ErrInvalidIntent), ShouldBeTrue)
	})
}
