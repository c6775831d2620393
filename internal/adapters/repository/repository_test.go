package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/pagination"
	"github.com/okian/paddock/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	db, err := Open(ctx, "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := NewStore(ctx, db, WithMetricsUpdateInterval(time.Hour))
	return s, func() {
		_ = s.Close()
		_ = db.Close()
	}
}

func maxVerstappen() model.Driver {
	return model.Driver{
		Name:      "Max Verstappen",
		Sex:       model.SexMale,
		BirthDate: model.NewDate(1997, time.September, 30),
		Country:   "Netherlands",
	}
}

func TestDriverGateway(t *testing.T) {
	Convey("Given an empty driver gateway", t, func() {
		s, closeStore := newTestStore(t)
		Reset(closeStore)
		ctx := context.Background()

		Convey("When a driver is created", func() {
			created, err := s.Drivers.Create(ctx, maxVerstappen())
			So(err, ShouldBeNil)

			Convey("Then it round-trips through FindByKey", func() {
				So(created.ID, ShouldBeGreaterThan, 0)
				got, err := s.Drivers.FindByKey(ctx, created.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Max Verstappen")
				So(got.Sex, ShouldEqual, model.SexMale)
				So(got.BirthDate.String(), ShouldEqual, "1997-09-30")
				So(got.Country, ShouldEqual, "Netherlands")
			})

			Convey("Then an update changes only the patched field", func() {
				got, err := s.Drivers.Update(ctx, created.ID, model.DriverPatch{Country: model.Set("Belgium")})
				So(err, ShouldBeNil)
				So(got.Country, ShouldEqual, "Belgium")
				So(got.Name, ShouldEqual, created.Name)
				So(got.BirthDate.Equal(created.BirthDate), ShouldBeTrue)
			})

			Convey("Then an empty patch returns the stored row", func() {
				got, err := s.Drivers.Update(ctx, created.ID, model.DriverPatch{})
				So(err, ShouldBeNil)
				So(got, ShouldResemble, created)
			})

			Convey("Then delete removes it and a second delete fails", func() {
				deleted, err := s.Drivers.Delete(ctx, created.ID)
				So(err, ShouldBeNil)
				So(deleted.ID, ShouldEqual, created.ID)

				_, err = s.Drivers.FindByKey(ctx, created.ID)
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)

				_, err = s.Drivers.Delete(ctx, created.ID)
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When updating a missing driver", func() {
			_, err := s.Drivers.Update(ctx, 404, model.DriverPatch{Name: model.Set("Nobody")})

			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("When 15 drivers exist", func() {
			for i := 0; i < 15; i++ {
				d := maxVerstappen()
				d.Name = fmt.Sprintf("Driver %02d", 15-i)
				_, err := s.Drivers.Create(ctx, d)
				So(err, ShouldBeNil)
			}

			Convey("Then page 2 of size 10 holds the last 5 by name", func() {
				page, err := s.Drivers.ListPaged(ctx, pagination.Params{Page: 2, PageSize: 10})
				So(err, ShouldBeNil)
				So(page.Total, ShouldEqual, 15)
				So(page.Page, ShouldEqual, 2)
				So(page.PageSize, ShouldEqual, 10)
				So(len(page.Data), ShouldEqual, 5)
				So(page.Data[0].Name, ShouldEqual, "Driver 11")
				So(page.Data[4].Name, ShouldEqual, "Driver 15")
			})

			Convey("Then a page past the end is empty with the right total", func() {
				page, err := s.Drivers.ListPaged(ctx, pagination.Params{Page: 9, PageSize: 10})
				So(err, ShouldBeNil)
				So(page.Total, ShouldEqual, 15)
				So(page.Data, ShouldNotBeNil)
				So(page.Data, ShouldBeEmpty)
			})

			Convey("Then every page has the expected length", func() {
				for size := 1; size <= 16; size += 5 {
					for p := 1; p <= 4; p++ {
						params := pagination.Params{Page: p, PageSize: size}
						page, err := s.Drivers.ListPaged(ctx, params)
						So(err, ShouldBeNil)
						So(len(page.Data), ShouldEqual, pagination.ExpectedLen(15, params))
					}
				}
			})

			Convey("Then ListAll is ordered by name", func() {
				all, err := s.Drivers.ListAll(ctx)
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 15)
				So(all[0].Name, ShouldEqual, "Driver 01")
				n, err := s.Drivers.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 15)
			})
		})
	})
}

func TestGPGateway(t *testing.T) {
	Convey("Given GPs", t, func() {
		s, closeStore := newTestStore(t)
		Reset(closeStore)
		ctx := context.Background()

		bahrain := model.GP{Date: model.NewDate(2024, time.March, 2), Name: "Bahrain GP", Country: "Bahrain"}
		jeddah := model.GP{Date: model.NewDate(2024, time.March, 9), Name: "Saudi Arabian GP", Country: "Saudi Arabia"}
		australia := model.GP{Date: model.NewDate(2024, time.March, 24), Name: "Australian GP", Country: "Australia"}
		for _, g := range []model.GP{bahrain, jeddah, australia} {
			_, err := s.GPs.Create(ctx, g)
			So(err, ShouldBeNil)
		}

		Convey("When listing them all", func() {
			all, err := s.GPs.ListAll(ctx)

			Convey("Then the newest comes first", func() {
				So(err, ShouldBeNil)
				So(all[0].Name, ShouldEqual, "Australian GP")
				So(all[2].Name, ShouldEqual, "Bahrain GP")
			})
		})

		Convey("When listing a page", func() {
			page, err := s.GPs.ListPaged(ctx, pagination.Params{Page: 1, PageSize: 10})

			Convey("Then rows are ordered by name", func() {
				So(err, ShouldBeNil)
				So(page.Data[0].Name, ShouldEqual, "Australian GP")
				So(page.Data[1].Name, ShouldEqual, "Bahrain GP")
				So(page.Data[2].Name, ShouldEqual, "Saudi Arabian GP")
			})
		})

		Convey("When creating a GP on a taken date", func() {
			_, err := s.GPs.Create(ctx, model.GP{Date: bahrain.Date, Name: "Sakhir GP", Country: "Bahrain"})

			So(errors.Is(err, ErrDuplicateKey), ShouldBeTrue)
		})

		Convey("When updating by date", func() {
			got, err := s.GPs.Update(ctx, bahrain.Date, model.GPPatch{Name: model.Set("Bahrain Grand Prix")})

			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "Bahrain Grand Prix")
			So(got.Country, ShouldEqual, "Bahrain")
			So(got.Date.Equal(bahrain.Date), ShouldBeTrue)
		})
	})
}

func TestResultGateway(t *testing.T) {
	Convey("Given a GP with a classification", t, func() {
		s, closeStore := newTestStore(t)
		Reset(closeStore)
		ctx := context.Background()

		gp, err := s.GPs.Create(ctx, model.GP{Date: model.NewDate(2024, time.March, 2), Name: "Bahrain GP", Country: "Bahrain"})
		So(err, ShouldBeNil)
		verstappen, err := s.Drivers.Create(ctx, maxVerstappen())
		So(err, ShouldBeNil)
		checo, err := s.Drivers.Create(ctx, model.Driver{Name: "Sergio Perez", Sex: model.SexMale, BirthDate: model.NewDate(1990, time.January, 26), Country: "Mexico"})
		So(err, ShouldBeNil)
		lance, err := s.Drivers.Create(ctx, model.Driver{Name: "Lance Stroll", Sex: model.SexMale, BirthDate: model.NewDate(1998, time.October, 29), Country: "Canada"})
		So(err, ShouldBeNil)

		_, err = s.Results.Create(ctx, model.Result{DriverID: lance.ID, GPDate: gp.Date, Team: "Aston Martin"})
		So(err, ShouldBeNil)
		_, err = s.Results.Create(ctx, model.Result{DriverID: checo.ID, GPDate: gp.Date, Position: model.IntPtr(2), Team: "Red Bull"})
		So(err, ShouldBeNil)
		first, err := s.Results.Create(ctx, model.Result{DriverID: verstappen.ID, GPDate: gp.Date, Position: model.IntPtr(1), Team: "Red Bull", Engine: "Honda RBPT", Type: "race"})
		So(err, ShouldBeNil)

		Convey("When a result is created", func() {
			Convey("Then it carries its driver and GP", func() {
				So(first.Driver, ShouldNotBeNil)
				So(first.Driver.Name, ShouldEqual, "Max Verstappen")
				So(first.GP.Name, ShouldEqual, "Bahrain GP")
				So(*first.Position, ShouldEqual, 1)
				So(first.Engine, ShouldEqual, "Honda RBPT")
			})
		})

		Convey("When loading the GP with results", func() {
			got, err := s.GPs.FindWithResults(ctx, gp.Date)

			Convey("Then finishers come by position and the DNF last", func() {
				So(err, ShouldBeNil)
				So(len(got.Results), ShouldEqual, 3)
				So(got.Results[0].Driver.Name, ShouldEqual, "Max Verstappen")
				So(got.Results[1].Driver.Name, ShouldEqual, "Sergio Perez")
				So(got.Results[2].Driver.Name, ShouldEqual, "Lance Stroll")
				So(got.Results[2].Finished(), ShouldBeFalse)
			})
		})

		Convey("When loading a driver with results", func() {
			got, err := s.Drivers.FindWithResults(ctx, verstappen.ID)

			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "Max Verstappen")
			So(len(got.Results), ShouldEqual, 1)
			So(got.Results[0].GP.Country, ShouldEqual, "Bahrain")
		})

		Convey("When a result references unknown rows", func() {
			_, errDriver := s.Results.Create(ctx, model.Result{DriverID: 999, GPDate: gp.Date})
			_, errGP := s.Results.Create(ctx, model.Result{DriverID: verstappen.ID, GPDate: model.NewDate(2030, time.January, 1)})
			_, errUpdate := s.Results.Update(ctx, first.ID, model.ResultPatch{DriverID: model.Set(int64(999))})

			Convey("Then the write is rejected", func() {
				So(errors.Is(errDriver, ErrInvalidReference), ShouldBeTrue)
				So(errors.Is(errGP, ErrInvalidReference), ShouldBeTrue)
				So(errors.Is(errUpdate, ErrInvalidReference), ShouldBeTrue)
			})
		})

		Convey("When a result is marked DNF", func() {
			got, err := s.Results.Update(ctx, first.ID, model.ResultPatch{Position: model.Set[*int](nil)})

			So(err, ShouldBeNil)
			So(got.Position, ShouldBeNil)
			So(got.Team, ShouldEqual, "Red Bull")
		})

		Convey("When the driver is deleted", func() {
			_, err := s.Drivers.Delete(ctx, verstappen.ID)
			So(err, ShouldBeNil)

			Convey("Then their results go with them", func() {
				rs, err := s.Results.ListByDriver(ctx, verstappen.ID)
				So(err, ShouldBeNil)
				So(rs, ShouldBeEmpty)
				n, err := s.Results.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})
		})

		Convey("When the GP is deleted", func() {
			_, err := s.GPs.Delete(ctx, gp.Date)
			So(err, ShouldBeNil)

			rs, err := s.Results.ListByGP(ctx, gp.Date)
			So(err, ShouldBeNil)
			So(rs, ShouldBeEmpty)
		})

		Convey("When counting everything", func() {
			c, err := s.Counts(ctx)

			So(err, ShouldBeNil)
			So(c, ShouldResemble, Counts{Drivers: 3, GPs: 1, Results: 3, Messages: 0})
		})
	})
}

func TestMessageGateway(t *testing.T) {
	Convey("Given stored messages", t, func() {
		s, closeStore := newTestStore(t)
		Reset(closeStore)
		ctx := context.Background()

		base := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			_, err := s.Messages.Create(ctx, model.Message{
				CreatedAt: base.Add(time.Duration(i) * time.Hour),
				Name:      fmt.Sprintf("Fan %d", i),
				Email:     "fan@example.com",
				Subject:   "Hello",
				Message:   "Great season",
			})
			So(err, ShouldBeNil)
		}

		Convey("When listing them", func() {
			all, err := s.Messages.ListAll(ctx)

			Convey("Then the newest comes first", func() {
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 3)
				So(all[0].Name, ShouldEqual, "Fan 2")
				So(all[0].CreatedAt.Equal(base.Add(2*time.Hour)), ShouldBeTrue)
			})
		})

		Convey("When a message has no timestamp", func() {
			m, err := s.Messages.Create(ctx, model.Message{Name: "Late", Email: "l@example.com", Subject: "s", Message: "m"})

			So(err, ShouldBeNil)
			So(m.CreatedAt.IsZero(), ShouldBeFalse)
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Given driver names", t, func() {
		_, err := Open(context.Background(), "oracle", "")
		So(errors.Is(err, ErrUnsupportedDriver), ShouldBeTrue)

		d, err := ParseDialect("PostgreSQL")
		So(err, ShouldBeNil)
		So(d, ShouldEqual, Postgres)
	})

	Convey("Given queries with placeholders", t, func() {
		q := "UPDATE t SET a = ?, b = ? WHERE id = ?"

		So(Postgres.Rebind(q), ShouldEqual, "UPDATE t SET a = $1, b = $2 WHERE id = $3")
		So(SQLite.Rebind(q), ShouldEqual, q)
	})

	Convey("Given sqlite DSNs", t, func() {
		So(sqliteDSN(""), ShouldEqual, ":memory:?_pragma=foreign_keys(1)")
		So(sqliteDSN("file:paddock.db?cache=shared"), ShouldEqual, "file:paddock.db?cache=shared&_pragma=foreign_keys(1)")
		So(sqliteDSN("x.db?_pragma=foreign_keys(0)"), ShouldEqual, "x.db?_pragma=foreign_keys(0)")
	})

	Convey("Given a migrated database", t, func() {
		if err := logger.Init(); err != nil {
			t.Fatal(err)
		}
		ctx := context.Background()
		db, err := Open(ctx, "sqlite", "")
		So(err, ShouldBeNil)
		Reset(func() { _ = db.Close() })
		So(db.Migrate(ctx), ShouldBeNil)

		Convey("When migrating again", func() {
			err := db.Migrate(ctx)

			Convey("Then nothing is reapplied", func() {
				So(err, ShouldBeNil)
				var n int
				So(db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&n), ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})
	})
}
