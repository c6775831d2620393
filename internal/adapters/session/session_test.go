package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/paddock/internal/adapters/session"
)

func TestStore(t *testing.T) {
	Convey("Given a session store", t, func() {
		ctx := context.Background()
		now := time.Date(2024, 7, 28, 12, 0, 0, 0, time.UTC)
		s := session.NewStore(
			session.WithTTL(10*time.Minute),
			session.WithClock(func() time.Time { return now }),
		)

		Convey("When a session is created", func() {
			sess, err := s.Create(ctx, "admin")
			So(err, ShouldBeNil)

			Convey("Then it has a token and expiry", func() {
				So(sess.Token, ShouldNotBeEmpty)
				So(sess.Username, ShouldEqual, "admin")
				So(sess.ExpiresAt, ShouldEqual, now.Add(10*time.Minute))
				So(s.Count(), ShouldEqual, 1)
			})

			Convey("Then it can be looked up", func() {
				got, err := s.Lookup(ctx, sess.Token)
				So(err, ShouldBeNil)
				So(got.Username, ShouldEqual, "admin")
			})

			Convey("Then lookup slides the expiry", func() {
				now = now.Add(5 * time.Minute)
				got, err := s.Lookup(ctx, sess.Token)
				So(err, ShouldBeNil)
				So(got.ExpiresAt, ShouldEqual, now.Add(10*time.Minute))
			})

			Convey("Then the clock passing its expiry ends it", func() {
				now = now.Add(10 * time.Minute)
				_, err := s.Lookup(ctx, sess.Token)
				So(err, ShouldEqual, session.ErrNoSession)
				So(s.Count(), ShouldEqual, 0)
			})

			Convey("Then a lookup just before expiry keeps it alive", func() {
				now = now.Add(9 * time.Minute)
				_, err := s.Lookup(ctx, sess.Token)
				So(err, ShouldBeNil)
				now = now.Add(9 * time.Minute)
				_, err = s.Lookup(ctx, sess.Token)
				So(err, ShouldBeNil)
			})

			Convey("Then deleting it ends the session", func() {
				s.Delete(ctx, sess.Token)
				_, err := s.Lookup(ctx, sess.Token)
				So(err, ShouldEqual, session.ErrNoSession)
				So(s.Count(), ShouldEqual, 0)
			})
		})

		Convey("When looking up an unknown token", func() {
			_, err := s.Lookup(ctx, "nope")
			So(err, ShouldEqual, session.ErrNoSession)
		})

		Convey("When looking up an empty token", func() {
			_, err := s.Lookup(ctx, "")
			So(err, ShouldEqual, session.ErrNoSession)
		})

		Convey("When deleting an unknown token", func() {
			So(func() { s.Delete(ctx, "nope") }, ShouldNotPanic)
		})
	})

	Convey("Given a store with a short TTL", t, func() {
		s := session.NewStore(session.WithTTL(20*time.Millisecond))
		sess, err := s.Create(context.Background(), "admin")
		So(err, ShouldBeNil)

		Convey("Then the session expires", func() {
			time.Sleep(40 * time.Millisecond)
			_, err := s.Lookup(context.Background(), sess.Token)
			So(err, ShouldEqual, session.ErrNoSession)
		})
	})

	Convey("Given concurrent logins", t, func() {
		s := session.NewStore()
		var wg sync.WaitGroup
		tokens := make(chan string, 50)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sess, err := s.Create(context.Background(), "admin")
				if err == nil {
					tokens <- sess.Token
				}
			}()
		}
		wg.Wait()
		close(tokens)

		Convey("Then every token is distinct", func() {
			seen := map[string]bool{}
			for tok := range tokens {
				seen[tok] = true
			}
			So(len(seen), ShouldEqual, 50)
			So(s.Count(), ShouldEqual, 50)
		})
	})
}

func TestAuthenticator(t *testing.T) {
	hash, err := session.HashPassword("lights-out")
	if err != nil {
		t.Fatal(err)
	}

	Convey("Given an authenticator with an admin account", t, func() {
		ctx := context.Background()
		store := session.NewStore()
		auth := session.NewAuthenticator(store, "admin", hash)

		So(auth.Enabled(), ShouldBeTrue)

		Convey("When logging in with the right password", func() {
			sess, err := auth.Login(ctx, "admin", "lights-out")

			Convey("Then a session is created", func() {
				So(err, ShouldBeNil)
				So(sess.Token, ShouldNotBeEmpty)
				So(store.Count(), ShouldEqual, 1)
			})

			Convey("Then logout removes it", func() {
				auth.Logout(ctx, sess.Token)
				So(store.Count(), ShouldEqual, 0)
			})
		})

		Convey("When the password is wrong", func() {
			_, err := auth.Login(ctx, "admin", "box-box")
			So(err, ShouldEqual, session.ErrInvalidCredentials)
			So(store.Count(), ShouldEqual, 0)
		})

		Convey("When the username is wrong", func() {
			_, err := auth.Login(ctx, "guest", "lights-out")
			So(err, ShouldEqual, session.ErrInvalidCredentials)
		})
	})

	Convey("Given an authenticator without a password hash", t, func() {
		auth := session.NewAuthenticator(session.NewStore(), "admin", "")

		Convey("Then login is disabled", func() {
			So(auth.Enabled(), ShouldBeFalse)
			_, err := auth.Login(context.Background(), "admin", "")
			So(err, ShouldEqual, session.ErrLoginDisabled)
		})
	})
}

func TestContext(t *testing.T) {
	Convey("Given a context", t, func() {
		_, ok := session.FromContext(context.Background())
		So(ok, ShouldBeFalse)

		ctx := session.WithSession(context.Background(), session.Session{Username: "admin"})
		got, ok := session.FromContext(ctx)
		So(ok, ShouldBeTrue)
		So(got.Username, ShouldEqual, "admin")
	})
}
