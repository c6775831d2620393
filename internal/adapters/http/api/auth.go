package api

import (
	"errors"
	"net/http"

	"github.com/okian/paddock/internal/adapters/session"
	"github.com/okian/paddock/internal/domain/mutation"
	"github.com/okian/paddock/pkg/logger"
)

// requireSession redirects to the login path unless the request carries a
// live session cookie.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.sessionCookie)
		if err != nil {
			http.Redirect(w, r, s.loginPath, http.StatusSeeOther)
			return
		}
		sess, err := s.deps.Sessions.Lookup(r.Context(), c.Value)
		if err != nil {
			http.Redirect(w, r, s.loginPath, http.StatusSeeOther)
			return
		}
		s.setSessionCookie(w, r, sess)
		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
	}
}

// handleLogin handles POST /login with form fields username and password.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, mutation.Envelope{Message: "Invalid form"})
		return
	}
	sess, err := s.deps.Auth.Login(r.Context(), form.Get("username"), form.Get("password"))
	if err != nil {
		err = loginError(err)
		status, _ := classify(err)
		if status >= statusInternalError {
			s.logger.Error(r.Context(), "login failed", logger.Error(err))
		}
		writeJSON(w, status, mutation.Envelope{Message: loginMessage(status)})
		return
	}
	s.setSessionCookie(w, r, sess)
	s.logger.Info(r.Context(), "admin logged in", logger.String("username", sess.Username))
	writeJSON(w, http.StatusOK, mutation.Envelope{Success: true, Message: "Logged in"})
}

// setSessionCookie issues the cookie for sess. It is re-issued on every
// authenticated request so the browser expiry follows the sliding one.
func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, sess session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func loginError(err error) error {
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		return WrapKind("login", ErrUnauthorized, err)
	case errors.Is(err, session.ErrLoginDisabled):
		return WrapKind("login", ErrForbidden, err)
	default:
		return Wrap("login", err)
	}
}

func loginMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Invalid username or password"
	case http.StatusForbidden:
		return "Login is disabled"
	default:
		return "Failed to process request"
	}
}

// handleLogout handles POST /logout. It succeeds without a session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(s.sessionCookie); err == nil {
		s.deps.Auth.Logout(r.Context(), c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, mutation.Envelope{Success: true, Message: "Logged out"})
}
