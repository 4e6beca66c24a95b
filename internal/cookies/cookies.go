// Package cookies writes and reads the session cookie.
package cookies

import (
	"errors"
	"net/http"
	"time"
)

// ErrNoCookie is returned when the request carries no session cookie.
var ErrNoCookie = errors.New("session cookie missing")

// Manager sets and clears the session cookie with fixed security flags.
type Manager struct {
	Name   string
	Domain string
	Secure bool
}

// New creates a cookie manager for the named cookie.
func New(name, domain string, secure bool) *Manager {
	return &Manager{Name: name, Domain: domain, Secure: secure}
}

// Set writes token into the session cookie, valid until exp.
func (m *Manager) Set(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.Name,
		Value:    token,
		Path:     "/",
		Domain:   m.Domain,
		Expires:  exp,
		MaxAge:   maxAgeFrom(exp),
		Secure:   m.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie in the browser.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.Name,
		Value:    "",
		Path:     "/",
		Domain:   m.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   m.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Get returns the session token carried by r.
func (m *Manager) Get(r *http.Request) (string, error) {
	c, err := r.Cookie(m.Name)
	if err != nil || c.Value == "" {
		return "", ErrNoCookie
	}
	return c.Value, nil
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec <= 0 {
		return -1
	}
	return sec
}
