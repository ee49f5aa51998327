package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie carries the session token between browser and server.
type SessionCookie struct {
	name   string
	maxAge time.Duration
	secure bool
}

// NewSessionCookie configures the cookie. secure should be false only in development.
func NewSessionCookie(name string, maxAge time.Duration, secure bool) *SessionCookie {
	return &SessionCookie{name: name, maxAge: maxAge, secure: secure}
}

// Name returns the cookie name.
func (s *SessionCookie) Name() string {
	return s.name
}

// Read returns the token presented by the client, or "".
func (s *SessionCookie) Read(c *fiber.Ctx) string {
	return c.Cookies(s.name)
}

// Set attaches token to the response.
func (s *SessionCookie) Set(c *fiber.Ctx, token string) {
	c.Cookie(s.cookie(token, int(s.maxAge/time.Second), time.Time{}))
}

// Clear tells the client to drop the session cookie.
func (s *SessionCookie) Clear(c *fiber.Ctx) {
	c.Cookie(s.cookie("", 0, time.Unix(0, 0).UTC()))
}

func (s *SessionCookie) cookie(value string, maxAge int, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}
