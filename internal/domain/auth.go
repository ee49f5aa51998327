package domain

import "time"

// Session describes an issued session token.
type Session struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
