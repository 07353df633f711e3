package auth

import "time"

// User is an identity record. Users are created on registration and read on
// login; no route updates or deletes them.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // never exposed
	CreatedAt      time.Time `json:"created_at"`
}
