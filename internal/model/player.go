package model

import "time"

// UserID uniquely identifies an account
type UserID string

// User is a registered account. Email and Username are unique.
type User struct {
	ID           UserID    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"passwordHash" bson:"passwordHash"` // bcrypt hash
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// PlayerDetails is the name/colour pair submitted for a seat
type PlayerDetails struct {
	Name  string
	Color string
}
