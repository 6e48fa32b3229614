package domain

import "time"

// User is a registered account. Username doubles as the public chat
// identity carried in message sender/receiver fields.
type User struct {
	ID           string     `bson:"_id" json:"id"`
	Username     string     `bson:"username" json:"username"`
	PasswordHash string     `bson:"password_hash" json:"-"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	LastLoginAt  *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
}
