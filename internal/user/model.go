package user

import "time"

// User is the stored account record. PasswordHash never crosses the HTTP
// boundary.
type User struct {
	ID           string    `json:"userId"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
