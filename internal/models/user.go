package models

// User of the generator
// Only the username is known: no password is stored or verified anywhere
type User struct {
	Username string `json:"username"`
}
