// Package models holds the client-side mirror types.
package models

// User mirrors a server-owned user record. ID 0 marks a candidate that the
// server has not persisted yet.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
