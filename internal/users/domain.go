package users

// User is a persisted user record. ID 0 marks a record the store has not
// assigned an identity to yet.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUser carries the fields accepted on create.
type NewUser struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}
