package model

// User is an account of the credential store.
type User struct {
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	Roles        []string `json:"roles"`
}

// UserUpdate is a partial update: nil fields are left unchanged.
type UserUpdate struct {
	Password *string
	Roles    *[]string
}
