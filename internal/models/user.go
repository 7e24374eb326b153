package models

// User is a registered account. Password is kept verbatim; this is a demo
// store and there is no authentication model behind it.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
