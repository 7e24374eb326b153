package models

// Session is the single active login. Token changes on every login or
// registration so callers can tell one session from the next.
type Session struct {
	Username string `json:"username"`
	ID       int64  `json:"id"`
	Token    string `json:"token,omitempty"`
}
