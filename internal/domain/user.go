package domain

// User is an account that owns content and at most one share link.
// Username is unique; users are never deleted.
type User struct {
	Record
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash,omitempty"`
}
