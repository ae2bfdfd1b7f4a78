package domain

import "time"

// Record holds the identity and timestamps shared by stored entities.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitTimestamps sets CreatedAt and UpdatedAt to now (UTC).
func (r *Record) InitTimestamps() {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
}

// Touch bumps UpdatedAt.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC()
}
