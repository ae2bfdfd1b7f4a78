package domain

import "time"

// ShareLink grants unauthenticated read access to every content item of OwnerID.
// One per owner; never mutated or revoked.
type ShareLink struct {
	Token     string    `json:"token"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}
