// Package dto provides the client-facing shapes returned by the API.
//
// DTOs carry denormalized fields (tag titles, owner username) so a client can
// render an item without further lookups.
package dto

// UnknownUsername is shown when a content owner no longer resolves.
const UnknownUsername = "Unknown"

// Content is the client-facing representation of a saved link.
type Content struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	Link     string   `json:"link"`
	Tags     []string `json:"tags"`
	Username string   `json:"username"`
}

// SharedBrain is the public snapshot behind a share token.
type SharedBrain struct {
	OwnerID  string    `json:"-"`
	Username string    `json:"username"`
	Items    []Content `json:"content"`
}

// SearchResult is a page of matching content.
type SearchResult struct {
	Total uint64    `json:"total"`
	Items []Content `json:"content"`
}
