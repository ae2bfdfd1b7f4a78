package domain

import (
	"slices"
	"strings"
)

// ContentType is the kind of link saved.
type ContentType string

const (
	ContentTypeTweet    ContentType = "tweet"
	ContentTypeReddit   ContentType = "reddit"
	ContentTypeYouTube  ContentType = "youtube"
	ContentTypeDocument ContentType = "document"
	ContentTypeLink     ContentType = "link"
	ContentTypeArticle  ContentType = "article"
)

var contentTypes = []ContentType{
	ContentTypeTweet,
	ContentTypeReddit,
	ContentTypeYouTube,
	ContentTypeDocument,
	ContentTypeLink,
	ContentTypeArticle,
}

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	return slices.Contains(contentTypes, t)
}

// ContentTypeNames lists the accepted content type values.
func ContentTypeNames() []string {
	names := make([]string, len(contentTypes))
	for i, t := range contentTypes {
		names[i] = string(t)
	}
	return names
}

// secureLinkPrefix is the prefix every saved link must carry.
const secureLinkPrefix = "https"

// IsSecureLink reports whether link is non-empty and uses the https scheme prefix.
func IsSecureLink(link string) bool {
	return strings.HasPrefix(link, secureLinkPrefix)
}

// Content is a saved link owned by one user.
// OwnerID never changes after creation. TagIDs hold no duplicates.
type Content struct {
	Record
	OwnerID string      `json:"owner_id"`
	Link    string      `json:"link"`
	Type    ContentType `json:"type"`
	Title   string      `json:"title"`
	TagIDs  []string    `json:"tag_ids"`
}

// IsOwnedBy reports whether userID owns the content.
func (c *Content) IsOwnedBy(userID string) bool {
	return c.OwnerID == userID
}
