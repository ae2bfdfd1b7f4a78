package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentType_Valid(t *testing.T) {
	for _, name := range []string{"tweet", "reddit", "youtube", "document", "link", "article"} {
		assert.True(t, ContentType(name).Valid(), name)
	}

	for _, name := range []string{"", "video", "Tweet", "image"} {
		assert.False(t, ContentType(name).Valid(), name)
	}
}

func TestContentTypeNames(t *testing.T) {
	assert.Equal(t, []string{"tweet", "reddit", "youtube", "document", "link", "article"}, ContentTypeNames())
}

func TestIsSecureLink(t *testing.T) {
	tests := []struct {
		link string
		want bool
	}{
		{"https://x.com/post/1", true},
		{"https://", true},
		{"http://example.com", false},
		{"ftp://example.com", false},
		{"", false},
		{" https://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSecureLink(tt.link))
		})
	}
}

func TestContent_IsOwnedBy(t *testing.T) {
	c := &Content{OwnerID: "user-a"}

	assert.True(t, c.IsOwnedBy("user-a"))
	assert.False(t, c.IsOwnedBy("user-b"))
	assert.False(t, c.IsOwnedBy(""))
}

func TestNormalizeTagTitle(t *testing.T) {
	assert.Equal(t, "ai", NormalizeTagTitle("  ai \t"))
	assert.Equal(t, "AI", NormalizeTagTitle("AI"), "case is preserved")
	assert.Equal(t, "", NormalizeTagTitle("   "))

	// "é" composed vs "e" + combining acute.
	assert.Equal(t, "caf\u00e9", NormalizeTagTitle("cafe\u0301"))
}

func TestRecord_Timestamps(t *testing.T) {
	var r Record
	r.InitTimestamps()

	assert.False(t, r.CreatedAt.IsZero())
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)

	before := r.UpdatedAt
	r.Touch()
	assert.False(t, r.UpdatedAt.Before(before))
}
