package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		id, err := Generate(PrefixContent)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixUser, PrefixTag, PrefixContent} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(id, prefix+"-"))
			assert.Len(t, id, len(prefix)+1+21)
			assert.True(t, Valid(prefix, id))
		})
	}
}

func TestValid(t *testing.T) {
	good := MustGenerate(PrefixContent)

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"generated id", good, true},
		{"wrong prefix", strings.Replace(good, "content-", "tagxxxx-", 1), false},
		{"too short", good[:len(good)-1], false},
		{"too long", good + "a", false},
		{"bad character", good[:len(good)-1] + "!", false},
		{"empty", "", false},
		{"mongo object id", "507f1f77bcf86cd799439011", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(PrefixContent, tt.input))
		})
	}
}

func TestShareToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		token, err := ShareToken()
		require.NoError(t, err)
		assert.Len(t, token, ShareTokenLength)
		assert.False(t, seen[token])
		seen[token] = true
	}
}
