package backend

import (
	"testing"

	"github.com/pocketbase/pocketbase/tools/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket_PublicURLRoundTrip(t *testing.T) {
	b := NewBucket(nil, "https://magis.example.com/")

	url := b.PublicURL("uploads/abc.png")
	assert.Equal(t, "https://magis.example.com/storage/uploads/abc.png", url)
	assert.Equal(t, "uploads/abc.png", b.KeyFromURL(url))
}

func TestBucket_KeyFromForeignURL(t *testing.T) {
	b := NewBucket(nil, "https://magis.example.com")

	assert.Empty(t, b.KeyFromURL("https://cdn.other.com/storage/uploads/abc.png"))
	assert.Empty(t, b.KeyFromURL("https://magis.example.com/storage/uploads/../secret"))
	assert.Empty(t, b.KeyFromURL(""))
}

func TestValidKey(t *testing.T) {
	tests := []struct {
		key      string
		expected bool
	}{
		{"uploads/3f1c.png", true},
		{"uploads/", false},
		{"uploads/a/b.png", false},
		{"uploads/..png", false},
		{"other/3f1c.png", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidKey(tt.key))
		})
	}
}

func TestIsImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	file, err := filesystem.NewFileFromBytes(png, "logo.png")
	require.NoError(t, err)
	assert.True(t, IsImage(file))

	text, err := filesystem.NewFileFromBytes([]byte("hello world"), "notes.png")
	require.NoError(t, err)
	assert.False(t, IsImage(text))
}
