package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtensionForMime(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"application/pdf", "pdf"},
		{"application/msword", "doc"},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "docx"},
		{"  Application/PDF ", "pdf"},
		{"application/x-unknown-thing", "bin"},
		{"", "bin"},
		{"garbage", "bin"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtensionForMime(tt.mime), "mime %q", tt.mime)
	}
}

func TestDeriveKey(t *testing.T) {
	assert.Equal(t, "documents/abc.pdf", DeriveKey("", "abc", "application/pdf"))
	assert.Equal(t, "manuals/abc.docx", DeriveKey("manuals", "abc",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	assert.Equal(t, "documents/abc.bin", DeriveKey("", "abc", "application/x-weird"))
}

func TestNormalizeKey(t *testing.T) {
	const base = "https://pub-acct.r2.dev"

	tests := []struct {
		name     string
		urlOrKey string
		want     string
	}{
		{"raw key passes through", "documents/abc.pdf", "documents/abc.pdf"},
		{"public url stripped", base + "/documents/abc.pdf", "documents/abc.pdf"},
		{"foreign url falls back to path", "https://other.example.com/x/y.pdf", "x/y.pdf"},
		{"http url", "http://other.example.com/z.bin", "z.bin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.urlOrKey, base))
		})
	}

	t.Run("no base configured", func(t *testing.T) {
		assert.Equal(t, "a/b.pdf", NormalizeKey("https://h.example/a/b.pdf", ""))
		assert.Equal(t, "a/b.pdf", NormalizeKey("a/b.pdf", ""))
	})
}
