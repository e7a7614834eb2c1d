package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameDomain(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		candidate string
		want      bool
	}{
		{"same host", "https://example.com/", "https://example.com/a/b?q=1", true},
		{"scheme ignored", "https://example.com/", "http://example.com/", true},
		{"host case ignored", "https://Example.COM/", "https://example.com/x", true},
		{"subdomain differs", "https://example.com/", "https://www.example.com/", false},
		{"port differs", "http://localhost:8080/", "http://localhost:9090/", false},
		{"port matches", "http://localhost:8080/", "http://localhost:8080/page", true},
		{"other host", "https://example.com/", "https://example.org/", false},
		{"relative candidate", "https://example.com/", "/relative", false},
		{"relative reference", "/relative", "https://example.com/", false},
		{"unparseable candidate", "https://example.com/", "http://[::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameDomain(tt.reference, tt.candidate))
		})
	}
}
