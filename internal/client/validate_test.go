package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com", true},
		{"http://localhost:5000/api/links", true},
		{"mailto:someone@example.com", true},
		{"ftp://files.example.com/a.txt", true},
		{"not a url", false},
		{"example.com", false},
		{"http://", false},
		{"", false},
		{"://missing-scheme", false},
		{"http:/example.com", true},
		{"https:example.com", true},
		{"HTTPS:///example.com/path", true},
		{"file:///tmp/notes.txt", true},
		{"https://user@", false},
		{"http:?q=1", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateURL(tt.in))
		})
	}
}
