package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"https://www.puredental.com/about", "puredental.com"},
		{"http://PureDental.COM", "puredental.com"},
		{"https://puredental.com", "puredental.com"},
		{"puredental.com/contact", "puredental.com"},
		{"https://www.yelp.com/biz/pure-dental", "yelp.com"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeDomain(tt.in), "input %q", tt.in)
	}
}
