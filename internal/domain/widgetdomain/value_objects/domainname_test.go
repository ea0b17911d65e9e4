package value_objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"plain hostname", "example.com", "example.com"},
		{"uppercase lowered", "EXAMPLE.COM", "example.com"},
		{"surrounding whitespace", "  example.com  ", "example.com"},
		{"https scheme stripped", "https://example.com", "example.com"},
		{"http scheme stripped", "http://example.com", "example.com"},
		{"www prefix stripped", "www.example.com", "example.com"},
		{"scheme and www", "https://www.example.com", "example.com"},
		{"path stripped", "example.com/widget/embed", "example.com"},
		{"query stripped", "example.com?ref=1", "example.com"},
		{"fragment stripped", "example.com#top", "example.com"},
		{"port stripped", "example.com:8443", "example.com"},
		{"full url", "HTTPS://WWW.Example.COM:443/path?q=1#frag", "example.com"},
		{"subdomain preserved", "app.example.com", "app.example.com"},
		{"www in middle preserved", "foo.www.example.com", "foo.www.example.com"},
		{"ipv6 literal untouched", "::1", "::1"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.raw))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"https://www.example.com:8443/path?q=1",
		"APP.Example.com",
		"localhost:3000",
	}

	for _, raw := range inputs {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(once), "normalization of %q must be idempotent", raw)
	}
}

func TestNewDomainName(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		expected  string
		expectErr bool
	}{
		{"valid hostname", "Example.com", "example.com", false},
		{"valid url", "https://www.shop.example.com/cart", "shop.example.com", false},
		{"empty rejected", "", "", true},
		{"whitespace only rejected", "   ", "", true},
		{"inner whitespace rejected", "exa mple.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := NewDomainName(tt.raw)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, name.String())
		})
	}
}
