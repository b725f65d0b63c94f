package directory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/multidom/domainsync/internal/domain/directory"
)

func TestCanonicalHost(t *testing.T) {
	cases := map[string]string{
		"b.com":                "b.com",
		"B.Com":                "b.com",
		"https://b.com":        "b.com",
		"http://b.com/":        "b.com",
		"HTTPS://B.COM/":       "b.com",
		"  b.com  ":            "b.com",
		"b.com//":              "b.com",
		"":                     "",
		"https://":             "",
		"sub.example.org/path": "sub.example.org/path",
	}

	for input, want := range cases {
		assert.Equal(t, want, directory.CanonicalHost(input), "input %q", input)
	}
}
