package directory

import "strings"

// Domain is one registered site domain. The registry itself is managed
// outside this service; we only read it.
type Domain struct {
	Key      string
	Host     string
	SiteName string
	Active   bool
}

// CanonicalHost normalizes a hostname for comparison and deduplication:
// lowercased, scheme-stripped, trailing slash trimmed.
func CanonicalHost(h string) string {
	h = strings.TrimSpace(h)
	lower := strings.ToLower(h)
	if strings.HasPrefix(lower, "https://") {
		h = h[len("https://"):]
	} else if strings.HasPrefix(lower, "http://") {
		h = h[len("http://"):]
	}
	h = strings.TrimRight(h, "/")
	return strings.ToLower(h)
}
