package directory

import "context"

// Repository reads the domain registry.
type Repository interface {
	// ListActive returns all active registered domains.
	ListActive(ctx context.Context) ([]*Domain, error)

	// ListActiveHosts returns the hostnames of all active domains.
	ListActiveHosts(ctx context.Context) ([]string, error)
}
