package postgres

import (
	"context"

	"github.com/multidom/domainsync/internal/domain/directory"
	apperrors "github.com/multidom/domainsync/pkg/errors"
)

// DomainRepository reads the domain registry table. The registry is
// managed by the host CMS; this service never writes it.
type DomainRepository struct {
	db *DB
}

func NewDomainRepository(db *DB) *DomainRepository {
	return &DomainRepository{db: db}
}

// ListActive returns all active registered domains.
func (r *DomainRepository) ListActive(ctx context.Context) ([]*directory.Domain, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT key, domain, site_name, active
		 FROM domains
		 WHERE active = TRUE
		 ORDER BY id`)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active domains")
	}
	defer rows.Close()

	var domains []*directory.Domain
	for rows.Next() {
		var d directory.Domain
		if err := rows.Scan(&d.Key, &d.Host, &d.SiteName, &d.Active); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan domain row")
		}
		domains = append(domains, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to read domain rows")
	}

	return domains, nil
}

// ListActiveHosts returns the hostnames of all active domains.
func (r *DomainRepository) ListActiveHosts(ctx context.Context) ([]string, error) {
	domains, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	hosts := make([]string, 0, len(domains))
	for _, d := range domains {
		hosts = append(hosts, d.Host)
	}
	return hosts, nil
}
