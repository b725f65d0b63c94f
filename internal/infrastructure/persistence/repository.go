package persistence

import (
	"github.com/multidom/domainsync/internal/domain/directory"
	"github.com/multidom/domainsync/internal/domain/run"
	"github.com/multidom/domainsync/internal/infrastructure/cache/redis"
	"github.com/multidom/domainsync/internal/infrastructure/persistence/postgres"
)

// Repositories holds all repository implementations.
type Repositories struct {
	Run       run.Repository
	Consumed  run.ConsumedLedger
	Directory directory.Repository
}

// NewRepositories creates all repository implementations.
func NewRepositories(db *postgres.DB, redisClient *redis.Client) *Repositories {
	return &Repositories{
		Run:       redis.NewRunRepository(redisClient),
		Consumed:  redis.NewConsumedTokenRepository(redisClient),
		Directory: postgres.NewDomainRepository(db),
	}
}
