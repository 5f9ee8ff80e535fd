// Package drivers wires concrete store implementations behind the store
// interfaces.
package drivers

import (
	"fmt"

	"github.com/oakmontlabs/gatehouse/internal/auth/store"
	"github.com/oakmontlabs/gatehouse/internal/auth/store/drivers/redis"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// NewTokenStore selects the token authority backend. SQLite reuses the
// relational store; Redis trades the audit columns for TTL-based expiry on
// the hot validation path. The returned closer is a no-op for SQLite since
// the relational store owns its own lifecycle.
func NewTokenStore(driver string, base store.Store, redisCfg redis.Config) (store.Tokens, func() error, error) {
	switch driver {
	case DriverSQLite, "":
		return base.Tokens(), func() error { return nil }, nil
	case DriverRedis:
		ts, err := redis.NewTokenStore(redisCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis token store: %w", err)
		}
		return ts, ts.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown token store driver %q", driver)
	}
}
