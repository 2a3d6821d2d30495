// Package store loads the pool metrics table from the hosted data store.
//
// Two transports answer the same read-only projection query: a PostgREST
// client speaking HTTP and a direct Postgres client. Callers pick one at
// startup and treat them interchangeably through the Store interface.
package store

import (
	"context"

	"github.com/orwee/liduido/internal/pool"
)

// Columns of the projection, in query order. The network filter is fixed
// at construction; the query itself takes no parameters.
const selectColumns = "pair, tier, dex, apy_24h, tvl, volume24h, fees24h"

// Store answers the fixed pool projection query for one network.
// An empty result is ([], nil); transport or status failures return a
// non-nil error and no records, never both.
type Store interface {
	LoadPools(ctx context.Context) ([]pool.Record, error)
	Close()
}
