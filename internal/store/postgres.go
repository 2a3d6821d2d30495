package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/orwee/liduido/internal/pool"
)

// PostgresStore queries the pool table directly over a Postgres connection.
// Equivalent to RESTStore; useful when the database is reachable without
// the REST gateway.
type PostgresStore struct {
	pool    *pgxpool.Pool
	table   string
	network string
	logger  *zap.Logger
}

func NewPostgresStore(ctx context.Context, dsn, table, network string, logger *zap.Logger) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	pgPool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{
		pool:    pgPool,
		table:   table,
		network: network,
		logger:  logger.Named("postgres-store"),
	}, nil
}

func (s *PostgresStore) LoadPools(ctx context.Context) ([]pool.Record, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE blockchain = $1`,
		selectColumns, pgx.Identifier{s.table}.Sanitize(),
	)

	rows, err := s.pool.Query(ctx, query, s.network)
	if err != nil {
		return nil, fmt.Errorf("query pools: %w", err)
	}
	defer rows.Close()

	records := make([]pool.Record, 0)
	for rows.Next() {
		var (
			pair, dex                 *string
			tier, apy, tvl, vol, fees *float64
		)
		if err := rows.Scan(&pair, &tier, &dex, &apy, &tvl, &vol, &fees); err != nil {
			return nil, fmt.Errorf("scan pool row: %w", err)
		}
		records = append(records, pool.Record{
			Pair:      deref(pair),
			DEX:       deref(dex),
			Tier:      derefF(tier),
			APY24h:    derefF(apy),
			TVL:       derefF(tvl),
			Volume24h: derefF(vol),
			Fees24h:   derefF(fees),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read pool rows: %w", err)
	}

	s.logger.Debug("pools loaded",
		zap.String("network", s.network),
		zap.Int("rows", len(records)))

	return records, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// NULL columns coerce to the zero value, same as the REST transport.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefF(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
