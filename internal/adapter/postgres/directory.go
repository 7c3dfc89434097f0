package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/farm-advisory-service/internal/domain"
)

// DBTX is the subset of pgxpool.Pool used by the directory.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const registeredFarmersSQL = `
SELECT phone
FROM users
WHERE status = $1
  AND role = $2
  AND phone IS NOT NULL
  AND phone <> ''
ORDER BY phone`

// Account values that qualify a user for hazard alerts.
const (
	StatusRegistered = "registered"
	RoleFarmer       = "farmer"
)

// FarmerDirectory implements domain.FarmerDirectory over the platform's
// users table.
type FarmerDirectory struct {
	db DBTX
}

// NewFarmerDirectory creates a directory over an existing connection or pool.
func NewFarmerDirectory(db DBTX) *FarmerDirectory {
	return &FarmerDirectory{db: db}
}

// Connect opens a pgx pool for databaseURL and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// RegisteredFarmers returns every registered farmer with a phone number.
func (d *FarmerDirectory) RegisteredFarmers(ctx context.Context) ([]domain.FarmerContact, error) {
	rows, err := d.db.Query(ctx, registeredFarmersSQL, StatusRegistered, RoleFarmer)
	if err != nil {
		return nil, fmt.Errorf("query registered farmers: %w", err)
	}
	phones, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan registered farmers: %w", err)
	}

	farmers := make([]domain.FarmerContact, len(phones))
	for i, p := range phones {
		farmers[i] = domain.FarmerContact{PhoneNumber: p}
	}
	return farmers, nil
}
