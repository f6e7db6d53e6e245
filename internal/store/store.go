// Package store persists the station catalog. Two implementations exist:
// SQLite (the default, file-backed) via modernc.org/sqlite and Postgres via
// pgx. Both keep the row<->struct mapping explicit in mapping.go.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ev-stations-api/internal/model"
)

// Sentinel errors the API layer maps to HTTP statuses.
var (
	ErrNotFound = eris.New("station not found")
	ErrConflict = eris.New("station id already exists")
)

// DefaultListLimit caps list queries when the caller passes no limit.
const DefaultListLimit = 100

// Store defines the persistence interface for the station catalog. Every
// operation takes a context and uses its own connection for the duration of
// the call.
type Store interface {
	ListStations(ctx context.Context, skip, limit int) ([]model.Station, error)
	GetStation(ctx context.Context, id int64) (*model.Station, error)
	CreateStation(ctx context.Context, in model.StationCreate) (*model.Station, error)
	UpdateStation(ctx context.Context, id int64, patch model.StationPatch) (*model.Station, error)
	DeleteStation(ctx context.Context, id int64) error

	CountStations(ctx context.Context) (int64, error)
	CountByCountry(ctx context.Context, limit int) ([]model.CountryCount, error)
	ListGeolocated(ctx context.Context) ([]model.Station, error)
	ListByOperator(ctx context.Context, operator string) ([]model.Station, error)

	// BulkInsertStations inserts all rows as a single committed operation.
	BulkInsertStations(ctx context.Context, rows []model.StationCreate) (int64, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Options selects and tunes a store backend.
type Options struct {
	Driver      string
	DatabaseURL string
	MaxConns    int32
	MinConns    int32
}

// Open constructs a store from config. The driver defaults to sqlite; a
// postgres:// DSN selects the postgres backend regardless of the driver
// setting so a single DATABASE_URL is enough to switch targets.
func Open(ctx context.Context, opts Options) (Store, error) {
	driver := opts.Driver
	if strings.HasPrefix(opts.DatabaseURL, "postgres://") || strings.HasPrefix(opts.DatabaseURL, "postgresql://") {
		driver = "postgres"
	}
	switch driver {
	case "", "sqlite":
		return NewSQLite(opts.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, opts.DatabaseURL, opts.MaxConns, opts.MinConns)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
