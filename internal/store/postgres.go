package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/ev-stations-api/internal/db"
	"github.com/sells-group/ev-stations-api/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, maxConns, minConns int32) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	if maxConns <= 0 {
		maxConns = 10
	}
	if minConns <= 0 {
		minConns = 2
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS ev_stations (
	id              BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	title           TEXT,
	address         TEXT,
	town            TEXT,
	state           TEXT,
	postcode        TEXT,
	country         TEXT,
	lat             DOUBLE PRECISION,
	lon             DOUBLE PRECISION,
	operator        TEXT,
	status          TEXT,
	num_connectors  BIGINT,
	connector_types TEXT,
	date_added      TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_ev_stations_country ON ev_stations(country);
CREATE INDEX IF NOT EXISTS idx_ev_stations_operator ON ev_stations(operator);
`

var (
	pgStationSelect = "SELECT " + strings.Join(stationColumns, ", ") + " FROM ev_stations"

	pgStationInsert = fmt.Sprintf(
		"INSERT INTO ev_stations (%s) VALUES (%s)",
		strings.Join(stationColumns, ", "),
		placeholders(1, len(stationColumns)),
	)

	// Insert without id so the identity column assigns one.
	pgStationInsertAssign = fmt.Sprintf(
		"INSERT INTO ev_stations (%s) VALUES (%s) RETURNING id",
		strings.Join(stationColumns[1:], ", "),
		placeholders(1, len(stationColumns)-1),
	)
)

// placeholders renders "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) ListStations(ctx context.Context, skip, limit int) ([]model.Station, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := s.pool.Query(ctx,
		pgStationSelect+` ORDER BY id LIMIT $1 OFFSET $2`, limit, skip)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list stations")
	}
	return collectPgStations(rows)
}

func (s *PostgresStore) GetStation(ctx context.Context, id int64) (*model.Station, error) {
	row := s.pool.QueryRow(ctx, pgStationSelect+` WHERE id = $1`, id)
	st, err := scanStation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get station %d", id)
	}
	return st, nil
}

func (s *PostgresStore) CreateStation(ctx context.Context, in model.StationCreate) (*model.Station, error) {
	if in.ID != nil {
		if _, err := s.pool.Exec(ctx, pgStationInsert, stationArgs(in)...); err != nil {
			if isPgConflict(err) {
				return nil, ErrConflict
			}
			return nil, eris.Wrap(err, "postgres: insert station")
		}
		if err := s.resyncIDSequence(ctx); err != nil {
			return nil, err
		}
		return s.GetStation(ctx, *in.ID)
	}

	var id int64
	err := s.pool.QueryRow(ctx, pgStationInsertAssign, stationArgs(in)[1:]...).Scan(&id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert station")
	}
	return s.GetStation(ctx, id)
}

func (s *PostgresStore) UpdateStation(ctx context.Context, id int64, patch model.StationPatch) (*model.Station, error) {
	cols, args := patchAssignments(patch)
	if len(cols) == 0 {
		return s.GetStation(ctx, id)
	}

	assignments := make([]string, len(cols))
	for i, c := range cols {
		assignments[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	args = append(args, id)

	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf("UPDATE ev_stations SET %s WHERE id = $%d",
			strings.Join(assignments, ", "), len(cols)+1),
		args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update station %d", id)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetStation(ctx, id)
}

func (s *PostgresStore) DeleteStation(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM ev_stations WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete station %d", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountStations(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ev_stations`).Scan(&n)
	return n, eris.Wrap(err, "postgres: count stations")
}

func (s *PostgresStore) CountByCountry(ctx context.Context, limit int) ([]model.CountryCount, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT country, COUNT(*) AS n FROM ev_stations GROUP BY country ORDER BY n DESC, country LIMIT $1`,
		limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count by country")
	}
	defer rows.Close()

	var counts []model.CountryCount
	for rows.Next() {
		var (
			country *string
			c       model.CountryCount
		)
		if err := rows.Scan(&country, &c.Count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan country count")
		}
		c.Country = country
		counts = append(counts, c)
	}
	return counts, eris.Wrap(rows.Err(), "postgres: count by country iterate")
}

func (s *PostgresStore) ListGeolocated(ctx context.Context) ([]model.Station, error) {
	rows, err := s.pool.Query(ctx,
		pgStationSelect+` WHERE lat IS NOT NULL AND lon IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list geolocated")
	}
	return collectPgStations(rows)
}

func (s *PostgresStore) ListByOperator(ctx context.Context, operator string) ([]model.Station, error) {
	rows, err := s.pool.Query(ctx,
		pgStationSelect+` WHERE operator = $1 ORDER BY id`, operator)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list by operator %q", operator)
	}
	return collectPgStations(rows)
}

// BulkInsertStations loads rows through the COPY protocol. Rows carrying an
// explicit id and rows relying on the identity column need different column
// sets, so each group is copied separately within the same call.
func (s *PostgresStore) BulkInsertStations(ctx context.Context, inserts []model.StationCreate) (int64, error) {
	if len(inserts) == 0 {
		return 0, nil
	}

	var withID, withoutID [][]any
	for _, in := range inserts {
		args := stationArgs(in)
		if in.ID != nil {
			withID = append(withID, args)
		} else {
			withoutID = append(withoutID, args[1:])
		}
	}

	var total int64
	if len(withID) > 0 {
		n, err := db.CopyFrom(ctx, s.pool, "ev_stations", stationColumns, withID)
		if err != nil {
			return total, eris.Wrap(err, "postgres: bulk insert")
		}
		total += n
		if err := s.resyncIDSequence(ctx); err != nil {
			return total, err
		}
	}
	if len(withoutID) > 0 {
		n, err := db.CopyFrom(ctx, s.pool, "ev_stations", stationColumns[1:], withoutID)
		if err != nil {
			return total, eris.Wrap(err, "postgres: bulk insert")
		}
		total += n
	}
	return total, nil
}

func collectPgStations(rows pgx.Rows) ([]model.Station, error) {
	defer rows.Close()

	var stations []model.Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan station")
		}
		stations = append(stations, *st)
	}
	return stations, eris.Wrap(rows.Err(), "postgres: iterate stations")
}

// resyncIDSequence advances the identity sequence past MAX(id). Inserting
// explicit ids bypasses the sequence, so without this the next store-assigned
// id would collide with an already-used value.
func (s *PostgresStore) resyncIDSequence(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence('ev_stations', 'id'), (SELECT COALESCE(MAX(id), 1) FROM ev_stations), true)`)
	return eris.Wrap(err, "postgres: resync id sequence")
}

// isPgConflict reports a unique-key violation (SQLSTATE 23505).
func isPgConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
