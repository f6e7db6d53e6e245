package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sells-group/ev-stations-api/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultSQLitePath is used when no datastore target is configured.
const DefaultSQLitePath = "ev_stations.db"

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = DefaultSQLitePath
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// id is the rowid alias: inserting NULL assigns the next id.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS ev_stations (
	id              INTEGER PRIMARY KEY,
	title           TEXT,
	address         TEXT,
	town            TEXT,
	state           TEXT,
	postcode        TEXT,
	country         TEXT,
	lat             REAL,
	lon             REAL,
	operator        TEXT,
	status          TEXT,
	num_connectors  INTEGER,
	connector_types TEXT,
	date_added      DATETIME
);

CREATE INDEX IF NOT EXISTS idx_ev_stations_country ON ev_stations(country);
CREATE INDEX IF NOT EXISTS idx_ev_stations_operator ON ev_stations(operator);
`

var sqliteStationSelect = "SELECT " + strings.Join(stationColumns, ", ") + " FROM ev_stations"

var sqliteStationInsert = fmt.Sprintf(
	"INSERT INTO ev_stations (%s) VALUES (%s)",
	strings.Join(stationColumns, ", "),
	strings.TrimSuffix(strings.Repeat("?, ", len(stationColumns)), ", "),
)

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListStations(ctx context.Context, skip, limit int) ([]model.Station, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := s.db.QueryContext(ctx,
		sqliteStationSelect+` ORDER BY id LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list stations")
	}
	return collectStations(rows)
}

func (s *SQLiteStore) GetStation(ctx context.Context, id int64) (*model.Station, error) {
	row := s.db.QueryRowContext(ctx, sqliteStationSelect+` WHERE id = ?`, id)
	st, err := scanStation(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get station %d", id)
	}
	return st, nil
}

func (s *SQLiteStore) CreateStation(ctx context.Context, in model.StationCreate) (*model.Station, error) {
	res, err := s.db.ExecContext(ctx, sqliteStationInsert, stationArgs(in)...)
	if err != nil {
		if isSQLiteConflict(err) {
			return nil, ErrConflict
		}
		return nil, eris.Wrap(err, "sqlite: insert station")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last insert id")
	}
	if in.ID != nil {
		id = *in.ID
	}
	return s.GetStation(ctx, id)
}

func (s *SQLiteStore) UpdateStation(ctx context.Context, id int64, patch model.StationPatch) (*model.Station, error) {
	cols, args := patchAssignments(patch)
	if len(cols) == 0 {
		return s.GetStation(ctx, id)
	}

	assignments := make([]string, len(cols))
	for i, c := range cols {
		assignments[i] = c + " = ?"
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE ev_stations SET "+strings.Join(assignments, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update station %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetStation(ctx, id)
}

func (s *SQLiteStore) DeleteStation(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ev_stations WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete station %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CountStations(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ev_stations`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count stations")
}

func (s *SQLiteStore) CountByCountry(ctx context.Context, limit int) ([]model.CountryCount, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT country, COUNT(*) AS n FROM ev_stations GROUP BY country ORDER BY n DESC, country LIMIT ?`,
		limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count by country")
	}
	defer rows.Close()

	var counts []model.CountryCount
	for rows.Next() {
		var (
			country sql.NullString
			c       model.CountryCount
		)
		if err := rows.Scan(&country, &c.Count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan country count")
		}
		c.Country = nullString(country)
		counts = append(counts, c)
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: count by country iterate")
}

func (s *SQLiteStore) ListGeolocated(ctx context.Context) ([]model.Station, error) {
	rows, err := s.db.QueryContext(ctx,
		sqliteStationSelect+` WHERE lat IS NOT NULL AND lon IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list geolocated")
	}
	return collectStations(rows)
}

func (s *SQLiteStore) ListByOperator(ctx context.Context, operator string) ([]model.Station, error) {
	rows, err := s.db.QueryContext(ctx,
		sqliteStationSelect+` WHERE operator = ? ORDER BY id`, operator)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list by operator %q", operator)
	}
	return collectStations(rows)
}

func (s *SQLiteStore) BulkInsertStations(ctx context.Context, inserts []model.StationCreate) (int64, error) {
	if len(inserts) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin bulk insert")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteStationInsert)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare bulk insert")
	}
	defer stmt.Close()

	for _, in := range inserts {
		if _, err := stmt.ExecContext(ctx, stationArgs(in)...); err != nil {
			return 0, eris.Wrap(err, "sqlite: bulk insert row")
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit bulk insert")
	}
	return int64(len(inserts)), nil
}

func collectStations(rows *sql.Rows) ([]model.Station, error) {
	defer rows.Close()

	var stations []model.Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan station")
		}
		stations = append(stations, *st)
	}
	return stations, eris.Wrap(rows.Err(), "sqlite: iterate stations")
}

// isSQLiteConflict reports a primary-key or unique-index violation.
func isSQLiteConflict(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
		se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
