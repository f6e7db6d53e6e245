package store

import (
	"database/sql"

	"github.com/sells-group/ev-stations-api/internal/model"
)

// stationColumns is the canonical column order shared by both drivers. Scan
// and argument helpers below must stay in sync with it.
var stationColumns = []string{
	"id", "title", "address", "town", "state", "postcode", "country",
	"lat", "lon", "operator", "status", "num_connectors", "connector_types",
	"date_added",
}

type scannable interface {
	Scan(dest ...any) error
}

// scanStation reads one row in stationColumns order into a Station,
// converting SQL NULLs to nil pointers.
func scanStation(row scannable) (*model.Station, error) {
	var (
		s model.Station

		title, address, town, state    sql.NullString
		postcode, country              sql.NullString
		operator, status, connectorTys sql.NullString
		lat, lon                       sql.NullFloat64
		numConnectors                  sql.NullInt64
		dateAdded                      sql.NullTime
	)

	err := row.Scan(
		&s.ID, &title, &address, &town, &state, &postcode, &country,
		&lat, &lon, &operator, &status, &numConnectors, &connectorTys,
		&dateAdded,
	)
	if err != nil {
		return nil, err
	}

	s.Title = nullString(title)
	s.Address = nullString(address)
	s.Town = nullString(town)
	s.State = nullString(state)
	s.Postcode = nullString(postcode)
	s.Country = nullString(country)
	s.Lat = nullFloat(lat)
	s.Lon = nullFloat(lon)
	s.Operator = nullString(operator)
	s.Status = nullString(status)
	s.NumConnectors = nullInt(numConnectors)
	s.ConnectorTypes = nullString(connectorTys)
	if dateAdded.Valid {
		t := dateAdded.Time
		s.DateAdded = &t
	}
	return &s, nil
}

// stationArgs returns insert arguments in stationColumns order, id first. A
// nil id is passed through as NULL so the store assigns one.
func stationArgs(in model.StationCreate) []any {
	var id any
	if in.ID != nil {
		id = *in.ID
	}
	return []any{
		id, ptrArg(in.Title), ptrArg(in.Address), ptrArg(in.Town),
		ptrArg(in.State), ptrArg(in.Postcode), ptrArg(in.Country),
		ptrArg(in.Lat), ptrArg(in.Lon), ptrArg(in.Operator),
		ptrArg(in.Status), ptrArg(in.NumConnectors),
		ptrArg(in.ConnectorTypes), ptrArg(in.DateAdded),
	}
}

// patchAssignments returns the columns a patch actually sets, with matching
// argument values, in stationColumns order. Nil fields are skipped so
// unsupplied fields keep their stored values.
func patchAssignments(p model.StationPatch) ([]string, []any) {
	var cols []string
	var args []any

	add := func(col string, v any) {
		cols = append(cols, col)
		args = append(args, v)
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Address != nil {
		add("address", *p.Address)
	}
	if p.Town != nil {
		add("town", *p.Town)
	}
	if p.State != nil {
		add("state", *p.State)
	}
	if p.Postcode != nil {
		add("postcode", *p.Postcode)
	}
	if p.Country != nil {
		add("country", *p.Country)
	}
	if p.Lat != nil {
		add("lat", *p.Lat)
	}
	if p.Lon != nil {
		add("lon", *p.Lon)
	}
	if p.Operator != nil {
		add("operator", *p.Operator)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.NumConnectors != nil {
		add("num_connectors", *p.NumConnectors)
	}
	if p.ConnectorTypes != nil {
		add("connector_types", *p.ConnectorTypes)
	}
	if p.DateAdded != nil {
		add("date_added", *p.DateAdded)
	}
	return cols, args
}

// ptrArg dereferences an optional field into a driver argument, nil for NULL.
func ptrArg[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
