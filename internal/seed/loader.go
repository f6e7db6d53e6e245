// Package seed performs the startup bootstrap: ensure the schema exists,
// then load the bundled dataset exactly once into an empty store.
package seed

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ev-stations-api/internal/model"
	"github.com/sells-group/ev-stations-api/internal/store"
)

// EnsureReady is idempotent and safe to call on every process start. Schema
// failures are fatal; a missing or undecodable dataset file is not, the
// catalog just starts empty.
func EnsureReady(ctx context.Context, st store.Store, datasetPath string) error {
	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "seed: migrate")
	}

	n, err := st.CountStations(ctx)
	if err != nil {
		return eris.Wrap(err, "seed: count stations")
	}
	if n > 0 {
		return nil
	}

	f, err := os.Open(datasetPath)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Info("seed dataset not found, starting empty",
				zap.String("path", datasetPath))
			return nil
		}
		zap.L().Warn("seed dataset unreadable, skipping load",
			zap.String("path", datasetPath), zap.Error(err))
		return nil
	}
	defer f.Close()

	rows, err := ParseDataset(f)
	if err != nil {
		zap.L().Warn("seed dataset undecodable, skipping load",
			zap.String("path", datasetPath), zap.Error(err))
		return nil
	}
	if len(rows) == 0 {
		return nil
	}

	inserted, err := st.BulkInsertStations(ctx, rows)
	if err != nil {
		return eris.Wrap(err, "seed: bulk insert")
	}
	zap.L().Info("seeded station catalog",
		zap.Int64("stations", inserted), zap.String("path", datasetPath))
	return nil
}

// ParseDataset reads the header-named CSV dataset. Individual field failures
// never abort a row: an unparseable lat, num_connectors, date_added, or id
// simply becomes absent. Only a file that cannot be read as CSV errors.
func ParseDataset(r io.Reader) ([]model.StationCreate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "seed: read header")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var rows []model.StationCreate
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "seed: read row")
		}

		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		rows = append(rows, model.StationCreate{
			ID:             parseInt(cell("id")),
			Title:          parseText(cell("title")),
			Address:        parseText(cell("address")),
			Town:           parseText(cell("town")),
			State:          parseText(cell("state")),
			Postcode:       parseText(cell("postcode")),
			Country:        parseText(cell("country")),
			Lat:            parseFloat(cell("lat")),
			Lon:            parseFloat(cell("lon")),
			Operator:       parseText(cell("operator")),
			Status:         parseText(cell("status")),
			NumConnectors:  parseInt(cell("num_connectors")),
			ConnectorTypes: parseText(cell("connector_types")),
			DateAdded:      parseTimestamp(cell("date_added")),
		})
	}
	return rows, nil
}

// parseText treats empty strings as absent; everything else passes through.
func parseText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// timestampLayouts are tried in order after offset normalization.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp accepts ISO-8601 values; a trailing Z is rewritten to the
// +00:00 offset form first.
func parseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
