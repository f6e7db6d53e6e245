// Package analytics derives read-only aggregates from the station store:
// totals, per-country counts, operator filters, and nearest-station ranking.
package analytics

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ev-stations-api/internal/geo"
	"github.com/sells-group/ev-stations-api/internal/model"
	"github.com/sells-group/ev-stations-api/internal/store"
)

// Default query bounds matching the HTTP surface.
const (
	DefaultCountryLimit  = 50
	DefaultNearestRadius = 10.0
	DefaultNearestLimit  = 10
)

// Engine answers analytics queries. It holds no state between calls; every
// read goes to the store.
type Engine struct {
	store store.Store
}

func New(st store.Store) *Engine {
	return &Engine{store: st}
}

// NearbyStation pairs a station with its computed distance from the query
// point.
type NearbyStation struct {
	DistanceKM float64
	Station    model.Station
}

// TotalCount returns the unconditional record count.
func (e *Engine) TotalCount(ctx context.Context) (int64, error) {
	return e.store.CountStations(ctx)
}

// CountByCountry groups records by country (absent values form their own
// group), ordered by descending count and truncated to limit.
func (e *Engine) CountByCountry(ctx context.Context, limit int) ([]model.CountryCount, error) {
	if limit <= 0 {
		limit = DefaultCountryLimit
	}
	return e.store.CountByCountry(ctx, limit)
}

// Nearest returns up to limit geolocated stations within radiusKM of the
// query point, closest first. The scan is linear and in-memory; fine for the
// catalog sizes this serves.
func (e *Engine) Nearest(ctx context.Context, lat, lon, radiusKM float64, limit int) ([]NearbyStation, error) {
	if limit <= 0 {
		limit = DefaultNearestLimit
	}

	stations, err := e.store.ListGeolocated(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "analytics: nearest")
	}

	var nearby []NearbyStation
	for _, s := range stations {
		if !s.HasLocation() {
			continue
		}
		d := geo.HaversineKM(lat, lon, *s.Lat, *s.Lon)
		if d <= radiusKM {
			nearby = append(nearby, NearbyStation{DistanceKM: d, Station: s})
		}
	}

	// Stable sort keeps store order for equal distances.
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKM < nearby[j].DistanceKM
	})

	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}

// ByOperator returns stations whose operator matches exactly, byte for byte.
// An empty result is valid.
func (e *Engine) ByOperator(ctx context.Context, operator string) ([]model.Station, error) {
	return e.store.ListByOperator(ctx, operator)
}
