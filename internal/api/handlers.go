package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/ev-stations-api/internal/analytics"
	"github.com/sells-group/ev-stations-api/internal/model"
)

func (s *Server) handleListStations(w http.ResponseWriter, r *http.Request) {
	skip, ok := queryInt(w, r, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 100)
	if !ok {
		return
	}

	stations, err := s.store.ListStations(r.Context(), skip, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if stations == nil {
		stations = []model.Station{}
	}
	writeJSON(w, http.StatusOK, stations)
}

func (s *Server) handleGetStation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	station, err := s.store.GetStation(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, station)
}

func (s *Server) handleCreateStation(w http.ResponseWriter, r *http.Request) {
	var in model.StationCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	station, err := s.store.CreateStation(r.Context(), in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, station)
}

func (s *Server) handleUpdateStation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch model.StationPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	station, err := s.store.UpdateStation(r.Context(), id, patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, station)
}

func (s *Server) handleDeleteStation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteStation(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.engine.TotalCount(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (s *Server) handleCountByCountry(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", analytics.DefaultCountryLimit)
	if !ok {
		return
	}
	counts, err := s.engine.CountByCountry(r.Context(), limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if counts == nil {
		counts = []model.CountryCount{}
	}
	writeJSON(w, http.StatusOK, counts)
}

// stationSummary is the trimmed station rendering inside nearest results.
type stationSummary struct {
	ID      int64    `json:"id"`
	Title   *string  `json:"title"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Town    *string  `json:"town"`
	Country *string  `json:"country"`
}

type nearestEntry struct {
	DistanceKM float64        `json:"distance_km"`
	Station    stationSummary `json:"station"`
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	lat, ok := queryFloatRequired(w, r, "lat")
	if !ok {
		return
	}
	lon, ok := queryFloatRequired(w, r, "lon")
	if !ok {
		return
	}
	radius, ok := queryFloat(w, r, "radius_km", analytics.DefaultNearestRadius)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", analytics.DefaultNearestLimit)
	if !ok {
		return
	}

	nearby, err := s.engine.Nearest(r.Context(), lat, lon, radius, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	entries := make([]nearestEntry, 0, len(nearby))
	for _, n := range nearby {
		entries = append(entries, nearestEntry{
			DistanceKM: n.DistanceKM,
			Station: stationSummary{
				ID:      n.Station.ID,
				Title:   n.Station.Title,
				Lat:     n.Station.Lat,
				Lon:     n.Station.Lon,
				Town:    n.Station.Town,
				Country: n.Station.Country,
			},
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleByOperator(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("operator") {
		writeError(w, http.StatusBadRequest, "Query parameter operator is required")
		return
	}
	stations, err := s.engine.ByOperator(r.Context(), r.URL.Query().Get("operator"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if stations == nil {
		stations = []model.Station{}
	}
	writeJSON(w, http.StatusOK, stations)
}

// param helpers; unparseable values are the caller's problem, not the core's

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid station id")
		return 0, false
	}
	return id, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Query parameter "+name+" must be an integer")
		return 0, false
	}
	return n, true
}

func queryFloat(w http.ResponseWriter, r *http.Request, name string, def float64) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Query parameter "+name+" must be a number")
		return 0, false
	}
	return f, true
}

func queryFloatRequired(w http.ResponseWriter, r *http.Request, name string) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Query parameter "+name+" is required")
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Query parameter "+name+" must be a number")
		return 0, false
	}
	return f, true
}
