// Package model defines the station catalog records shared by the store,
// analytics, and API layers.
package model

import "time"

// Station is one physical charging location. Every descriptive field is
// optional; the source data is sparse and records are kept as-is. Absent
// fields render as explicit JSON nulls.
type Station struct {
	ID             int64      `json:"id"`
	Title          *string    `json:"title"`
	Address        *string    `json:"address"`
	Town           *string    `json:"town"`
	State          *string    `json:"state"`
	Postcode       *string    `json:"postcode"`
	Country        *string    `json:"country"`
	Lat            *float64   `json:"lat"`
	Lon            *float64   `json:"lon"`
	Operator       *string    `json:"operator"`
	Status         *string    `json:"status"`
	NumConnectors  *int64     `json:"num_connectors"`
	ConnectorTypes *string    `json:"connector_types"`
	DateAdded      *time.Time `json:"date_added"`
}

// HasLocation reports whether both coordinates are present. Records missing
// either half of the pair are excluded from geospatial queries.
func (s *Station) HasLocation() bool {
	return s.Lat != nil && s.Lon != nil
}

// StationCreate is the payload for inserting a station. A nil ID lets the
// store assign one.
type StationCreate struct {
	ID             *int64     `json:"id"`
	Title          *string    `json:"title"`
	Address        *string    `json:"address"`
	Town           *string    `json:"town"`
	State          *string    `json:"state"`
	Postcode       *string    `json:"postcode"`
	Country        *string    `json:"country"`
	Lat            *float64   `json:"lat"`
	Lon            *float64   `json:"lon"`
	Operator       *string    `json:"operator"`
	Status         *string    `json:"status"`
	NumConnectors  *int64     `json:"num_connectors"`
	ConnectorTypes *string    `json:"connector_types"`
	DateAdded      *time.Time `json:"date_added"`
}

// StationPatch carries a partial update. Nil fields leave the stored value
// untouched.
type StationPatch struct {
	Title          *string    `json:"title"`
	Address        *string    `json:"address"`
	Town           *string    `json:"town"`
	State          *string    `json:"state"`
	Postcode       *string    `json:"postcode"`
	Country        *string    `json:"country"`
	Lat            *float64   `json:"lat"`
	Lon            *float64   `json:"lon"`
	Operator       *string    `json:"operator"`
	Status         *string    `json:"status"`
	NumConnectors  *int64     `json:"num_connectors"`
	ConnectorTypes *string    `json:"connector_types"`
	DateAdded      *time.Time `json:"date_added"`
}

// CountryCount is one row of the per-country aggregate. Country is nil for
// the group of records with no country value.
type CountryCount struct {
	Country *string `json:"country"`
	Count   int64   `json:"count"`
}
