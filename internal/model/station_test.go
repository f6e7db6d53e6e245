package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasLocation(t *testing.T) {
	lat, lon := 55.9541, -3.2014

	assert.True(t, (&Station{Lat: &lat, Lon: &lon}).HasLocation())
	assert.False(t, (&Station{Lat: &lat}).HasLocation())
	assert.False(t, (&Station{Lon: &lon}).HasLocation())
	assert.False(t, (&Station{}).HasLocation())
}
