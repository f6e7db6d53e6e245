package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKM_ZeroDistance(t *testing.T) {
	assert.Equal(t, 0.0, HaversineKM(55.9541, -3.2014, 55.9541, -3.2014))
}

func TestHaversineKM_OneDegreeAtEquator(t *testing.T) {
	// One degree of longitude on the equator is R * pi/180.
	d := HaversineKM(0, 0, 0, 1)
	assert.InDelta(t, 111.12, d, 0.05)
}

func TestHaversineKM_PoleToEquator(t *testing.T) {
	// A quarter of the great circle: R * pi/2.
	d := HaversineKM(0, 0, 90, 0)
	assert.InDelta(t, 10001.26, d, 0.01)
}

func TestHaversineKM_Symmetric(t *testing.T) {
	a := HaversineKM(48.8443, 2.3744, 52.5219, 13.4132)
	b := HaversineKM(52.5219, 13.4132, 48.8443, 2.3744)
	assert.InDelta(t, a, b, 1e-9)
	assert.Greater(t, a, 0.0)
}
