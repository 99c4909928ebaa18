package geodesy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lezbar/strf/internal/geodesy"
	"github.com/lezbar/strf/internal/skytime"
)

func TestEquatorialToHorizontalOverheadIsZenith(t *testing.T) {
	mjd := 60000.0
	lon, lat := 10.0, 45.0
	h := skytime.GMST(mjd) + lon
	azi, alt := geodesy.EquatorialToHorizontal(mjd, h, lat, lon, lat)
	assert.InDelta(t, 90.0, alt, 1e-6)
	_ = azi // azimuth is undefined exactly at zenith, only altitude matters here
}

func TestRangeRateSignConventions(t *testing.T) {
	obs := skytime.Vec3{}
	obsVel := skytime.Vec3{}

	receding := skytime.Vec3{X: 1000}
	recedingVel := skytime.Vec3{X: 1.0}
	_, rate := geodesy.RangeRate(receding, recedingVel, obs, obsVel)
	assert.Greater(t, rate, 0.0)

	approaching := skytime.Vec3{X: 1000}
	approachingVel := skytime.Vec3{X: -1.0}
	_, rate2 := geodesy.RangeRate(approaching, approachingVel, obs, obsVel)
	assert.Less(t, rate2, 0.0)
}

func TestZenithAngleDegClampsCosine(t *testing.T) {
	obsPos := skytime.Vec3{X: skytime.EarthRadiusKm}
	delta := skytime.Vec3{X: 500}
	za := geodesy.ZenithAngleDeg(obsPos, delta, delta.Norm())
	assert.GreaterOrEqual(t, za, 0.0)
	assert.LessOrEqual(t, za, 180.0)
}

func TestRaDecOfAxisAlignedDelta(t *testing.T) {
	delta := skytime.Vec3{X: 1000, Y: 0, Z: 0}
	ra, de := geodesy.RaDec(delta, delta.Norm())
	assert.InDelta(t, 0.0, ra, 1e-6)
	assert.InDelta(t, 0.0, de, 1e-6)
}
