package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets(t *testing.T) {
	tb2 := NewTB2(100)
	assert.Equal(t, 2, tb2.DurationHours)
	assert.Equal(t, 100.0, tb2.PowerMW)
	assert.Equal(t, 200.0, tb2.CapacityMWh)
	assert.Equal(t, 0.85, tb2.RoundTripEfficiency)
	assert.Equal(t, 5.0, tb2.MinSpreadThresholdUSD)

	assert.Equal(t, 50.0, NewTB1(50).CapacityMWh)
	assert.Equal(t, 200.0, NewTB4(50).CapacityMWh)
}

func TestOneWayEfficiency(t *testing.T) {
	p := NewTB2(100)
	assert.InDelta(t, math.Sqrt(0.85), p.OneWayEfficiency(), 1e-12)
}

func TestValidate(t *testing.T) {
	require.NoError(t, NewTB2(100).Validate())

	bad := NewTB2(100)
	bad.DurationHours = 3
	assert.Error(t, bad.Validate())

	bad = NewTB2(0)
	assert.Error(t, bad.Validate())

	bad = NewTB2(100)
	bad.RoundTripEfficiency = 1.2
	assert.Error(t, bad.Validate())

	bad = NewTB2(100)
	bad.MinSpreadThresholdUSD = -1
	assert.Error(t, bad.Validate())
}
