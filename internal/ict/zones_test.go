package ict

import (
	"testing"

	"ict-algo-trader/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeZonesEnvelope(t *testing.T) {
	zones := []model.Zone{
		{Low: 10, High: 12, Kind: model.ZoneBullishOrderBlock},
		{Low: 9, High: 11, Kind: model.ZoneBullishOrderBlock},
		{Low: 10.5, High: 13, Kind: model.ZoneBullishOrderBlock},
	}

	merged, ok := MergeZones(zones)
	require.True(t, ok)
	assert.Equal(t, 9.0, merged.Low)
	assert.Equal(t, 13.0, merged.High)
	assert.Equal(t, model.ZoneBullishOrderBlock, merged.Kind)
}

func TestMergeZonesSingleIsIdempotent(t *testing.T) {
	zone := model.Zone{Low: 10, High: 12, Kind: model.ZoneBearishOrderBlock}

	merged, ok := MergeZones([]model.Zone{zone})
	require.True(t, ok)
	assert.Equal(t, zone, merged)
}

func TestMergeZonesEmpty(t *testing.T) {
	_, ok := MergeZones(nil)
	assert.False(t, ok)
}

func TestMergeLevels(t *testing.T) {
	merged, ok := MergeLevels([]float64{101.5, 99.25, 100})
	require.True(t, ok)
	assert.Equal(t, 99.25, merged.Low)
	assert.Equal(t, 101.5, merged.High)
	assert.Equal(t, model.ZoneLiquidityPool, merged.Kind)

	_, ok = MergeLevels(nil)
	assert.False(t, ok)
}
