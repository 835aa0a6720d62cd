package tripfile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andes-trip-manager/backend/internal/tripfile"
)

func TestComputeStatistics(t *testing.T) {
	a := sampleAggregate()

	s := tripfile.ComputeStatistics(a)

	assert.Equal(t, tripfile.Statistics{
		TotalDays:        2,
		TotalStops:       1,
		TotalCosts:       2,
		TotalCostValue:   350.5,
		TotalDistance:    200,
		TripDurationDays: 7,
	}, s)
}

func TestComputeStatistics_TripDistanceWins(t *testing.T) {
	a := sampleAggregate()
	a.Trip.TotalDistance = ptr(1240.0)

	assert.Equal(t, 1240.0, tripfile.ComputeStatistics(a).TotalDistance)
}

func TestComputeStatistics_UnparseableDates(t *testing.T) {
	a := sampleAggregate()
	a.Trip.EndDate = "08/01/2024"

	assert.Equal(t, 0, tripfile.ComputeStatistics(a).TripDurationDays)
}

func TestSumAmounts_Exact(t *testing.T) {
	assert.Equal(t, 0.3, tripfile.SumAmounts([]float64{0.1, 0.2}))
	assert.Equal(t, 0.0, tripfile.SumAmounts(nil))
}
