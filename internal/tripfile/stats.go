package tripfile

import (
	"github.com/shopspring/decimal"

	"github.com/andes-trip-manager/backend/internal/domain"
)

// Statistics are derived from an aggregate and never edited by hand.
type Statistics struct {
	TotalDays               int     `json:"totalDays"`
	TotalStops              int     `json:"totalStops"`
	TotalLodgings           int     `json:"totalLodgings"`
	TotalCosts              int     `json:"totalCosts"`
	TotalCostValue          float64 `json:"totalCostValue"`
	TotalMaintenanceRecords int     `json:"totalMaintenanceRecords"`
	TotalDiaryEntries       int     `json:"totalDiaryEntries"`
	TotalDistance           float64 `json:"totalDistance"`
	TripDurationDays        int     `json:"tripDurationDays"`
}

// ComputeStatistics derives the statistics block of a.
// TotalDistance is trip.totalDistance when set, otherwise the sum of the
// days' planned distances. TripDurationDays is 0 when either trip date does
// not parse.
func ComputeStatistics(a Aggregate) Statistics {
	amounts := make([]float64, len(a.Costs))
	for i, c := range a.Costs {
		amounts[i] = c.Amount
	}

	distance := 0.0
	if a.Trip.TotalDistance != nil {
		distance = *a.Trip.TotalDistance
	} else {
		for _, d := range a.Days {
			if d.PlannedDistance != nil {
				distance += *d.PlannedDistance
			}
		}
	}

	return Statistics{
		TotalDays:               len(a.Days),
		TotalStops:              len(a.Stops),
		TotalLodgings:           len(a.Lodgings),
		TotalCosts:              len(a.Costs),
		TotalCostValue:          SumAmounts(amounts),
		TotalMaintenanceRecords: len(a.MaintenanceRecords),
		TotalDiaryEntries:       len(a.DiaryEntries),
		TotalDistance:           distance,
		TripDurationDays:        durationBetween(a.Trip.StartDate, a.Trip.EndDate),
	}
}

// SumAmounts adds money amounts in decimal so 100 + 250.5 is exactly 350.5.
func SumAmounts(amounts []float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.InexactFloat64()
}

func durationBetween(start, end string) int {
	s, ok := ParseDate(start)
	if !ok {
		return 0
	}
	e, ok := ParseDate(end)
	if !ok {
		return 0
	}
	return domain.DurationDays(s, e)
}
