package tripfile_test

import "github.com/andes-trip-manager/backend/internal/tripfile"

func ptr[T any](v T) *T { return &v }

// sampleAggregate is a one-week trip with two days and two costs.
func sampleAggregate() tripfile.Aggregate {
	return tripfile.Aggregate{
		Metadata: &tripfile.Metadata{
			SchemaVersion: tripfile.SchemaVersion,
			ExportedAt:    "2024-02-01T10:00:00Z",
			OwnerUserID:   "user-1",
			AppName:       tripfile.AppName,
		},
		Trip: tripfile.TripRecord{
			ID:          "trip-1",
			Name:        "Carretera Austral",
			StartDate:   "2024-01-01",
			EndDate:     "2024-01-08",
			Status:      "finalizada",
			Origin:      "Puerto Montt",
			Destination: "Villa O'Higgins",
			Photos:      []string{"https://example.com/cover.jpg"},
		},
		Days: []tripfile.DayRecord{
			{ID: "d1", TripID: "trip-1", DayNumber: 1, Date: "2024-01-01", Title: "Start", PlannedDistance: ptr(120.0)},
			{ID: "d2", TripID: "trip-1", DayNumber: 2, Date: "2024-01-02", Title: "Ferry", PlannedDistance: ptr(80.0)},
		},
		Stops: []tripfile.StopRecord{
			{ID: "s1", TripID: "trip-1", DayID: "d1", Name: "Hornopirén", Type: "ferry", Order: 1, Photos: []string{"p.jpg"}},
		},
		Lodgings: []tripfile.LodgingRecord{},
		Costs: []tripfile.CostRecord{
			{ID: "c1", TripID: "trip-1", DayID: "d1", Category: "fuel", Description: "Diesel", Amount: 100, Currency: "CLP"},
			{ID: "c2", TripID: "trip-1", DayID: "d2", Category: "ferry", Description: "Crossing", Amount: 250.5, Currency: "CLP"},
		},
		MaintenanceRecords: []tripfile.MaintenanceRecord{},
		Weather:            []tripfile.WeatherRecord{},
		DiaryEntries:       []tripfile.DiaryRecord{},
	}
}
