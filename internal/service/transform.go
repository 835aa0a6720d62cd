package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/andes-trip-manager/backend/internal/auth"
	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/tripfile"
)

// Transform turns a collected aggregate into its file form. Statistics are
// computed on ISO dates, before any locale formatting. It is pure apart from
// the owner and now inputs.
func Transform(raw RawAggregate, opts tripfile.ExportOptions, owner auth.User, now time.Time, loc tripfile.Locale) tripfile.Aggregate {
	agg := tripfile.Aggregate{
		Trip:               tripRecord(raw),
		Days:               mapAll(raw.Days, dayRecord),
		Stops:              mapAll(raw.Stops, stopRecord),
		Lodgings:           mapAll(raw.Lodgings, lodgingRecord),
		Costs:              mapAll(raw.Costs, costRecord),
		MaintenanceRecords: mapAll(raw.MaintenanceRecords, maintenanceRecord),
		Weather:            mapAll(raw.Weather, weatherRecord),
		DiaryEntries:       mapAll(raw.DiaryEntries, diaryRecord),
	}

	stats := tripfile.ComputeStatistics(agg)
	agg.Statistics = &stats

	if opts.DateFormat == tripfile.DateFormatLocal {
		agg.Trip.StartDate = tripfile.FormatLocalDate(agg.Trip.StartDate, loc)
		agg.Trip.EndDate = tripfile.FormatLocalDate(agg.Trip.EndDate, loc)
		for i := range agg.Days {
			agg.Days[i].Date = tripfile.FormatLocalDate(agg.Days[i].Date, loc)
		}
	}
	if !opts.IncludePhotos {
		agg.StripPhotos()
	}
	if opts.IncludeMetadata {
		agg.Metadata = &tripfile.Metadata{
			SchemaVersion: tripfile.SchemaVersion,
			ExportedAt:    tripfile.FormatTimestamp(now),
			OwnerUserID:   owner.ID,
			OwnerName:     owner.Name,
			AppName:       tripfile.AppName,
		}
	}
	return agg
}

func mapAll[S, D any](in []S, f func(S) D) []D {
	out := make([]D, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

func tripRecord(raw RawAggregate) tripfile.TripRecord {
	t := raw.Trip
	return tripfile.TripRecord{
		ID:            t.ID.String(),
		Name:          t.Name,
		Description:   t.Description,
		StartDate:     tripfile.FormatDate(t.StartDate),
		EndDate:       tripfile.FormatDate(t.EndDate),
		Status:        t.Status,
		Origin:        t.Origin,
		Destination:   t.Destination,
		TotalDistance: t.TotalDistance,
		TotalCost:     t.TotalCost,
		NumberOfDays:  t.NumberOfDays,
		Photos:        t.Photos,
		Notes:         t.Notes,
	}
}

func dayRecord(d domain.Day) tripfile.DayRecord {
	return tripfile.DayRecord{
		ID:              d.ID.String(),
		TripID:          d.TripID.String(),
		DayNumber:       d.DayNumber,
		Date:            tripfile.FormatDate(d.Date),
		Title:           d.Title,
		Description:     d.Description,
		PlannedDistance: d.PlannedDistance,
		Notes:           d.Notes,
	}
}

func stopRecord(s domain.Stop) tripfile.StopRecord {
	return tripfile.StopRecord{
		ID:            s.ID.String(),
		TripID:        s.TripID.String(),
		DayID:         optID(s.DayID),
		Name:          s.Name,
		Type:          s.Type,
		Address:       s.Address,
		Latitude:      s.Latitude,
		Longitude:     s.Longitude,
		Order:         s.Order,
		ArrivalTime:   optTime(s.ArrivalTime),
		DepartureTime: optTime(s.DepartureTime),
		Photos:        s.Photos,
		Notes:         s.Notes,
	}
}

func lodgingRecord(l domain.Lodging) tripfile.LodgingRecord {
	return tripfile.LodgingRecord{
		ID:       l.ID.String(),
		TripID:   l.TripID.String(),
		DayID:    optID(l.DayID),
		Name:     l.Name,
		Type:     l.Type,
		Address:  l.Address,
		CheckIn:  optTime(l.CheckIn),
		CheckOut: optTime(l.CheckOut),
		Price:    l.Price,
		Photos:   l.Photos,
		Notes:    l.Notes,
	}
}

func costRecord(c domain.Cost) tripfile.CostRecord {
	return tripfile.CostRecord{
		ID:            c.ID.String(),
		TripID:        c.TripID.String(),
		DayID:         optID(c.DayID),
		Category:      c.Category,
		Description:   c.Description,
		Amount:        c.Amount,
		Currency:      c.Currency,
		Date:          optTime(c.Date),
		PaymentMethod: c.PaymentMethod,
		Notes:         c.Notes,
	}
}

func maintenanceRecord(m domain.MaintenanceRecord) tripfile.MaintenanceRecord {
	return tripfile.MaintenanceRecord{
		ID:          m.ID.String(),
		TripID:      m.TripID.String(),
		Type:        m.Type,
		Description: m.Description,
		Date:        optTime(m.Date),
		Odometer:    m.Odometer,
		Cost:        m.Cost,
		Location:    m.Location,
		Notes:       m.Notes,
	}
}

func weatherRecord(w domain.WeatherSnapshot) tripfile.WeatherRecord {
	return tripfile.WeatherRecord{
		ID:           w.ID.String(),
		TripID:       w.TripID.String(),
		DayID:        optID(w.DayID),
		Location:     w.Location,
		Date:         optTime(w.Date),
		TemperatureC: w.TemperatureC,
		Condition:    w.Condition,
		Humidity:     w.Humidity,
		WindSpeedKmh: w.WindSpeedKmh,
	}
}

func diaryRecord(e domain.DiaryEntry) tripfile.DiaryRecord {
	return tripfile.DiaryRecord{
		ID:       e.ID.String(),
		TripID:   e.TripID.String(),
		DayID:    optID(e.DayID),
		Date:     optTime(e.Date),
		Title:    e.Title,
		Content:  e.Content,
		Mood:     e.Mood,
		Location: e.Location,
		Photos:   e.Photos,
	}
}

func optID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func optTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return tripfile.FormatTimestamp(*t)
}
