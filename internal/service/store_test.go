package service_test

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andes-trip-manager/backend/internal/auth"
	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/repo"
	"github.com/andes-trip-manager/backend/internal/retry"
	"github.com/andes-trip-manager/backend/internal/service"
)

// memStore is an in-memory implementation of every repository, with
// cascading trip deletes and per-category failure injection.
type memStore struct {
	mu          sync.Mutex
	trips       map[uuid.UUID]domain.Trip
	days        []domain.Day
	stops       []domain.Stop
	lodgings    []domain.Lodging
	costs       []domain.Cost
	maintenance []domain.MaintenanceRecord
	weather     []domain.WeatherSnapshot
	diary       []domain.DiaryEntry

	// failCreate, keyed by category, is consulted before every insert.
	failCreate map[string]func(rec any) error
	// failList, keyed by category, is consulted before every list.
	failList map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		trips:      make(map[uuid.UUID]domain.Trip),
		failCreate: make(map[string]func(any) error),
		failList:   make(map[string]error),
	}
}

func (m *memStore) repos() service.Repos {
	return service.Repos{
		Trips:       memTrips{m},
		Days:        memDays{m},
		Stops:       memStops{m},
		Lodgings:    memLodgings{m},
		Costs:       memCosts{m},
		Maintenance: memMaintenance{m},
		Weather:     memWeather{m},
		Diary:       memDiary{m},
	}
}

func (m *memStore) checkCreate(category string, rec any) error {
	if f := m.failCreate[category]; f != nil {
		return f(rec)
	}
	return nil
}

func (m *memStore) tripCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trips)
}

func byTrip[T any](items []T, tripID uuid.UUID, key func(T) uuid.UUID) []T {
	out := []T{}
	for _, it := range items {
		if key(it) == tripID {
			out = append(out, it)
		}
	}
	return out
}

type memTrips struct{ m *memStore }

func (r memTrips) Create(_ context.Context, t domain.Trip) (domain.Trip, error) {
	if err := r.m.checkCreate("trip", t); err != nil {
		return domain.Trip{}, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt, t.UpdatedAt = time.Now(), time.Now()
	if t.Photos == nil {
		t.Photos = []string{}
	}
	r.m.trips[t.ID] = t
	return t, nil
}

func (r memTrips) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	return t, nil
}

func (r memTrips) ListByOwner(_ context.Context, owner string) ([]domain.Trip, error) {
	if err := r.m.failList["trip"]; err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.Trip{}
	for _, t := range r.m.trips {
		if t.OwnerID == owner {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b domain.Trip) int { return b.StartDate.Compare(a.StartDate) })
	return out, nil
}

func (r memTrips) ListPaged(ctx context.Context, owner string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	all, err := r.ListByOwner(ctx, owner)
	if err != nil {
		return nil, 0, err
	}
	lo := min(p.Offset(), len(all))
	hi := min(lo+p.Limit, len(all))
	return all[lo:hi], int64(len(all)), nil
}

func (r memTrips) FindByNameAndStart(ctx context.Context, owner, name string, start time.Time) ([]domain.Trip, error) {
	all, err := r.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := []domain.Trip{}
	for _, t := range all {
		if t.Name == name && t.StartDate.Equal(start) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r memTrips) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.trips[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.m.trips, id)
	keep := func(tripID uuid.UUID) bool { return tripID != id }
	r.m.days = slices.DeleteFunc(r.m.days, func(d domain.Day) bool { return !keep(d.TripID) })
	r.m.stops = slices.DeleteFunc(r.m.stops, func(s domain.Stop) bool { return !keep(s.TripID) })
	r.m.lodgings = slices.DeleteFunc(r.m.lodgings, func(l domain.Lodging) bool { return !keep(l.TripID) })
	r.m.costs = slices.DeleteFunc(r.m.costs, func(c domain.Cost) bool { return !keep(c.TripID) })
	r.m.maintenance = slices.DeleteFunc(r.m.maintenance, func(x domain.MaintenanceRecord) bool { return !keep(x.TripID) })
	r.m.weather = slices.DeleteFunc(r.m.weather, func(w domain.WeatherSnapshot) bool { return !keep(w.TripID) })
	r.m.diary = slices.DeleteFunc(r.m.diary, func(e domain.DiaryEntry) bool { return !keep(e.TripID) })
	return nil
}

type memDays struct{ m *memStore }

func (r memDays) Create(_ context.Context, d domain.Day) (domain.Day, error) {
	if err := r.m.checkCreate("day", d); err != nil {
		return domain.Day{}, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d.ID = uuid.New()
	r.m.days = append(r.m.days, d)
	return d, nil
}

func (r memDays) ListByTrip(_ context.Context, id uuid.UUID) ([]domain.Day, error) {
	if err := r.m.failList["day"]; err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := byTrip(r.m.days, id, func(d domain.Day) uuid.UUID { return d.TripID })
	slices.SortFunc(out, func(a, b domain.Day) int { return a.DayNumber - b.DayNumber })
	return out, nil
}

type memStops struct{ m *memStore }

func (r memStops) Create(_ context.Context, s domain.Stop) (domain.Stop, error) {
	if err := r.m.checkCreate("stop", s); err != nil {
		return domain.Stop{}, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s.ID = uuid.New()
	r.m.stops = append(r.m.stops, s)
	return s, nil
}

func (r memStops) ListByTrip(_ context.Context, id uuid.UUID) ([]domain.Stop, error) {
	if err := r.m.failList["stop"]; err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := byTrip(r.m.stops, id, func(s domain.Stop) uuid.UUID { return s.TripID })
	slices.SortStableFunc(out, func(a, b domain.Stop) int { return a.Order - b.Order })
	return out, nil
}

type memLodgings struct{ m *memStore }

func (r memLodgings) Create(_ context.Context, l domain.Lodging) (domain.Lodging, error) {
	if err := r.m.checkCreate("lodging", l); err != nil {
		return domain.Lodging{}, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	l.ID = uuid.New()
	r.m.lodgings = append(r.m.lodgings, l)
	return l, nil
}

func (r memLodgings) ListByTrip(_ context.Context, id uuid.UUID) ([]domain.Lodging, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return byTrip(r.m.lodgings, id, func(l domain.Lodging) uuid.UUID { return l.TripID }), nil
}

type memCosts struct{ m *memStore }

func (r memCosts) Create(_ context.Context, c domain.Cost) (domain.Cost, error) {
	if err := r.m.checkCreate("cost", c); err != nil {
		return domain.Cost{}, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c.ID = uuid.New()
	r.m.costs = append(r.m.costs, c)
	return c, nil
}

func (r memCosts) ListByTrip(_ context.Context, id uuid.UUID) ([]domain.Cost, error) {
	if err := r.m.failList["cost"]; err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return byTrip(r.m.costs, id, func(c domain.Cost) uuid.UUID { return c.TripID }), nil
}

type memMaintenance struct{ m *memStore }

func (r memMaintenance) Create(_ context.Context, x domain.MaintenanceRecord) (domain.MaintenanceRecord, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	x.ID = uuid.New()
	r.m.maintenance = append(r.m.maintenance, x)
	return x, nil
}

func (r memMaintenance) ListByTrip(_ context.Context, id uuid.UUID) ([]domain.MaintenanceRecord, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return byTrip(r.m.maintenance, id, func(x domain.MaintenanceRecord) uuid.UUID { return x.TripID }), nil
}

type memWeather struct{ m *memStore }

func (r memWeather) Create(_ context.Context, w domain.WeatherSnapshot) (domain.WeatherSnapshot, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	w.ID = uuid.New()
	r.m.weather = append(r.m.weather, w)
	return w, nil
}

func (r memWeather) ListByTrip(_ context.Context, id uuid.UUID) ([]domain.WeatherSnapshot, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return byTrip(r.m.weather, id, func(w domain.WeatherSnapshot) uuid.UUID { return w.TripID }), nil
}

type memDiary struct{ m *memStore }

func (r memDiary) Create(_ context.Context, e domain.DiaryEntry) (domain.DiaryEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e.ID = uuid.New()
	r.m.diary = append(r.m.diary, e)
	return e, nil
}

func (r memDiary) ListByTrip(_ context.Context, id uuid.UUID) ([]domain.DiaryEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return byTrip(r.m.diary, id, func(e domain.DiaryEntry) uuid.UUID { return e.TripID }), nil
}

// compile-time checks: the in-memory store must satisfy every repo interface.
var (
	_ repo.TripRepo        = memTrips{}
	_ repo.DayRepo         = memDays{}
	_ repo.StopRepo        = memStops{}
	_ repo.LodgingRepo     = memLodgings{}
	_ repo.CostRepo        = memCosts{}
	_ repo.MaintenanceRepo = memMaintenance{}
	_ repo.WeatherRepo     = memWeather{}
	_ repo.DiaryRepo       = memDiary{}
)

// ---- helpers ---------------------------------------------------------------

var testUser = auth.User{ID: "user-1", Name: "Ana"}

func userCtx() context.Context {
	return auth.WithUser(context.Background(), testUser)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fastRunner retries quickly so failing-path tests stay fast.
func fastRunner(t *testing.T) *retry.Runner {
	t.Helper()
	r, err := retry.NewRunner(retry.Config{
		MaxAttempts:     3,
		InitialDelay:    time.Millisecond,
		DelayMultiplier: 2,
		MaxDelay:        5 * time.Millisecond,
	}, retry.NewRingLog(100), discardLogger())
	require.NoError(t, err)
	return r
}

func ptr[T any](v T) *T { return &v }

// seedTrip stores a trip owned by owner with 2 days, 3 stops (the third on
// a day that does not exist), 1 cost of 100 and photos everywhere.
func seedTrip(t *testing.T, m *memStore, owner string) domain.Trip {
	t.Helper()
	ctx := context.Background()
	rs := m.repos()

	trip, err := rs.Trips.Create(ctx, domain.Trip{
		OwnerID:     owner,
		Name:        "Atacama",
		StartDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
		Status:      domain.TripStatusFinished,
		Origin:      "Calama",
		Destination: "San Pedro",
		Photos:      []string{"cover.jpg"},
	})
	require.NoError(t, err)

	d1, err := rs.Days.Create(ctx, domain.Day{TripID: trip.ID, DayNumber: 1, Date: trip.StartDate, Title: "Arrival"})
	require.NoError(t, err)
	d2, err := rs.Days.Create(ctx, domain.Day{TripID: trip.ID, DayNumber: 2, Date: trip.StartDate.AddDate(0, 0, 1), Title: "Geysers"})
	require.NoError(t, err)
	ghost := uuid.New()

	for i, dayID := range []*uuid.UUID{&d1.ID, &d2.ID, &ghost} {
		_, err := rs.Stops.Create(ctx, domain.Stop{
			TripID: trip.ID, DayID: dayID, Name: "Stop", Type: "atracao", Order: i + 1,
			Latitude: ptr(-22.9 - float64(i)/10), Longitude: ptr(-68.2),
			Photos: []string{"stop.jpg"},
		})
		require.NoError(t, err)
	}
	_, err = rs.Costs.Create(ctx, domain.Cost{TripID: trip.ID, DayID: &d1.ID, Category: "fuel", Amount: 100.00, Currency: "CLP"})
	require.NoError(t, err)
	return trip
}
