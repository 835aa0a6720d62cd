package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/events"
	"github.com/andes-trip-manager/backend/internal/retry"
	"github.com/andes-trip-manager/backend/internal/service"
	"github.com/andes-trip-manager/backend/internal/tripfile"
)

// recordingPublisher keeps every event it is asked to publish.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.TripEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.TripEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

var _ events.Publisher = (*recordingPublisher)(nil)

func newExporter(t *testing.T, store *memStore, pub events.Publisher) *service.ExportService {
	t.Helper()
	runner := fastRunner(t)
	collector := service.NewCollector(store.repos(), runner)
	return service.NewExportService(store.repos().Trips, collector, runner, tripfile.LookupLocale("pt-BR"), pub, discardLogger())
}

// ---- Collector -------------------------------------------------------------

func TestCollector_ExcludedCategoriesAreEmpty(t *testing.T) {
	store := newMemStore()
	trip := seedTrip(t, store, testUser.ID)
	c := service.NewCollector(store.repos(), fastRunner(t))

	raw, err := c.Collect(context.Background(), trip, tripfile.ExportOptions{IncludeDays: true})

	require.NoError(t, err)
	assert.Len(t, raw.Days, 2)
	assert.NotNil(t, raw.Stops)
	assert.Empty(t, raw.Stops)
	assert.NotNil(t, raw.Costs)
	assert.Empty(t, raw.Costs)
	assert.NotNil(t, raw.DiaryEntries)
}

func TestCollector_ReadFailureFailsCollect(t *testing.T) {
	store := newMemStore()
	trip := seedTrip(t, store, testUser.ID)
	store.failList["stop"] = errors.New("connection reset")
	c := service.NewCollector(store.repos(), fastRunner(t))

	_, err := c.Collect(context.Background(), trip, tripfile.DefaultExportOptions())
	assert.ErrorContains(t, err, "connection reset")
}

// ---- Transform -------------------------------------------------------------

func TestTransform_StatisticsBeforeLocalDates(t *testing.T) {
	store := newMemStore()
	trip := seedTrip(t, store, testUser.ID)
	raw, err := service.NewCollector(store.repos(), fastRunner(t)).
		Collect(context.Background(), trip, tripfile.DefaultExportOptions())
	require.NoError(t, err)

	opts := tripfile.DefaultExportOptions()
	opts.DateFormat = tripfile.DateFormatLocal
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	agg := service.Transform(raw, opts, testUser, now, tripfile.LookupLocale("pt-BR"))

	assert.Equal(t, "01/06/2024", agg.Trip.StartDate)
	assert.Equal(t, "08/06/2024", agg.Trip.EndDate)
	assert.Equal(t, "02/06/2024", agg.Days[1].Date)
	require.NotNil(t, agg.Statistics)
	assert.Equal(t, 7, agg.Statistics.TripDurationDays)
	assert.Equal(t, 3, agg.Statistics.TotalStops)
	assert.InDelta(t, 100.0, agg.Statistics.TotalCostValue, 0)
}

func TestTransform_MetadataAndPhotos(t *testing.T) {
	store := newMemStore()
	trip := seedTrip(t, store, testUser.ID)
	raw, err := service.NewCollector(store.repos(), fastRunner(t)).
		Collect(context.Background(), trip, tripfile.DefaultExportOptions())
	require.NoError(t, err)
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	full := service.Transform(raw, tripfile.DefaultExportOptions(), testUser, now, tripfile.Locale{})
	require.NotNil(t, full.Metadata)
	assert.Equal(t, tripfile.SchemaVersion, full.Metadata.SchemaVersion)
	assert.Equal(t, "2024-07-01T12:00:00Z", full.Metadata.ExportedAt)
	assert.Equal(t, testUser.ID, full.Metadata.OwnerUserID)
	assert.Equal(t, []string{"cover.jpg"}, full.Trip.Photos)
	assert.Equal(t, "2024-06-01", full.Trip.StartDate)

	bare := tripfile.DefaultExportOptions()
	bare.IncludePhotos = false
	bare.IncludeMetadata = false
	stripped := service.Transform(raw, bare, testUser, now, tripfile.Locale{})
	assert.Nil(t, stripped.Metadata)
	assert.Nil(t, stripped.Trip.Photos)
	for _, s := range stripped.Stops {
		assert.Nil(t, s.Photos)
	}
}

// ---- ExportService ---------------------------------------------------------

func TestExportService_ExportTrip_WithoutPhotos(t *testing.T) {
	store := newMemStore()
	trip := seedTrip(t, store, testUser.ID)
	pub := &recordingPublisher{}
	svc := newExporter(t, store, pub)

	opts := tripfile.DefaultExportOptions()
	opts.IncludePhotos = false
	agg, err := svc.ExportTrip(userCtx(), trip.ID, opts)
	require.NoError(t, err)

	data, err := tripfile.Marshal(agg)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"photos"`)
	assert.Equal(t, 100.0, agg.Statistics.TotalCostValue)
	assert.Equal(t, 3, agg.Statistics.TotalStops)
	assert.Empty(t, agg.Lodgings)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeTripExported, pub.events[0].Type)
	assert.Equal(t, []string{trip.ID.String()}, pub.events[0].TripIDs)
}

func TestExportService_ExportTrip_Errors(t *testing.T) {
	store := newMemStore()
	theirs := seedTrip(t, store, "user-2")
	svc := newExporter(t, store, nil)

	_, err := svc.ExportTrip(userCtx(), theirs.ID, tripfile.DefaultExportOptions())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.ExportTrip(userCtx(), uuid.New(), tripfile.DefaultExportOptions())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, retry.KindValidation, svc.Classify(err).Kind)

	_, err = svc.ExportTrip(context.Background(), theirs.ID, tripfile.DefaultExportOptions())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	bad := tripfile.DefaultExportOptions()
	bad.DateFormat = "roman"
	_, err = svc.ExportTrip(userCtx(), theirs.ID, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExportService_ExportTrips_KeepsOrder(t *testing.T) {
	store := newMemStore()
	a := seedTrip(t, store, testUser.ID)
	b := seedTrip(t, store, testUser.ID)
	svc := newExporter(t, store, nil)

	aggs, err := svc.ExportTrips(userCtx(), []uuid.UUID{b.ID, a.ID}, tripfile.DefaultExportOptions())
	require.NoError(t, err)
	require.Len(t, aggs, 2)
	assert.Equal(t, b.ID.String(), aggs[0].Trip.ID)
	assert.Equal(t, a.ID.String(), aggs[1].Trip.ID)

	foreign := seedTrip(t, store, "user-2")
	_, err = svc.ExportTrips(userCtx(), []uuid.UUID{a.ID, foreign.ID}, tripfile.DefaultExportOptions())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestExportService_ExportAll_OnlyCallersTrips(t *testing.T) {
	store := newMemStore()
	seedTrip(t, store, testUser.ID)
	seedTrip(t, store, "user-2")
	svc := newExporter(t, store, nil)

	aggs, err := svc.ExportAll(userCtx(), tripfile.DefaultExportOptions())
	require.NoError(t, err)
	require.Len(t, aggs, 1)
	assert.Equal(t, testUser.ID, aggs[0].Metadata.OwnerUserID)
}

// ---- FileBackup ------------------------------------------------------------

func TestFileBackup_WritesMultiTripFile(t *testing.T) {
	store := newMemStore()
	seedTrip(t, store, testUser.ID)
	dir := t.TempDir()
	backup := service.NewFileBackup(dir, newExporter(t, store, nil))

	path, err := backup.Create(userCtx())
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "backup_"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, tripfile.IsMulti(data), "a backup is always an array of trips")
	assert.True(t, tripfile.ValidateJSON(data).Valid)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file may be left behind")
}

func TestFileBackup_NoTripsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	backup := service.NewFileBackup(dir, newExporter(t, newMemStore(), nil))

	path, err := backup.Create(userCtx())

	require.NoError(t, err)
	assert.Empty(t, path)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileBackup_ExportFailure(t *testing.T) {
	backup := service.NewFileBackup(t.TempDir(), newExporter(t, newMemStore(), nil))
	_, err := backup.Create(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
