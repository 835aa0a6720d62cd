package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/andes-trip-manager/backend/internal/auth"
	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/events"
	"github.com/andes-trip-manager/backend/internal/retry"
	"github.com/andes-trip-manager/backend/internal/tripfile"
	"github.com/andes-trip-manager/backend/internal/validation"
)

// DefaultMaxImportBytes is the largest trip file accepted.
const DefaultMaxImportBytes int64 = 50 << 20

// ImportConfig tunes the importer.
type ImportConfig struct {
	// Concurrency bounds the record writes in flight per category.
	Concurrency int
	// MaxBytes is the largest trip file ImportFile and RestoreBackup accept.
	MaxBytes int64
}

// ImportService writes trip files into the caller's account. Every trip is
// created fresh and every record re-parented to it; nothing in the file is
// trusted as an identifier.
type ImportService struct {
	repos     Repos
	runner    *retry.Runner
	backup    Backup
	publisher events.Publisher
	validate  *validation.Validator
	logger    *slog.Logger
	cfg       ImportConfig
}

// NewImportService wires an ImportService. A nil backup makes
// CreateBackupBefore fail the import; a nil publisher disables events.
func NewImportService(repos Repos, runner *retry.Runner, backup Backup, publisher events.Publisher, logger *slog.Logger, cfg ImportConfig) *ImportService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxImportBytes
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ImportService{
		repos:     repos,
		runner:    runner,
		backup:    backup,
		publisher: publisher,
		validate:  validation.New(),
		logger:    logger,
		cfg:       cfg,
	}
}

// ImportTrip imports one aggregate. It returns an error only when the caller
// is unauthenticated (domain.ErrUnauthenticated), the aggregate is invalid
// (domain.ErrInvalidData) or opts are malformed (domain.ErrValidation); in
// those cases nothing was written. Every failure after that is reported in
// the result.
func (s *ImportService) ImportTrip(ctx context.Context, agg tripfile.Aggregate, opts tripfile.ImportOptions) (tripfile.ImportResult, error) {
	res, err := s.ImportMany(ctx, []tripfile.Aggregate{agg}, opts)
	if err != nil {
		return tripfile.ImportResult{}, err
	}
	res.TripIDs = nil
	return res, nil
}

// ImportMany imports several aggregates concurrently and consolidates the
// per-trip results: counts summed, messages concatenated, success only if
// every trip succeeded. Preconditions are checked for all aggregates before
// anything is written.
func (s *ImportService) ImportMany(ctx context.Context, aggs []tripfile.Aggregate, opts tripfile.ImportOptions) (tripfile.ImportResult, error) {
	timer := prometheus.NewTimer(pipelineDuration.WithLabelValues("import"))
	defer timer.ObserveDuration()

	user, err := auth.RequireUser(ctx)
	if err != nil {
		return tripfile.ImportResult{}, fmt.Errorf("service.ImportService.Import: %w", err)
	}
	if err := s.checkPreconditions(aggs, opts); err != nil {
		importsTotal.WithLabelValues("rejected").Inc()
		return tripfile.ImportResult{}, fmt.Errorf("service.ImportService.Import: %w", err)
	}

	prelude := tripfile.NewImportResult()
	if opts.CreateBackupBefore && !s.takeBackup(ctx, &prelude) {
		importsTotal.WithLabelValues("failed").Inc()
		return prelude, nil
	}

	// Substitution runs before any trip is created, so two aggregates in one
	// file can never delete each other's freshly imported copy.
	if opts.SubstituteExisting {
		for _, agg := range aggs {
			if !s.substitute(ctx, user, agg.Trip, &prelude) {
				importsTotal.WithLabelValues("failed").Inc()
				return prelude, nil
			}
		}
	}

	parts := make([]tripfile.ImportResult, len(aggs))
	var g errgroup.Group
	for i, agg := range aggs {
		g.Go(func() error {
			parts[i] = s.importOne(ctx, user, agg, opts)
			return nil
		})
	}
	_ = g.Wait()

	res := tripfile.Consolidate(parts)
	res.Warnings = append(prelude.Warnings, res.Warnings...)

	s.logger.InfoContext(ctx, "import finished",
		"trips", len(aggs), "success", res.Success, "records", res.RecordsImported(), "errors", len(res.Errors))
	s.publish(ctx, user, res)
	return res, nil
}

// ImportFile validates and imports raw trip file bytes, dispatching on
// whether the file holds one trip or several. The validation result is
// returned alongside so callers can report why a file was rejected.
func (s *ImportService) ImportFile(ctx context.Context, data []byte, opts tripfile.ImportOptions) (tripfile.ImportResult, tripfile.ValidationResult, error) {
	if _, err := auth.RequireUser(ctx); err != nil {
		return tripfile.ImportResult{}, tripfile.ValidationResult{}, fmt.Errorf("service.ImportService.ImportFile: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxBytes {
		return tripfile.ImportResult{}, tripfile.ValidationResult{}, fmt.Errorf("service.ImportService.ImportFile: %w: file exceeds %d bytes",
			domain.ErrInvalidData, s.cfg.MaxBytes)
	}
	vr := tripfile.ValidateJSON(data)
	if !vr.Valid {
		return tripfile.ImportResult{}, vr, fmt.Errorf("service.ImportService.ImportFile: %w: %s",
			domain.ErrInvalidData, strings.Join(vr.Errors, "; "))
	}
	aggs, multi, err := tripfile.Decode(data)
	if err != nil {
		return tripfile.ImportResult{}, vr, fmt.Errorf("service.ImportService.ImportFile: %w: %v", domain.ErrInvalidData, err)
	}

	var res tripfile.ImportResult
	if multi && len(aggs) > 1 {
		res, err = s.ImportMany(ctx, aggs, opts)
	} else {
		res, err = s.ImportTrip(ctx, aggs[0], opts)
	}
	if err != nil {
		return tripfile.ImportResult{}, vr, err
	}
	res.Warnings = append(vr.Warnings, res.Warnings...)
	return res, vr, nil
}

// RestoreBackup imports a backup file read from r, replacing the caller's
// existing copies of the trips it holds. No backup is taken first.
func (s *ImportService) RestoreBackup(ctx context.Context, r io.Reader) (tripfile.ImportResult, error) {
	if _, err := auth.RequireUser(ctx); err != nil {
		return tripfile.ImportResult{}, fmt.Errorf("service.ImportService.RestoreBackup: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxBytes+1))
	if err != nil {
		return tripfile.ImportResult{}, fmt.Errorf("service.ImportService.RestoreBackup: %w: %v", domain.ErrInvalidData, err)
	}
	if int64(len(data)) > s.cfg.MaxBytes {
		return tripfile.ImportResult{}, fmt.Errorf("service.ImportService.RestoreBackup: %w: file exceeds %d bytes",
			domain.ErrInvalidData, s.cfg.MaxBytes)
	}

	res, _, err := s.ImportFile(ctx, data, tripfile.RestoreOptions())
	if err != nil {
		return tripfile.ImportResult{}, fmt.Errorf("service.ImportService.RestoreBackup: %w", err)
	}
	return res, nil
}

func (s *ImportService) checkPreconditions(aggs []tripfile.Aggregate, opts tripfile.ImportOptions) error {
	if err := s.validate.Validate(opts); err != nil {
		return err
	}
	if len(aggs) == 0 {
		return fmt.Errorf("%w: file contains no trips", domain.ErrInvalidData)
	}
	var problems []string
	for i, agg := range aggs {
		vr := tripfile.ValidateAggregate(agg)
		if vr.Valid {
			continue
		}
		prefix := ""
		if len(aggs) > 1 {
			prefix = fmt.Sprintf("trip %d: ", i+1)
		}
		for _, e := range vr.Errors {
			problems = append(problems, prefix+e)
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidData, strings.Join(problems, "; "))
	}
	return nil
}

// takeBackup reports false, with the failure recorded in res, when the backup
// could not be written. Nothing has been written at that point.
func (s *ImportService) takeBackup(ctx context.Context, res *tripfile.ImportResult) bool {
	if s.backup == nil {
		res.Fail("backup requested but no backup location is configured; nothing was imported")
		return false
	}
	path, err := s.backup.Create(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "backup before import failed", "error", err)
		res.Fail(fmt.Sprintf("backup failed, nothing was imported: %s", s.describe(err)))
		return false
	}
	if path == "" {
		res.Warn("no existing trips to back up; no backup file was written")
		return true
	}
	res.Warn("backup saved as " + filepath.Base(path))
	return true
}

// substitute deletes the caller's trips with the same name and start date as
// rec. It reports false, with the failure recorded in res, on any error.
func (s *ImportService) substitute(ctx context.Context, user auth.User, rec tripfile.TripRecord, res *tripfile.ImportResult) bool {
	start, _ := tripfile.ParseDate(rec.StartDate)
	name := strings.TrimSpace(rec.Name)

	existing, err := retry.Run(ctx, s.runner, "find existing trip", func(ctx context.Context) ([]domain.Trip, error) {
		return s.repos.Trips.FindByNameAndStart(ctx, user.ID, name, start)
	})
	if err != nil {
		res.Fail(fmt.Sprintf("could not look up existing trip %q: %s", name, s.describe(err)))
		return false
	}
	for _, t := range existing {
		err := retry.Do(ctx, s.runner, "replace existing trip", func(ctx context.Context) error {
			return s.repos.Trips.Delete(ctx, t.ID)
		})
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			res.Fail(fmt.Sprintf("could not replace existing trip %q (%s): %s", name, t.ID, s.describe(err)))
			return false
		}
		res.Warn(fmt.Sprintf("existing trip %q (%s) was replaced", name, t.ID))
	}
	return true
}

// importOne creates the trip, then its days, then the other six categories
// concurrently. Day keys in the file are remapped to the new day ids; keys
// that do not resolve are dropped.
func (s *ImportService) importOne(ctx context.Context, user auth.User, agg tripfile.Aggregate, opts tripfile.ImportOptions) tripfile.ImportResult {
	res := tripfile.NewImportResult()

	trip := tripFromRecord(agg.Trip, user.ID)
	created, err := retry.Run(ctx, s.runner, "import trip", func(ctx context.Context) (domain.Trip, error) {
		return s.repos.Trips.Create(ctx, trip)
	})
	if err != nil {
		res.Fail(fmt.Sprintf("trip %q could not be created: %s", trip.Name, s.describe(err)))
		importsTotal.WithLabelValues("failed").Inc()
		return res
	}
	tripID := created.ID
	res.TripID = tripID.String()

	dayIDs := make(map[string]uuid.UUID)
	if opts.ImportDays {
		out := importCategory(ctx, s, "day", agg.Days, func(ctx context.Context, r tripfile.DayRecord) (uuid.UUID, error) {
			d, err := dayFromRecord(r, tripID)
			if err != nil {
				return uuid.Nil, err
			}
			created, err := s.repos.Days.Create(ctx, d)
			return created.ID, err
		})
		for i, id := range out.ids {
			if id != uuid.Nil && agg.Days[i].ID != "" {
				dayIDs[agg.Days[i].ID] = id
			}
		}
		res.DaysImported = out.imported
		res.Errors = append(res.Errors, out.errors...)
	}
	day := func(fileID string) *uuid.UUID {
		if id, ok := dayIDs[fileID]; ok {
			return &id
		}
		return nil
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	run := func(enabled bool, dst *int, f func() categoryOutcome) {
		if !enabled {
			return
		}
		g.Go(func() error {
			out := f()
			mu.Lock()
			defer mu.Unlock()
			*dst = out.imported
			res.Errors = append(res.Errors, out.errors...)
			return nil
		})
	}

	run(opts.ImportStops, &res.StopsImported, func() categoryOutcome {
		return importCategory(ctx, s, "stop", agg.Stops, func(ctx context.Context, r tripfile.StopRecord) (uuid.UUID, error) {
			created, err := s.repos.Stops.Create(ctx, stopFromRecord(r, tripID, day(r.DayID)))
			return created.ID, err
		})
	})
	run(opts.ImportLodgings, &res.LodgingsImported, func() categoryOutcome {
		return importCategory(ctx, s, "lodging", agg.Lodgings, func(ctx context.Context, r tripfile.LodgingRecord) (uuid.UUID, error) {
			created, err := s.repos.Lodgings.Create(ctx, lodgingFromRecord(r, tripID, day(r.DayID)))
			return created.ID, err
		})
	})
	run(opts.ImportCosts, &res.CostsImported, func() categoryOutcome {
		return importCategory(ctx, s, "cost", agg.Costs, func(ctx context.Context, r tripfile.CostRecord) (uuid.UUID, error) {
			created, err := s.repos.Costs.Create(ctx, costFromRecord(r, tripID, day(r.DayID)))
			return created.ID, err
		})
	})
	run(opts.ImportMaintenance, &res.MaintenanceImported, func() categoryOutcome {
		return importCategory(ctx, s, "maintenance record", agg.MaintenanceRecords, func(ctx context.Context, r tripfile.MaintenanceRecord) (uuid.UUID, error) {
			created, err := s.repos.Maintenance.Create(ctx, maintenanceFromRecord(r, tripID))
			return created.ID, err
		})
	})
	run(opts.ImportWeather, &res.WeatherImported, func() categoryOutcome {
		return importCategory(ctx, s, "weather snapshot", agg.Weather, func(ctx context.Context, r tripfile.WeatherRecord) (uuid.UUID, error) {
			created, err := s.repos.Weather.Create(ctx, weatherFromRecord(r, tripID, day(r.DayID)))
			return created.ID, err
		})
	})
	run(opts.ImportDiary, &res.DiaryEntriesImported, func() categoryOutcome {
		return importCategory(ctx, s, "diary entry", agg.DiaryEntries, func(ctx context.Context, r tripfile.DiaryRecord) (uuid.UUID, error) {
			created, err := s.repos.Diary.Create(ctx, diaryFromRecord(r, tripID, day(r.DayID)))
			return created.ID, err
		})
	})
	_ = g.Wait()

	s.warnUnresolvedDays(&res, agg, opts, dayIDs)

	if len(res.Errors) == 0 {
		importsTotal.WithLabelValues("success").Inc()
		return res
	}
	res.Success = false
	s.resolvePartialFailure(ctx, &res, tripID, opts.OnPartialFailure)
	return res
}

// resolvePartialFailure applies the partial failure policy to a trip that was
// created but is missing some of its records.
func (s *ImportService) resolvePartialFailure(ctx context.Context, res *tripfile.ImportResult, tripID uuid.UUID, policy tripfile.PartialFailurePolicy) {
	if policy != tripfile.PartialFailureCompensate {
		res.Warn(fmt.Sprintf("trip %s was kept with %d record(s) imported; the failed records were not written", tripID, res.RecordsImported()))
		importsTotal.WithLabelValues("partial").Inc()
		return
	}

	err := retry.Do(ctx, s.runner, "compensate import", func(ctx context.Context) error {
		return s.repos.Trips.Delete(ctx, tripID)
	})
	if err != nil {
		res.Fail(fmt.Sprintf("rollback of trip %s failed, it was kept with %d record(s): %s", tripID, res.RecordsImported(), s.describe(err)))
		importsTotal.WithLabelValues("partial").Inc()
		return
	}
	res.Warn(fmt.Sprintf("import rolled back: trip %s and its %d record(s) were deleted", tripID, res.RecordsImported()))
	*res = rolledBack(*res)
	importsTotal.WithLabelValues("rolled_back").Inc()
}

// rolledBack clears everything in res that no longer exists.
func rolledBack(res tripfile.ImportResult) tripfile.ImportResult {
	return tripfile.ImportResult{
		Success:  false,
		Errors:   res.Errors,
		Warnings: res.Warnings,
	}
}

func (s *ImportService) warnUnresolvedDays(res *tripfile.ImportResult, agg tripfile.Aggregate, opts tripfile.ImportOptions, dayIDs map[string]uuid.UUID) {
	count := func(enabled bool, keys []string, noun string) {
		if !enabled {
			return
		}
		n := 0
		for _, k := range keys {
			if _, ok := dayIDs[k]; k != "" && !ok {
				n++
			}
		}
		if n > 0 {
			res.Warn(fmt.Sprintf("%d %s record(s) referenced a day that was not imported and were saved without one", n, noun))
		}
	}
	count(opts.ImportStops, mapAll(agg.Stops, func(r tripfile.StopRecord) string { return r.DayID }), "stop")
	count(opts.ImportLodgings, mapAll(agg.Lodgings, func(r tripfile.LodgingRecord) string { return r.DayID }), "lodging")
	count(opts.ImportCosts, mapAll(agg.Costs, func(r tripfile.CostRecord) string { return r.DayID }), "cost")
	count(opts.ImportWeather, mapAll(agg.Weather, func(r tripfile.WeatherRecord) string { return r.DayID }), "weather snapshot")
	count(opts.ImportDiary, mapAll(agg.DiaryEntries, func(r tripfile.DiaryRecord) string { return r.DayID }), "diary entry")
}

// describe renders err for a result message: the user-facing text of its
// classification followed by the technical detail.
func (s *ImportService) describe(err error) string {
	c := s.runner.Classify(err)
	return fmt.Sprintf("%s (%v)", c.UserMessage, err)
}

func (s *ImportService) publish(ctx context.Context, user auth.User, res tripfile.ImportResult) {
	err := s.publisher.Publish(ctx, events.TripEvent{
		Type:    events.TypeTripImported,
		OwnerID: user.ID,
		TripIDs: res.TripIDs,
		Success: res.Success,
		Records: res.RecordsImported(),
		Errors:  len(res.Errors),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "publish import event", "error", err)
	}
}

// categoryOutcome is the all-settled result of one category: ids[i] is the
// new id of items[i], or uuid.Nil when that write failed.
type categoryOutcome struct {
	ids      []uuid.UUID
	imported int
	errors   []string
}

// importCategory writes every item concurrently, bounded by the configured
// concurrency. A failed write never stops the others; each outcome is kept.
func importCategory[T any](ctx context.Context, s *ImportService, noun string, items []T, write func(context.Context, T) (uuid.UUID, error)) categoryOutcome {
	ids := make([]uuid.UUID, len(items))
	errs := make([]error, len(items))

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i, item := range items {
		g.Go(func() error {
			ids[i], errs[i] = retry.Run(ctx, s.runner, "import "+noun, func(ctx context.Context) (uuid.UUID, error) {
				return write(ctx, item)
			})
			return nil
		})
	}
	_ = g.Wait()

	out := categoryOutcome{ids: ids}
	for i, err := range errs {
		if err != nil {
			ids[i] = uuid.Nil
			out.errors = append(out.errors, fmt.Sprintf("%s %d: %s", noun, i+1, s.describe(err)))
			continue
		}
		out.imported++
	}
	importedRecordsTotal.WithLabelValues(noun, "ok").Add(float64(out.imported))
	importedRecordsTotal.WithLabelValues(noun, "error").Add(float64(len(out.errors)))
	return out
}

func tripFromRecord(r tripfile.TripRecord, ownerID string) domain.Trip {
	start, _ := tripfile.ParseCalendarDate(r.StartDate)
	end, _ := tripfile.ParseCalendarDate(r.EndDate)
	status := r.Status
	if status == "" {
		status = domain.TripStatusPlanned
	}
	return domain.Trip{
		OwnerID:       ownerID,
		Name:          strings.TrimSpace(r.Name),
		Description:   r.Description,
		StartDate:     start,
		EndDate:       end,
		Status:        status,
		Origin:        r.Origin,
		Destination:   r.Destination,
		TotalDistance: r.TotalDistance,
		TotalCost:     r.TotalCost,
		NumberOfDays:  r.NumberOfDays,
		Photos:        r.Photos,
		Notes:         r.Notes,
	}
}

func dayFromRecord(r tripfile.DayRecord, tripID uuid.UUID) (domain.Day, error) {
	date, ok := tripfile.ParseCalendarDate(r.Date)
	if !ok {
		return domain.Day{}, fmt.Errorf("%w: date %q is not a valid date", domain.ErrValidation, r.Date)
	}
	return domain.Day{
		TripID:          tripID,
		DayNumber:       r.DayNumber,
		Date:            date,
		Title:           r.Title,
		Description:     r.Description,
		PlannedDistance: r.PlannedDistance,
		Notes:           r.Notes,
	}, nil
}

func stopFromRecord(r tripfile.StopRecord, tripID uuid.UUID, dayID *uuid.UUID) domain.Stop {
	return domain.Stop{
		TripID:        tripID,
		DayID:         dayID,
		Name:          r.Name,
		Type:          r.Type,
		Address:       r.Address,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		Order:         r.Order,
		ArrivalTime:   parseOptTime(r.ArrivalTime),
		DepartureTime: parseOptTime(r.DepartureTime),
		Photos:        r.Photos,
		Notes:         r.Notes,
	}
}

func lodgingFromRecord(r tripfile.LodgingRecord, tripID uuid.UUID, dayID *uuid.UUID) domain.Lodging {
	return domain.Lodging{
		TripID:   tripID,
		DayID:    dayID,
		Name:     r.Name,
		Type:     r.Type,
		Address:  r.Address,
		CheckIn:  parseOptTime(r.CheckIn),
		CheckOut: parseOptTime(r.CheckOut),
		Price:    r.Price,
		Photos:   r.Photos,
		Notes:    r.Notes,
	}
}

func costFromRecord(r tripfile.CostRecord, tripID uuid.UUID, dayID *uuid.UUID) domain.Cost {
	return domain.Cost{
		TripID:        tripID,
		DayID:         dayID,
		Category:      r.Category,
		Description:   r.Description,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Date:          parseOptTime(r.Date),
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}
}

func maintenanceFromRecord(r tripfile.MaintenanceRecord, tripID uuid.UUID) domain.MaintenanceRecord {
	return domain.MaintenanceRecord{
		TripID:      tripID,
		Type:        r.Type,
		Description: r.Description,
		Date:        parseOptTime(r.Date),
		Odometer:    r.Odometer,
		Cost:        r.Cost,
		Location:    r.Location,
		Notes:       r.Notes,
	}
}

func weatherFromRecord(r tripfile.WeatherRecord, tripID uuid.UUID, dayID *uuid.UUID) domain.WeatherSnapshot {
	return domain.WeatherSnapshot{
		TripID:       tripID,
		DayID:        dayID,
		Location:     r.Location,
		Date:         parseOptTime(r.Date),
		TemperatureC: r.TemperatureC,
		Condition:    r.Condition,
		Humidity:     r.Humidity,
		WindSpeedKmh: r.WindSpeedKmh,
	}
}

func diaryFromRecord(r tripfile.DiaryRecord, tripID uuid.UUID, dayID *uuid.UUID) domain.DiaryEntry {
	return domain.DiaryEntry{
		TripID:   tripID,
		DayID:    dayID,
		Date:     parseOptTime(r.Date),
		Title:    r.Title,
		Content:  r.Content,
		Mood:     r.Mood,
		Location: r.Location,
		Photos:   r.Photos,
	}
}

// parseOptTime returns nil for empty or unparseable strings.
func parseOptTime(s string) *time.Time {
	t, ok := tripfile.ParseDate(s)
	if !ok {
		return nil
	}
	return &t
}
