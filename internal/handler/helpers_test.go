package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andes-trip-manager/backend/internal/auth"
	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/handler"
	"github.com/andes-trip-manager/backend/internal/query"
	"github.com/andes-trip-manager/backend/internal/retry"
	"github.com/andes-trip-manager/backend/internal/tripfile"
)

const testSecret = "handler-test-secret"

var testUser = auth.User{ID: "user-1", Name: "Ana"}

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	get    func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	list   func(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Trip], error)
	delete func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripServicer) Get(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.get(ctx, id)
}
func (m *mockTripServicer) List(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Trip], error) {
	return m.list(ctx, p)
}
func (m *mockTripServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockExportServicer struct {
	exportTrip  func(ctx context.Context, id uuid.UUID, opts tripfile.ExportOptions) (tripfile.Aggregate, error)
	exportTrips func(ctx context.Context, ids []uuid.UUID, opts tripfile.ExportOptions) ([]tripfile.Aggregate, error)
	exportAll   func(ctx context.Context, opts tripfile.ExportOptions) ([]tripfile.Aggregate, error)
}

func (m *mockExportServicer) ExportTrip(ctx context.Context, id uuid.UUID, opts tripfile.ExportOptions) (tripfile.Aggregate, error) {
	return m.exportTrip(ctx, id, opts)
}
func (m *mockExportServicer) ExportTrips(ctx context.Context, ids []uuid.UUID, opts tripfile.ExportOptions) ([]tripfile.Aggregate, error) {
	return m.exportTrips(ctx, ids, opts)
}
func (m *mockExportServicer) ExportAll(ctx context.Context, opts tripfile.ExportOptions) ([]tripfile.Aggregate, error) {
	return m.exportAll(ctx, opts)
}
func (m *mockExportServicer) Classify(err error) retry.Classification {
	return retry.NewClassifier().Classify(err)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

type mockImportServicer struct {
	importFile    func(ctx context.Context, data []byte, opts tripfile.ImportOptions) (tripfile.ImportResult, tripfile.ValidationResult, error)
	restoreBackup func(ctx context.Context, r io.Reader) (tripfile.ImportResult, error)
}

func (m *mockImportServicer) ImportFile(ctx context.Context, data []byte, opts tripfile.ImportOptions) (tripfile.ImportResult, tripfile.ValidationResult, error) {
	return m.importFile(ctx, data, opts)
}
func (m *mockImportServicer) RestoreBackup(ctx context.Context, r io.Reader) (tripfile.ImportResult, error) {
	return m.restoreBackup(ctx, r)
}

var _ handler.ImportServicer = (*mockImportServicer)(nil)

type mockQueryServicer struct {
	resources    []query.Resource
	tools        []query.ToolDefinition
	readResource func(ctx context.Context, uri string) (any, error)
	callTool     func(ctx context.Context, name string, args json.RawMessage) (any, error)
}

func (m *mockQueryServicer) Resources() []query.Resource   { return m.resources }
func (m *mockQueryServicer) Tools() []query.ToolDefinition { return m.tools }
func (m *mockQueryServicer) ReadResource(ctx context.Context, uri string) (any, error) {
	return m.readResource(ctx, uri)
}
func (m *mockQueryServicer) CallTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	return m.callTool(ctx, name, args)
}

var _ handler.QueryServicer = (*mockQueryServicer)(nil)

type mockPinger struct{ err error }

func (m mockPinger) Ping(context.Context) error { return m.err }

// ---- helpers ---------------------------------------------------------------

// newRouter wires deps through handler.NewRouter the way main.go does.
func newRouter(deps handler.Deps, cfg handler.RouterConfig) http.Handler {
	if cfg.Verifier == nil {
		cfg.Verifier = auth.NewVerifier(testSecret)
	}
	return handler.NewRouter(handler.NewServer(deps), cfg)
}

func token(t *testing.T) string {
	t.Helper()
	tok, err := auth.NewVerifier(testSecret).Issue(testUser, time.Hour)
	require.NoError(t, err)
	return tok
}

// do sends an authenticated request. body may be nil, a string or a value
// encoded as JSON.
func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(t, method, target, body)
	req.Header.Set("Authorization", "Bearer "+token(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	case []byte:
		r = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	return httptest.NewRequest(method, target, r)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// userFrom asserts the authenticated user reached the service layer.
func userFrom(t *testing.T, ctx context.Context) auth.User {
	t.Helper()
	u, err := auth.RequireUser(ctx)
	require.NoError(t, err)
	return u
}

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:        uuid.New(),
		OwnerID:   testUser.ID,
		Name:      "Carretera Austral",
		StartDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 1, 24, 0, 0, 0, 0, time.UTC),
		Status:    domain.TripStatusPlanned,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}
