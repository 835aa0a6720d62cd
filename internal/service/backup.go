package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andes-trip-manager/backend/internal/tripfile"
)

// Backup saves a copy of the caller's trips and returns where it went. An
// empty path with a nil error means there was nothing to save.
type Backup interface {
	Create(ctx context.Context) (string, error)
}

// allExporter is the part of ExportService a backup needs.
type allExporter interface {
	ExportAll(ctx context.Context, opts tripfile.ExportOptions) ([]tripfile.Aggregate, error)
}

// FileBackup writes every trip of the caller, fully exported, into one trip
// file under dir. A backup is always a multi-trip file, even for one trip, so
// it can be restored as is.
type FileBackup struct {
	dir      string
	exporter allExporter
	now      func() time.Time
}

func NewFileBackup(dir string, exporter allExporter) *FileBackup {
	return &FileBackup{dir: dir, exporter: exporter, now: time.Now}
}

// Create writes the backup atomically: a temp file in dir renamed into place.
// A caller without trips gets no file, since an empty trip file cannot be
// restored.
func (b *FileBackup) Create(ctx context.Context) (string, error) {
	timer := prometheus.NewTimer(pipelineDuration.WithLabelValues("backup"))
	defer timer.ObserveDuration()

	aggs, err := b.exporter.ExportAll(ctx, tripfile.DefaultExportOptions())
	if err != nil {
		return "", fmt.Errorf("service.FileBackup.Create: export: %w", err)
	}
	if len(aggs) == 0 {
		return "", nil
	}
	data, err := tripfile.Marshal(aggs)
	if err != nil {
		return "", fmt.Errorf("service.FileBackup.Create: %w", err)
	}

	id, err := gonanoid.New(12)
	if err != nil {
		return "", fmt.Errorf("service.FileBackup.Create: id: %w", err)
	}
	if err := os.MkdirAll(b.dir, 0o750); err != nil {
		return "", fmt.Errorf("service.FileBackup.Create: %w", err)
	}

	tmp, err := os.CreateTemp(b.dir, ".backup-*.tmp")
	if err != nil {
		return "", fmt.Errorf("service.FileBackup.Create: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("service.FileBackup.Create: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("service.FileBackup.Create: close: %w", err)
	}

	path := filepath.Join(b.dir, tripfile.BackupFileName(b.now(), id))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("service.FileBackup.Create: %w", err)
	}
	return path, nil
}
