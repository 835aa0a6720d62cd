package tripfile

// DateFormat selects how trip and day dates are written on export.
type DateFormat string

const (
	// DateFormatISO writes dates as YYYY-MM-DD.
	DateFormatISO DateFormat = "iso"
	// DateFormatLocal writes dates with the configured locale's layout.
	DateFormatLocal DateFormat = "local"
)

// ExportOptions selects what goes into an exported file.
// The zero value exports only the trip record; use DefaultExportOptions for
// a full export.
type ExportOptions struct {
	IncludeDays        bool
	IncludeStops       bool
	IncludeLodgings    bool
	IncludeCosts       bool
	IncludeMaintenance bool
	IncludeWeather     bool
	IncludeDiary       bool
	IncludePhotos      bool
	IncludeMetadata    bool
	DateFormat         DateFormat `validate:"omitempty,oneof=iso local"`
}

// DefaultExportOptions includes everything, photos and metadata included,
// with ISO dates.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		IncludeDays:        true,
		IncludeStops:       true,
		IncludeLodgings:    true,
		IncludeCosts:       true,
		IncludeMaintenance: true,
		IncludeWeather:     true,
		IncludeDiary:       true,
		IncludePhotos:      true,
		IncludeMetadata:    true,
		DateFormat:         DateFormatISO,
	}
}

// PartialFailurePolicy decides what happens to an import that wrote the trip
// but failed on some of its records.
type PartialFailurePolicy string

const (
	// PartialFailureKeep leaves the new trip and every record that was written.
	PartialFailureKeep PartialFailurePolicy = "keep"
	// PartialFailureCompensate deletes the new trip, cascading to its records.
	PartialFailureCompensate PartialFailurePolicy = "compensate"
)

// ImportOptions controls which categories are imported and how the import
// treats existing data.
type ImportOptions struct {
	ImportDays        bool
	ImportStops       bool
	ImportLodgings    bool
	ImportCosts       bool
	ImportMaintenance bool
	ImportWeather     bool
	ImportDiary       bool

	// SubstituteExisting deletes the caller's trips that have the same name
	// and start date as the imported trip before creating it.
	SubstituteExisting bool

	// CreateBackupBefore writes a backup file of all the caller's trips
	// before the first write.
	CreateBackupBefore bool

	// OnPartialFailure defaults to PartialFailureKeep when empty.
	OnPartialFailure PartialFailurePolicy `validate:"omitempty,oneof=keep compensate"`
}

// DefaultImportOptions imports every category, keeps existing trips and
// takes a backup first.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		ImportDays:         true,
		ImportStops:        true,
		ImportLodgings:     true,
		ImportCosts:        true,
		ImportMaintenance:  true,
		ImportWeather:      true,
		ImportDiary:        true,
		SubstituteExisting: false,
		CreateBackupBefore: true,
		OnPartialFailure:   PartialFailureKeep,
	}
}

// RestoreOptions returns the options a backup restore always runs with:
// everything imported, existing copies replaced, no backup of the backup.
func RestoreOptions() ImportOptions {
	o := DefaultImportOptions()
	o.SubstituteExisting = true
	o.CreateBackupBefore = false
	return o
}
