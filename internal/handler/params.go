package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/tripfile"
)

// pathID binds the {id} path parameter as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid format for parameter id", domain.ErrValidation)
	}
	return id, nil
}

// queryParam binds one optional form-style query parameter into dest, which
// must be a pointer to a pointer field.
func queryParam(q url.Values, name string, explode bool, dest any) error {
	if err := runtime.BindQueryParameter("form", explode, false, name, q, dest); err != nil {
		return fmt.Errorf("%w: invalid format for parameter %s", domain.ErrValidation, name)
	}
	return nil
}

func bindListTripsParams(r *http.Request) (ListTripsParams, error) {
	var p ListTripsParams
	q := r.URL.Query()
	if err := queryParam(q, "page", true, &p.Page); err != nil {
		return p, err
	}
	if err := queryParam(q, "limit", true, &p.Limit); err != nil {
		return p, err
	}
	return p, nil
}

func bindExportParams(r *http.Request) (ExportParams, error) {
	var p ExportParams
	q := r.URL.Query()
	bools := []struct {
		name string
		dest **bool
	}{
		{"include_days", &p.IncludeDays},
		{"include_stops", &p.IncludeStops},
		{"include_lodgings", &p.IncludeLodgings},
		{"include_costs", &p.IncludeCosts},
		{"include_maintenance", &p.IncludeMaintenance},
		{"include_weather", &p.IncludeWeather},
		{"include_diary", &p.IncludeDiary},
		{"include_photos", &p.IncludePhotos},
		{"include_metadata", &p.IncludeMetadata},
	}
	for _, b := range bools {
		if err := queryParam(q, b.name, true, b.dest); err != nil {
			return p, err
		}
	}
	if err := queryParam(q, "date_format", true, &p.DateFormat); err != nil {
		return p, err
	}
	if err := queryParam(q, "ids", false, &p.Ids); err != nil {
		return p, err
	}
	return p, nil
}

func bindImportParams(r *http.Request) (ImportParams, error) {
	var p ImportParams
	q := r.URL.Query()
	bools := []struct {
		name string
		dest **bool
	}{
		{"import_days", &p.ImportDays},
		{"import_stops", &p.ImportStops},
		{"import_lodgings", &p.ImportLodgings},
		{"import_costs", &p.ImportCosts},
		{"import_maintenance", &p.ImportMaintenance},
		{"import_weather", &p.ImportWeather},
		{"import_diary", &p.ImportDiary},
		{"substitute_existing", &p.SubstituteExisting},
		{"create_backup_before", &p.CreateBackupBefore},
	}
	for _, b := range bools {
		if err := queryParam(q, b.name, true, b.dest); err != nil {
			return p, err
		}
	}
	if err := queryParam(q, "on_partial_failure", true, &p.OnPartialFailure); err != nil {
		return p, err
	}
	return p, nil
}

func bindOperationsParams(r *http.Request) (OperationsParams, error) {
	var p OperationsParams
	q := r.URL.Query()
	if err := queryParam(q, "operation", true, &p.Operation); err != nil {
		return p, err
	}
	if err := queryParam(q, "status", true, &p.Status); err != nil {
		return p, err
	}
	if err := queryParam(q, "limit", true, &p.Limit); err != nil {
		return p, err
	}
	return p, nil
}

// exportOptions applies p on top of the all-inclusive defaults.
func (p ExportParams) exportOptions() tripfile.ExportOptions {
	o := tripfile.DefaultExportOptions()
	setBool(&o.IncludeDays, p.IncludeDays)
	setBool(&o.IncludeStops, p.IncludeStops)
	setBool(&o.IncludeLodgings, p.IncludeLodgings)
	setBool(&o.IncludeCosts, p.IncludeCosts)
	setBool(&o.IncludeMaintenance, p.IncludeMaintenance)
	setBool(&o.IncludeWeather, p.IncludeWeather)
	setBool(&o.IncludeDiary, p.IncludeDiary)
	setBool(&o.IncludePhotos, p.IncludePhotos)
	setBool(&o.IncludeMetadata, p.IncludeMetadata)
	if p.DateFormat != nil {
		o.DateFormat = tripfile.DateFormat(*p.DateFormat)
	}
	return o
}

// importOptions applies p on top of the import defaults.
func (p ImportParams) importOptions() tripfile.ImportOptions {
	o := tripfile.DefaultImportOptions()
	setBool(&o.ImportDays, p.ImportDays)
	setBool(&o.ImportStops, p.ImportStops)
	setBool(&o.ImportLodgings, p.ImportLodgings)
	setBool(&o.ImportCosts, p.ImportCosts)
	setBool(&o.ImportMaintenance, p.ImportMaintenance)
	setBool(&o.ImportWeather, p.ImportWeather)
	setBool(&o.ImportDiary, p.ImportDiary)
	setBool(&o.SubstituteExisting, p.SubstituteExisting)
	setBool(&o.CreateBackupBefore, p.CreateBackupBefore)
	if p.OnPartialFailure != nil {
		o.OnPartialFailure = tripfile.PartialFailurePolicy(*p.OnPartialFailure)
	}
	return o
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
