package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/andes-trip-manager/backend/internal/query"
	"github.com/andes-trip-manager/backend/internal/retry"
	"github.com/andes-trip-manager/backend/internal/tripfile"
)

// Request and response bodies, named after the schemas in spec/openapi.yaml.

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
	// Classification is set on export failures.
	Classification *retry.Classification `json:"classification,omitempty"`
	// Validation is set when an import was rejected by the trip file validator.
	Validation *tripfile.ValidationResult `json:"validation,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type Trip struct {
	Id            openapi_types.UUID `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	StartDate     openapi_types.Date `json:"startDate"`
	EndDate       openapi_types.Date `json:"endDate"`
	Status        string             `json:"status"`
	Origin        string             `json:"origin"`
	Destination   string             `json:"destination"`
	TotalDistance *float64           `json:"totalDistance,omitempty"`
	TotalCost     *float64           `json:"totalCost,omitempty"`
	NumberOfDays  *int               `json:"numberOfDays,omitempty"`
	Photos        []string           `json:"photos"`
	Notes         string             `json:"notes"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type CreateTripRequest struct {
	Name        string             `json:"name"`
	Description *string            `json:"description,omitempty"`
	StartDate   openapi_types.Date `json:"startDate"`
	EndDate     openapi_types.Date `json:"endDate"`
	Status      *string            `json:"status,omitempty"`
	Origin      *string            `json:"origin,omitempty"`
	Destination *string            `json:"destination,omitempty"`
	Photos      []string           `json:"photos,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type ListTripsParams struct {
	Page  *int
	Limit *int
}

// ExportParams are the include_* switches of both export routes. Unset
// switches default to true, date_format to iso.
type ExportParams struct {
	IncludeDays        *bool
	IncludeStops       *bool
	IncludeLodgings    *bool
	IncludeCosts       *bool
	IncludeMaintenance *bool
	IncludeWeather     *bool
	IncludeDiary       *bool
	IncludePhotos      *bool
	IncludeMetadata    *bool
	DateFormat         *string
	Ids                *[]openapi_types.UUID
}

// ImportParams mirror tripfile.ImportOptions. Unset values take the
// documented defaults.
type ImportParams struct {
	ImportDays         *bool
	ImportStops        *bool
	ImportLodgings     *bool
	ImportCosts        *bool
	ImportMaintenance  *bool
	ImportWeather      *bool
	ImportDiary        *bool
	SubstituteExisting *bool
	CreateBackupBefore *bool
	OnPartialFailure   *string
}

type OperationsParams struct {
	Operation *string
	Status    *string
	Limit     *int
}

type OperationList struct {
	Data []retry.Entry `json:"data"`
}

type ResourceList struct {
	Resources []query.Resource `json:"resources"`
}

type ResourceContents struct {
	URI      string `json:"uri"`
	Contents any    `json:"contents"`
}

type ToolList struct {
	Tools []query.ToolDefinition `json:"tools"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result"`
}
