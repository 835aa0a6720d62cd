// Package tripfile defines the portable JSON representation of a trip and
// everything attached to it, together with the validator that decides whether
// a file may be imported.
//
// Identifiers inside a file are opaque strings: files may come from another
// installation or from the older document-store app, so they are never parsed
// as UUIDs. Dates are strings for the same reason (see dates.go).
package tripfile

// SchemaVersion is the trip file format version written into metadata.
const SchemaVersion = "1.0"

// AppName is written into metadata.appName on export.
const AppName = "Andes Trip Manager"

// appNameMarker must appear in metadata.appName of files this app produced.
const appNameMarker = "Andes"

// Aggregate is one exported trip: the trip record, every sub-collection and
// the derived statistics. All slices are non-nil in a well-formed aggregate.
type Aggregate struct {
	Metadata           *Metadata           `json:"metadata,omitempty"`
	Trip               TripRecord          `json:"trip"`
	Days               []DayRecord         `json:"days"`
	Stops              []StopRecord        `json:"stops"`
	Lodgings           []LodgingRecord     `json:"lodgings"`
	Costs              []CostRecord        `json:"costs"`
	MaintenanceRecords []MaintenanceRecord `json:"maintenanceRecords"`
	Weather            []WeatherRecord     `json:"weather"`
	DiaryEntries       []DiaryRecord       `json:"diaryEntries"`
	Statistics         *Statistics         `json:"statistics,omitempty"`
}

// Metadata identifies who exported a file and with which format version.
type Metadata struct {
	SchemaVersion string `json:"schemaVersion"`
	ExportedAt    string `json:"exportedAt"`
	OwnerUserID   string `json:"ownerUserId"`
	OwnerName     string `json:"ownerName,omitempty"`
	AppName       string `json:"appName"`
}

// TripRecord holds the trip's scalar fields.
type TripRecord struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate"`
	Status        string   `json:"status"`
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	TotalDistance *float64 `json:"totalDistance,omitempty"`
	TotalCost     *float64 `json:"totalCost,omitempty"`
	NumberOfDays  *int     `json:"numberOfDays,omitempty"`
	Photos        []string `json:"photos,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

type DayRecord struct {
	ID              string   `json:"id,omitempty"`
	TripID          string   `json:"tripId"`
	DayNumber       int      `json:"dayNumber"`
	Date            string   `json:"date"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	PlannedDistance *float64 `json:"plannedDistance,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

type StopRecord struct {
	ID            string   `json:"id,omitempty"`
	TripID        string   `json:"tripId"`
	DayID         string   `json:"dayId,omitempty"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Address       string   `json:"address,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	Order         int      `json:"order"`
	ArrivalTime   string   `json:"arrivalTime,omitempty"`
	DepartureTime string   `json:"departureTime,omitempty"`
	Photos        []string `json:"photos,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

type LodgingRecord struct {
	ID       string   `json:"id,omitempty"`
	TripID   string   `json:"tripId"`
	DayID    string   `json:"dayId,omitempty"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Address  string   `json:"address,omitempty"`
	CheckIn  string   `json:"checkIn,omitempty"`
	CheckOut string   `json:"checkOut,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Photos   []string `json:"photos,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

type CostRecord struct {
	ID            string  `json:"id,omitempty"`
	TripID        string  `json:"tripId"`
	DayID         string  `json:"dayId,omitempty"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Date          string  `json:"date,omitempty"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

type MaintenanceRecord struct {
	ID          string   `json:"id,omitempty"`
	TripID      string   `json:"tripId"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Date        string   `json:"date,omitempty"`
	Odometer    *float64 `json:"odometer,omitempty"`
	Cost        *float64 `json:"cost,omitempty"`
	Location    string   `json:"location,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// WeatherRecord is the only record whose trip key is optional in files.
type WeatherRecord struct {
	ID           string   `json:"id,omitempty"`
	TripID       string   `json:"tripId,omitempty"`
	DayID        string   `json:"dayId,omitempty"`
	Location     string   `json:"location"`
	Date         string   `json:"date,omitempty"`
	TemperatureC *float64 `json:"temperatureC,omitempty"`
	Condition    string   `json:"condition,omitempty"`
	Humidity     *float64 `json:"humidity,omitempty"`
	WindSpeedKmh *float64 `json:"windSpeedKmh,omitempty"`
}

type DiaryRecord struct {
	ID       string   `json:"id,omitempty"`
	TripID   string   `json:"tripId"`
	DayID    string   `json:"dayId,omitempty"`
	Date     string   `json:"date,omitempty"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Mood     string   `json:"mood,omitempty"`
	Location string   `json:"location,omitempty"`
	Photos   []string `json:"photos,omitempty"`
}

// Normalize replaces nil sub-collections with empty slices so the encoded
// file always carries every array.
func (a *Aggregate) Normalize() {
	a.Days = nonNil(a.Days)
	a.Stops = nonNil(a.Stops)
	a.Lodgings = nonNil(a.Lodgings)
	a.Costs = nonNil(a.Costs)
	a.MaintenanceRecords = nonNil(a.MaintenanceRecords)
	a.Weather = nonNil(a.Weather)
	a.DiaryEntries = nonNil(a.DiaryEntries)
}

// StripPhotos removes photo lists from the trip, stops, lodgings and diary entries.
func (a *Aggregate) StripPhotos() {
	a.Trip.Photos = nil
	for i := range a.Stops {
		a.Stops[i].Photos = nil
	}
	for i := range a.Lodgings {
		a.Lodgings[i].Photos = nil
	}
	for i := range a.DiaryEntries {
		a.DiaryEntries[i].Photos = nil
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
