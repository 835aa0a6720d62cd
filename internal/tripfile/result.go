package tripfile

// ValidationResult is the outcome of Validate. Errors block an import,
// warnings do not. Statistics are set only when exactly one aggregate was
// validated and it had no errors.
type ValidationResult struct {
	Valid      bool        `json:"valid"`
	Errors     []string    `json:"errors"`
	Warnings   []string    `json:"warnings"`
	Statistics *Statistics `json:"statistics,omitempty"`
}

// ImportResult reports what an import actually wrote. The Portuguese JSON
// names are kept for compatibility with the existing client.
type ImportResult struct {
	Success              bool     `json:"sucesso"`
	TripID               string   `json:"viagemId,omitempty"`
	TripIDs              []string `json:"viagemIds,omitempty"`
	DaysImported         int      `json:"daysImported"`
	StopsImported        int      `json:"stopsImported"`
	LodgingsImported     int      `json:"lodgingsImported"`
	CostsImported        int      `json:"costsImported"`
	MaintenanceImported  int      `json:"maintenanceImported"`
	WeatherImported      int      `json:"weatherImported"`
	DiaryEntriesImported int      `json:"diaryEntriesImported"`
	Errors               []string `json:"erros"`
	Warnings             []string `json:"avisos"`
}

// NewImportResult returns an empty successful result with non-nil lists.
func NewImportResult() ImportResult {
	return ImportResult{Success: true, Errors: []string{}, Warnings: []string{}}
}

// Fail marks the result unsuccessful and records msg.
func (r *ImportResult) Fail(msg string) {
	r.Success = false
	r.Errors = append(r.Errors, msg)
}

// Warn records a non-blocking message.
func (r *ImportResult) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// RecordsImported is the number of sub-records written, all categories.
func (r ImportResult) RecordsImported() int {
	return r.DaysImported + r.StopsImported + r.LodgingsImported + r.CostsImported +
		r.MaintenanceImported + r.WeatherImported + r.DiaryEntriesImported
}

// Consolidate merges per-trip results: counts are summed, messages
// concatenated, and the result succeeds only if every part succeeded.
func Consolidate(parts []ImportResult) ImportResult {
	out := NewImportResult()
	for _, p := range parts {
		out.Success = out.Success && p.Success
		if p.TripID != "" {
			out.TripIDs = append(out.TripIDs, p.TripID)
		}
		out.DaysImported += p.DaysImported
		out.StopsImported += p.StopsImported
		out.LodgingsImported += p.LodgingsImported
		out.CostsImported += p.CostsImported
		out.MaintenanceImported += p.MaintenanceImported
		out.WeatherImported += p.WeatherImported
		out.DiaryEntriesImported += p.DiaryEntriesImported
		out.Errors = append(out.Errors, p.Errors...)
		out.Warnings = append(out.Warnings, p.Warnings...)
	}
	if len(out.TripIDs) == 1 {
		out.TripID = out.TripIDs[0]
	}
	return out
}
