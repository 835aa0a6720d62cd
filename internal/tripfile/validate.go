package tripfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// collectionKeys are the sub-collections every aggregate must carry, in
// the order errors are reported.
var collectionKeys = []string{
	"days", "stops", "lodgings", "costs", "maintenanceRecords", "weather", "diaryEntries",
}

// dayScoped lists the collections whose records may point at a day, with
// the noun used in warnings.
var dayScoped = []struct {
	key  string
	noun string
}{
	{"stops", "stop"},
	{"lodgings", "lodging"},
	{"costs", "cost"},
	{"diaryEntries", "diary entry"},
}

// ValidateJSON decodes data and validates it. Malformed JSON, data after the
// top-level value and field types Decode cannot read are reported as errors,
// so a valid result always decodes.
func ValidateJSON(data []byte) ValidationResult {
	var candidate any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&candidate); err != nil {
		return invalid(fmt.Sprintf("file is not valid JSON: %v", err))
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return invalid("file has unexpected data after the trip JSON")
	}

	res := Validate(candidate)
	if !res.Valid {
		return res
	}
	if _, _, err := Decode(data); err != nil {
		res.Valid = false
		res.Statistics = nil
		res.Errors = append(res.Errors, fmt.Sprintf("file does not match the trip file format: %v", errors.Unwrap(err)))
	}
	return res
}

// ValidateAggregate validates a typed aggregate by checking its JSON form,
// so typed and uploaded data go through exactly the same rules.
func ValidateAggregate(a Aggregate) ValidationResult {
	data, err := json.Marshal(a)
	if err != nil {
		return invalid(fmt.Sprintf("aggregate cannot be encoded: %v", err))
	}
	return ValidateJSON(data)
}

// Validate checks decoded JSON (the output of encoding/json into an any):
// either one aggregate object or an array of them. It never panics and never
// modifies candidate.
func Validate(candidate any) ValidationResult {
	switch v := candidate.(type) {
	case map[string]any:
		errs, warns, stats := validateOne(v)
		res := ValidationResult{
			Valid:    len(errs) == 0,
			Errors:   errs,
			Warnings: warns,
		}
		if res.Valid {
			res.Statistics = stats
		}
		return res
	case []any:
		if len(v) == 0 {
			return invalid("file contains no trips")
		}
		if len(v) == 1 {
			return Validate(v[0])
		}
		res := ValidationResult{Errors: []string{}, Warnings: []string{}}
		for i, item := range v {
			label := fmt.Sprintf("trip %d: ", i+1)
			obj, ok := item.(map[string]any)
			if !ok {
				res.Errors = append(res.Errors, label+"data must be an object")
				continue
			}
			errs, warns, _ := validateOne(obj)
			res.Errors = append(res.Errors, prefixAll(label, errs)...)
			res.Warnings = append(res.Warnings, prefixAll(label, warns)...)
		}
		res.Valid = len(res.Errors) == 0
		return res
	default:
		return invalid("data must be an object or an array of objects")
	}
}

func invalid(msg string) ValidationResult {
	return ValidationResult{Valid: false, Errors: []string{msg}, Warnings: []string{}}
}

func prefixAll(prefix string, msgs []string) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = prefix + m
	}
	return out
}

func validateOne(m map[string]any) (errs, warns []string, stats *Statistics) {
	errs, warns = []string{}, []string{}

	warns = append(warns, checkMetadata(m)...)

	trip, tripOK := m["trip"].(map[string]any)
	switch {
	case m["trip"] == nil:
		errs = append(errs, "trip is missing")
	case !tripOK:
		errs = append(errs, "trip must be an object")
	default:
		errs = append(errs, checkTrip(trip)...)
	}

	arrays := make(map[string][]any, len(collectionKeys))
	for _, key := range collectionKeys {
		raw, present := m[key]
		if !present || raw == nil {
			errs = append(errs, key+" is missing")
			continue
		}
		arr, ok := raw.([]any)
		if !ok {
			errs = append(errs, key+" must be an array")
			continue
		}
		arrays[key] = arr
		errs = append(errs, checkRecords(key, arr)...)
	}

	dayIDs := make(map[string]struct{})
	for _, d := range arrays["days"] {
		if obj, ok := d.(map[string]any); ok {
			if id := stringField(obj, "id"); id != "" {
				dayIDs[id] = struct{}{}
			}
		}
	}
	for _, ds := range dayScoped {
		orphans := 0
		for _, rec := range arrays[ds.key] {
			obj, ok := rec.(map[string]any)
			if !ok {
				continue
			}
			dayID := stringField(obj, "dayId")
			if dayID == "" {
				continue
			}
			if _, known := dayIDs[dayID]; !known {
				orphans++
			}
		}
		if orphans > 0 {
			warns = append(warns, fmt.Sprintf("%d %s record(s) reference a day that is not in days", orphans, ds.noun))
		}
	}

	if len(errs) == 0 {
		stats = genericStatistics(trip, arrays)
	}
	return errs, warns, stats
}

// idKeys are the record fields that carry identifiers. Files may come from
// other stores, so any string is accepted, but nothing else.
var idKeys = []string{"id", "tripId", "dayId"}

func checkRecords(key string, arr []any) []string {
	var errs []string
	for i, rec := range arr {
		label := fmt.Sprintf("%s[%d]", key, i)
		obj, ok := rec.(map[string]any)
		if !ok {
			errs = append(errs, label+" must be an object")
			continue
		}
		for _, k := range idKeys {
			if v, present := obj[k]; present && v != nil {
				if _, isString := v.(string); !isString {
					errs = append(errs, label+"."+k+" must be a string")
				}
			}
		}
		if key == "costs" {
			if v, present := obj["amount"]; present && v != nil {
				if _, isNum := number(v); !isNum {
					errs = append(errs, label+".amount must be a number")
				}
			}
		}
	}
	return errs
}

func checkMetadata(m map[string]any) []string {
	raw, present := m["metadata"]
	if !present || raw == nil {
		return []string{"metadata is missing; the file's origin cannot be verified"}
	}
	meta, ok := raw.(map[string]any)
	if !ok {
		return []string{"metadata is not an object and was ignored"}
	}
	var warns []string
	if v, present := meta["schemaVersion"]; present {
		if s, _ := v.(string); s != SchemaVersion {
			warns = append(warns, fmt.Sprintf("schema version %v differs from supported version %s", v, SchemaVersion))
		}
	}
	if app := stringField(meta, "appName"); !strings.Contains(app, appNameMarker) {
		warns = append(warns, "file was not produced by "+AppName)
	}
	return warns
}

func checkTrip(trip map[string]any) []string {
	var errs []string
	if v, present := trip["id"]; present && v != nil {
		if _, isString := v.(string); !isString {
			errs = append(errs, "trip.id must be a string")
		}
	}
	if strings.TrimSpace(stringField(trip, "name")) == "" {
		errs = append(errs, "trip.name is required")
	}

	start, startOK := checkDate(trip, "startDate", &errs)
	end, endOK := checkDate(trip, "endDate", &errs)
	if startOK && endOK && start.After(end) {
		errs = append(errs, "trip.startDate must not be after trip.endDate")
	}
	return errs
}

func checkDate(trip map[string]any, key string, errs *[]string) (time.Time, bool) {
	raw, present := trip[key]
	if !present || raw == nil || raw == "" {
		*errs = append(*errs, "trip."+key+" is required")
		return time.Time{}, false
	}
	s, isString := raw.(string)
	if !isString {
		*errs = append(*errs, "trip."+key+" is not a valid date")
		return time.Time{}, false
	}
	parsed, ok := ParseCalendarDate(s)
	if !ok {
		*errs = append(*errs, "trip."+key+" is not a valid date")
		return time.Time{}, false
	}
	return parsed, true
}

// genericStatistics computes the statistics block straight from decoded JSON,
// independently of ComputeStatistics on typed aggregates.
func genericStatistics(trip map[string]any, arrays map[string][]any) *Statistics {
	var amounts []float64
	for _, c := range arrays["costs"] {
		if obj, ok := c.(map[string]any); ok {
			if v, ok := number(obj["amount"]); ok {
				amounts = append(amounts, v)
			}
		}
	}

	distance, ok := number(trip["totalDistance"])
	if !ok {
		distance = 0
		for _, d := range arrays["days"] {
			if obj, isObj := d.(map[string]any); isObj {
				if v, isNum := number(obj["plannedDistance"]); isNum {
					distance += v
				}
			}
		}
	}

	return &Statistics{
		TotalDays:               len(arrays["days"]),
		TotalStops:              len(arrays["stops"]),
		TotalLodgings:           len(arrays["lodgings"]),
		TotalCosts:              len(arrays["costs"]),
		TotalCostValue:          SumAmounts(amounts),
		TotalMaintenanceRecords: len(arrays["maintenanceRecords"]),
		TotalDiaryEntries:       len(arrays["diaryEntries"]),
		TotalDistance:           distance,
		TripDurationDays:        durationBetween(stringField(trip, "startDate"), stringField(trip, "endDate")),
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// number accepts both float64 and json.Number, the two shapes encoding/json
// produces for numbers.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
