package tripfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Marshal renders v (an Aggregate or a slice of them) as a trip file:
// JSON indented with two spaces.
func Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tripfile.Marshal: %w", err)
	}
	return data, nil
}

// Encode writes v to w in trip file layout.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("tripfile.Encode: %w", err)
	}
	return nil
}

// IsMulti reports whether data holds an array of aggregates rather than a
// single object, judged by its first non-space byte.
func IsMulti(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

// Decode parses a trip file. A single object yields a one-element slice with
// multi=false. Decode does not validate; run ValidateJSON first.
func Decode(data []byte) (aggs []Aggregate, multi bool, err error) {
	if IsMulti(data) {
		if err := json.Unmarshal(data, &aggs); err != nil {
			return nil, true, fmt.Errorf("tripfile.Decode: %w", err)
		}
		for i := range aggs {
			aggs[i].Normalize()
		}
		return aggs, true, nil
	}

	var a Aggregate
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, false, fmt.Errorf("tripfile.Decode: %w", err)
	}
	a.Normalize()
	return []Aggregate{a}, false, nil
}
