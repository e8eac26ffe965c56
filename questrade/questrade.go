// Package questrade imports activities from Questrade API dumps, as returned
// by the /v1/accounts/{id}/activities endpoint.
package questrade

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/perfledger"
)

// DefaultPath selects the activities of a single API response.
const DefaultPath = "$.activities[*]"

// Decode reads a JSON dump and returns the activity records selected by the
// JSONPath expression path. name is for error messages only.
func Decode(name string, r io.Reader, path string) ([]perfledger.ActivityRecord, error) {
	if path == "" {
		path = DefaultPath
	}
	dec := json.NewDecoder(r)
	dec.UseNumber() // keep amounts exact
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("parse error %s: %w", name, err)
	}

	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error selecting %q in %s: %w", path, name, err)
	}
	// jsonpath returns a single answer for a plain path and a list for wildcards.
	jlist, ok := jval.([]any)
	if !ok {
		jlist = []any{jval}
	}

	records := make([]perfledger.ActivityRecord, 0, len(jlist))
	for i, jrec := range jlist {
		if _, ok := jrec.(map[string]any); !ok {
			return nil, fmt.Errorf("%s: %q item #%d is not an object", name, path, i)
		}
		raw, err := json.Marshal(jrec)
		if err != nil {
			return nil, fmt.Errorf("%s: item #%d: %w", name, i, err)
		}
		var a perfledger.ActivityRecord
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("%s: item #%d: %w", name, i, err)
		}
		records = append(records, a)
	}
	return records, nil
}

// Merge appends to existing the records it does not already contain and
// returns them sorted by date. Dumps of overlapping periods can be merged
// repeatedly without duplicating activities.
func Merge(existing, added []perfledger.ActivityRecord) ([]perfledger.ActivityRecord, int, error) {
	seen := make(map[string]bool, len(existing))
	merged := slices.Clone(existing)
	for _, a := range existing {
		k, err := key(a)
		if err != nil {
			return nil, 0, err
		}
		seen[k] = true
	}
	n := 0
	for _, a := range added {
		k, err := key(a)
		if err != nil {
			return nil, 0, err
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		merged = append(merged, a)
		n++
	}
	slices.SortStableFunc(merged, func(a, b perfledger.ActivityRecord) int {
		return a.Date().DaysSince(b.Date())
	})
	return merged, n, nil
}

// key identifies a record by its whole content.
func key(a perfledger.ActivityRecord) (string, error) {
	var buf bytes.Buffer
	if err := perfledger.EncodeActivities(&buf, []perfledger.ActivityRecord{a}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
