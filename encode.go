package perfledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts are numbers in every file and payload.
	decimal.MarshalJSONWithoutQuotes = true
}

// maxLine is the longest JSONL line accepted.
const maxLine = 1 << 20

// DecodeActivities reads activity records from a JSONL stream, one record per
// line. Empty lines are ignored. name is for error messages only.
func DecodeActivities(name string, r io.Reader) ([]ActivityRecord, error) {
	var records []ActivityRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if strings.TrimSpace(string(line)) == "" {
			continue
		}
		var a ActivityRecord
		if err := json.Unmarshal(line, &a); err != nil {
			return nil, fmt.Errorf("parse error %s:%d: %w", name, i, err)
		}
		records = append(records, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", name, err)
	}
	return records, nil
}

// EncodeActivities writes activity records as JSONL.
func EncodeActivities(w io.Writer, records []ActivityRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, a := range records {
		if err := enc.Encode(a); err != nil {
			return err
		}
	}
	return nil
}

// EncodeResult writes a result as indented JSON. The output only depends on
// the result, two identical results give the same bytes.
func EncodeResult(w io.Writer, res any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
