package perfledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

const attrOn = "on"

// Quote is a single market data point. Exchange rates have From and To set
// and give the value of one From in To, closing prices have Symbol set.
type Quote struct {
	On     Date
	Symbol string
	From   string
	To     string
	Value  float64
}

// IsRate reports whether q is an exchange rate.
func (q Quote) IsRate() bool { return q.From != "" }

// Key returns the symbol, or the currency pair ("USDCAD").
func (q Quote) Key() string {
	if q.IsRate() {
		return q.From + q.To
	}
	return q.Symbol
}

// currencyPair splits a key made of two currency codes.
func currencyPair(key string) (from, to string, ok bool) {
	if len(key) != 6 {
		return "", "", false
	}
	from, to = key[:3], key[3:]
	if from == to || !IsCurrency(from) || !IsCurrency(to) {
		return "", "", false
	}
	return from, to, true
}

// DecodeMarket reads market data in JSONL, one day per line:
//
//	{"on":"2025-01-02","AAPL":187.3,"USDCAD":1.34}
//
// Keys made of two currency codes are exchange rates, any other key is a
// symbol. Quotes of a line are returned in key order.
func DecodeMarket(name string, r io.Reader) ([]Quote, error) {
	var quotes []Quote
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	i := 0
	for scanner.Scan() {
		i++
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		jobj := make(map[string]any)
		if err := json.Unmarshal(scanner.Bytes(), &jobj); err != nil {
			return nil, fmt.Errorf("parse error %s:%d: not a correct json: %w", name, i, err)
		}

		jstring, ok := jobj[attrOn].(string)
		if !ok {
			return nil, fmt.Errorf("parse error %s:%d: missing the property %q with a date", name, i, attrOn)
		}
		on, err := ParseDate(jstring)
		if err != nil {
			return nil, fmt.Errorf("parse error %s:%d: property %q must be a valid date: %w", name, i, attrOn, err)
		}

		keys := make([]string, 0, len(jobj))
		for k := range jobj {
			if k != attrOn {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			v, ok := jobj[k].(float64)
			if !ok {
				return nil, fmt.Errorf("parse error %s:%d: property %q must be of type 'number'", name, i, k)
			}
			q := Quote{On: on, Value: v}
			if from, to, ok := currencyPair(k); ok {
				q.From, q.To = from, to
			} else {
				q.Symbol = k
			}
			quotes = append(quotes, q)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", name, err)
	}
	return quotes, nil
}

// EncodeMarket writes quotes as JSONL, one line per day in chronological
// order, keys sorted.
func EncodeMarket(w io.Writer, quotes []Quote) error {
	byDay := map[Date]*jsonObjectWriter{}
	var days []Date
	sorted := append([]Quote(nil), quotes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key() < sorted[j].Key() })
	for _, q := range sorted {
		line, ok := byDay[q.On]
		if !ok {
			line = new(jsonObjectWriter)
			line.Append(attrOn, q.On)
			byDay[q.On] = line
			days = append(days, q.On)
		}
		line.Append(q.Key(), q.Value)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	for _, day := range days {
		b, err := byDay[day].MarshalJSON()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}
