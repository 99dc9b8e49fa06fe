package analytics

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/rotisserie/eris"
)

// MetricKind distinguishes a value the backend did not compute from a computed zero.
type MetricKind int

const (
	// MetricUnknown means the backend omitted the field or sent null.
	MetricUnknown MetricKind = iota
	// MetricZero means the backend computed exactly zero.
	MetricZero
	// MetricValue means the backend computed a non-zero value.
	MetricValue
)

func (k MetricKind) String() string {
	switch k {
	case MetricZero:
		return "zero"
	case MetricValue:
		return "value"
	default:
		return "unknown"
	}
}

// Metric is a backend-computed number that may be absent. The zero Metric is
// Unknown, so a field missing from a response decodes as Unknown.
type Metric struct {
	kind  MetricKind
	value float64
}

// Value returns a known Metric holding v.
func Value(v float64) Metric {
	if v == 0 {
		return Metric{kind: MetricZero}
	}
	return Metric{kind: MetricValue, value: v}
}

// Unknown returns a Metric with no value.
func Unknown() Metric {
	return Metric{}
}

// Kind reports which of the three states m is in.
func (m Metric) Kind() MetricKind { return m.kind }

// Known reports whether the backend supplied a value (zero included).
func (m Metric) Known() bool { return m.kind != MetricUnknown }

// Zero reports whether the backend supplied exactly zero.
func (m Metric) Zero() bool { return m.kind == MetricZero }

// Float returns the value and whether it is known.
func (m Metric) Float() (float64, bool) {
	return m.value, m.Known()
}

// Int returns the value rounded to the nearest integer and whether it is known.
func (m Metric) Int() (int64, bool) {
	return int64(math.Round(m.value)), m.Known()
}

func (m Metric) String() string {
	if !m.Known() {
		return "unknown"
	}
	return strconv.FormatFloat(m.value, 'f', -1, 64)
}

// UnmarshalJSON decodes a JSON number or null.
func (m *Metric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = Unknown()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return eris.Wrapf(err, "analytics: decode metric %s", string(data))
	}
	*m = Value(v)
	return nil
}

// MarshalJSON encodes Unknown as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Known() {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}
