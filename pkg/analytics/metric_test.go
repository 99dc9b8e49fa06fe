package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetric_TriState(t *testing.T) {
	t.Parallel()

	var payload struct {
		Absent Metric `json:"absent"`
		Null   Metric `json:"null"`
		Zero   Metric `json:"zero"`
		Value  Metric `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"null":null,"zero":0,"value":12.5}`), &payload))

	assert.Equal(t, MetricUnknown, payload.Absent.Kind())
	assert.Equal(t, MetricUnknown, payload.Null.Kind())
	assert.Equal(t, MetricZero, payload.Zero.Kind())
	assert.Equal(t, MetricValue, payload.Value.Kind())

	_, ok := payload.Null.Float()
	assert.False(t, ok)
	v, ok := payload.Zero.Float()
	assert.True(t, ok)
	assert.Zero(t, v)
}

func TestMetric_Marshal(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
	}{A: Unknown(), B: Value(3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":null,"b":3}`, string(b))
}

func TestMetric_RejectsStrings(t *testing.T) {
	t.Parallel()

	var m Metric
	assert.Error(t, json.Unmarshal([]byte(`"12"`), &m))
}

func TestDate_Parse(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2024-06-15T00:00:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", d.String())
	assert.True(t, d.Equal(NewDate(2024, 6, 15)))

	_, err = ParseDate("15/06/2024")
	assert.Error(t, err)
}

func TestDate_NullAndEmpty(t *testing.T) {
	t.Parallel()

	var e Event
	require.NoError(t, json.Unmarshal([]byte(`{"start_date":"2024-01-01","end_date":null}`), &e))
	assert.True(t, e.EndDate.IsZero())
	assert.True(t, e.SingleDay())
}

func TestTimestamp_Layouts(t *testing.T) {
	t.Parallel()

	for _, in := range []string{`"2024-07-01T10:30:00Z"`, `"2024-07-01T10:30:00.123456"`, `"2024-07-01 10:30:00"`} {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(in), &ts), in)
		assert.Equal(t, 10, ts.Hour(), in)
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}
