package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKey_OrderIndependent(t *testing.T) {
	t.Parallel()

	a := NewKey("events", "city_id", "3", "event_type", "sports")
	b := NewKey("events", "event_type", "sports", "city_id", "3")
	assert.Equal(t, a, b)
	assert.Equal(t, "events?city_id=3&event_type=sports", a.String())
	assert.Equal(t, "events", a.Op())
}

func TestNewKey_NoParams(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "kpis", NewKey("kpis").String())
	assert.Equal(t, "kpis", KeyFromValues("kpis", url.Values{}).String())
}

func TestNewKey_DistinguishesValues(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, CityKey(1), CityKey(2))
	assert.NotEqual(t, EventKey(1), CityKey(1))
	assert.NotEqual(t, CompareEventsKey([]int{1, 2}), CompareEventsKey([]int{2, 1}))
	assert.Equal(t, "compare.events?ids=1%2C2", CompareEventsKey([]int{1, 2}).String())
}

func TestNewKey_TrailingName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "op?a=", NewKey("op", "a").String())
}

func TestEventsKey_UnsetFiltersAreStable(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "events?city_id=&event_type=&year=", EventsKey(analyticsFilter(0, "", 0)).String())
	assert.Equal(t, "events?city_id=4&event_type=&year=2024", EventsKey(analyticsFilter(4, "", 2024)).String())
}
