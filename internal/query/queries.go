package query

import (
	"context"
	"strconv"

	"github.com/evently-app/evently/pkg/analytics"
)

// Queries runs analytics reads through a shared cache.
type Queries struct {
	client analytics.Client
	cache  *Cache
}

// NewQueries binds client to cache.
func NewQueries(client analytics.Client, cache *Cache) *Queries {
	return &Queries{client: client, cache: cache}
}

// Cache returns the underlying cache.
func (q *Queries) Cache() *Cache { return q.cache }

// Client returns the underlying analytics client.
func (q *Queries) Client() analytics.Client { return q.client }

// Keys for each read operation.

func CitiesKey() Key { return NewKey("cities") }

func CityKey(id int) Key { return NewKey("city", "id", strconv.Itoa(id)) }

func EventsKey(f analytics.EventFilter) Key {
	return NewKey("events",
		"city_id", optInt(f.CityID),
		"event_type", f.EventType,
		"year", optInt(f.Year),
	)
}

func EventKey(id int) Key { return NewKey("event", "id", strconv.Itoa(id)) }

func ImpactKey(eventID int) Key { return NewKey("impact", "event_id", strconv.Itoa(eventID)) }

func KPIsKey() Key { return NewKey("kpis") }

func CompareEventsKey(ids []int) Key { return NewKey("compare.events", "ids", joinIDs(ids)) }

func CompareCitiesKey(ids []int) Key { return NewKey("compare.cities", "ids", joinIDs(ids)) }

func AttendanceKey(s analytics.AttendanceScenario) Key {
	return NewKey("whatif.attendance",
		"event_id", strconv.Itoa(s.EventID),
		"change", formatFloat(s.AttendanceChangePct),
		"elasticity", optFloat(s.PriceElasticity),
		"multiplier", optFloat(s.SpendingMultiplier),
	)
}

func GrowthKey(eventID, years int, pct float64) Key {
	return NewKey("whatif.growth",
		"event_id", strconv.Itoa(eventID),
		"years", strconv.Itoa(years),
		"pct", formatFloat(pct),
	)
}

func TimeSeriesKey(ts analytics.TimeSeriesQuery) Key {
	v := ts.Values()
	v.Set("city_id", strconv.Itoa(ts.CityID))
	return KeyFromValues("timeseries", v)
}

func PredictionOptionsKey() Key { return NewKey("predict.options") }

// Cities waits for the city catalog.
func (q *Queries) Cities(ctx context.Context) Result[[]analytics.City] {
	return Await(ctx, q.cache, CitiesKey(), q.client.ListCities)
}

// City waits for one city.
func (q *Queries) City(ctx context.Context, id int) Result[*analytics.City] {
	return Await(ctx, q.cache, CityKey(id), func(ctx context.Context) (*analytics.City, error) {
		return q.client.GetCity(ctx, id)
	})
}

// Events waits for the events matching f.
func (q *Queries) Events(ctx context.Context, f analytics.EventFilter) Result[[]analytics.Event] {
	return Await(ctx, q.cache, EventsKey(f), func(ctx context.Context) ([]analytics.Event, error) {
		return q.client.ListEvents(ctx, f)
	})
}

// Event waits for one event.
func (q *Queries) Event(ctx context.Context, id int) Result[*analytics.Event] {
	return Await(ctx, q.cache, EventKey(id), func(ctx context.Context) (*analytics.Event, error) {
		return q.client.GetEvent(ctx, id)
	})
}

// Impact waits for the stored impact of an event.
func (q *Queries) Impact(ctx context.Context, eventID int) Result[*analytics.EventImpact] {
	return Await(ctx, q.cache, ImpactKey(eventID), q.impactFetcher(eventID, false))
}

// RecalculateImpact asks the backend to recompute an event's impact and
// replaces the cached value with the result.
func (q *Queries) RecalculateImpact(ctx context.Context, eventID int) Result[*analytics.EventImpact] {
	return Refetch(ctx, q.cache, ImpactKey(eventID), q.impactFetcher(eventID, true))
}

func (q *Queries) impactFetcher(eventID int, recalculate bool) func(context.Context) (*analytics.EventImpact, error) {
	return func(ctx context.Context) (*analytics.EventImpact, error) {
		return q.client.GetEventImpact(ctx, eventID, recalculate)
	}
}

// KPIs waits for the dashboard KPIs.
func (q *Queries) KPIs(ctx context.Context) Result[*analytics.DashboardKPIs] {
	return Await(ctx, q.cache, KPIsKey(), q.client.DashboardKPIs)
}

// CompareEvents waits for a comparison of the given events.
func (q *Queries) CompareEvents(ctx context.Context, ids []int) Result[*analytics.Comparison] {
	return Await(ctx, q.cache, CompareEventsKey(ids), func(ctx context.Context) (*analytics.Comparison, error) {
		return q.client.CompareEvents(ctx, ids)
	})
}

// CompareCities waits for a comparison of the given cities.
func (q *Queries) CompareCities(ctx context.Context, ids []int) Result[*analytics.Comparison] {
	return Await(ctx, q.cache, CompareCitiesKey(ids), func(ctx context.Context) (*analytics.Comparison, error) {
		return q.client.CompareCities(ctx, ids)
	})
}

// SimulateAttendance waits for an attendance what-if.
func (q *Queries) SimulateAttendance(ctx context.Context, s analytics.AttendanceScenario) Result[*analytics.AttendanceSimulation] {
	return Await(ctx, q.cache, AttendanceKey(s), func(ctx context.Context) (*analytics.AttendanceSimulation, error) {
		return q.client.SimulateAttendance(ctx, s)
	})
}

// SimulateGrowth waits for a multi-year growth projection.
func (q *Queries) SimulateGrowth(ctx context.Context, eventID, years int, pct float64) Result[*analytics.GrowthProjection] {
	return Await(ctx, q.cache, GrowthKey(eventID, years, pct), func(ctx context.Context) (*analytics.GrowthProjection, error) {
		return q.client.SimulateGrowth(ctx, eventID, years, pct)
	})
}

// TimeSeries waits for a city metric series.
func (q *Queries) TimeSeries(ctx context.Context, ts analytics.TimeSeriesQuery) Result[*analytics.TimeSeries] {
	return Await(ctx, q.cache, TimeSeriesKey(ts), func(ctx context.Context) (*analytics.TimeSeries, error) {
		return q.client.TimeSeries(ctx, ts)
	})
}

// Warm starts loading the city catalog and the prediction options without
// waiting, so the first pages served find them cached or in flight.
func (q *Queries) Warm(ctx context.Context) {
	q.cache.Prefetch(ctx, CitiesKey(), erase(q.client.ListCities))
	q.cache.Prefetch(ctx, PredictionOptionsKey(), erase(q.client.PredictionOptions))
}

// PredictionOptions waits for the accepted prediction inputs.
func (q *Queries) PredictionOptions(ctx context.Context) Result[*analytics.PredictionOptions] {
	return Await(ctx, q.cache, PredictionOptionsKey(), q.client.PredictionOptions)
}

func optInt(v int) string {
	if v <= 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
