package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h http.HandlerFunc) (Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/api/v1"), srv
}

func TestListCities_Success(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/cities", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"name":"London","country":"United Kingdom","country_code":"GB","continent":"Europe",
			 "latitude":51.5074,"longitude":-0.1278,"timezone":"Europe/London","population":8982000,
			 "annual_tourists":21700000,"hotel_rooms":150000,"avg_hotel_price_usd":210.5}
		]`))
	})

	cities, err := client.ListCities(context.Background())
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, "London", cities[0].Name)
	assert.Equal(t, "GB", cities[0].CountryCode)
	assert.Equal(t, int64(8982000), cities[0].Population)
	assert.Equal(t, int64(21700000), cities[0].AnnualTourists)
	assert.Equal(t, int64(150000), cities[0].HotelRooms)
	assert.InDelta(t, 210.5, cities[0].AvgHotelPriceUSD, 0.0001)
	assert.True(t, cities[0].ValidCoordinates())
}

func TestGetCity_NotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/cities/99", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"City not found"}`))
	})

	city, err := client.GetCity(context.Background(), 99)
	require.Error(t, err)
	assert.Nil(t, city)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindNotFound, Classify(err))
	assert.Equal(t, "City not found", Message(err))
}

func TestListEvents_SendsOnlySetFilters(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "3", q.Get("city_id"))
		assert.Equal(t, "sports", q.Get("event_type"))
		assert.False(t, q.Has("year"))
		_, _ = w.Write([]byte(`[{"id":42,"city_id":3,"name":"Final","event_type":"sports","year":2024,
			"start_date":"2024-06-15","end_date":"2024-06-20","expected_attendance":80000}]`))
	})

	events, err := client.ListEvents(context.Background(), EventFilter{CityID: 3, EventType: "sports"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].CityID)
	assert.Equal(t, "2024-06-15", events[0].StartDate.String())
	assert.False(t, events[0].SingleDay())
	att, ok := events[0].Attendance().Int()
	assert.True(t, ok)
	assert.Equal(t, int64(80000), att)
	assert.False(t, events[0].ActualAttendance.Known())
}

func TestListEvents_NoFilters(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`[]`))
	})

	events, err := client.ListEvents(context.Background(), EventFilter{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGetEventImpact_RecalculateFlag(t *testing.T) {
	t.Parallel()

	for _, recalc := range []bool{false, true} {
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/events/7/impact", r.URL.Path)
			if recalc {
				assert.Equal(t, "true", r.URL.Query().Get("recalculate"))
			} else {
				assert.Equal(t, "false", r.URL.Query().Get("recalculate"))
			}
			_, _ = w.Write([]byte(`{"id":1,"event_id":7,"visitor_increase_pct":0,
				"total_economic_impact_usd":1250000.5,"jobs_created":31,"roi_ratio":null,
				"calculated_at":"2024-07-01T10:30:00.123456"}`))
		})

		impact, err := client.GetEventImpact(context.Background(), 7, recalc)
		require.NoError(t, err)
		assert.True(t, impact.VisitorIncreasePct.Zero())
		assert.False(t, impact.ROIRatio.Known())
		assert.False(t, impact.PriceIncreasePct.Known())
		total, ok := impact.TotalEconomicImpactUSD.Float()
		assert.True(t, ok)
		assert.InDelta(t, 1250000.5, total, 0.001)
		assert.Equal(t, 2024, impact.CalculatedAt.Year())
	}
}

func TestGetEvent_NotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Event not found"}`))
	})

	_, err := client.GetEvent(context.Background(), 404)
	assert.True(t, IsNotFound(err))

	_, err = client.GetEventImpact(context.Background(), 404, false)
	assert.True(t, IsNotFound(err))
}

func TestCompareCities_PostsIDArray(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/analytics/compare/cities", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `[1,2]`, string(body))
		_, _ = w.Write([]byte(`{"comparison_type":"cities","items":[
			{"city_name":"London","avg_visitor_increase_pct":12.5,"avg_price_increase_pct":8,
			 "avg_occupancy_increase_pct":5,"total_economic_impact_usd":1000,"roi_ratio":2.5}]}`))
	})

	cmp, err := client.CompareCities(context.Background(), []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "cities", cmp.Type)
	require.Len(t, cmp.Items, 1)
	assert.Equal(t, "London", cmp.Items[0].CityName)
	v, ok := cmp.Items[0].VisitorIncrease().Float()
	require.True(t, ok)
	assert.InDelta(t, 12.5, v, 0.001)
	assert.False(t, cmp.Items[0].Jobs().Known())
}

func TestCompareEvents_DecodesEventShape(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analytics/compare/events", r.URL.Path)
		_, _ = w.Write([]byte(`{"comparison_type":"events","items":[
			{"event_id":3,"event_name":"Marathon","event_type":"sports","visitor_increase_pct":25.5,
			 "price_increase_pct":12.0,"occupancy_increase_pct":8.5,"total_economic_impact_usd":1000,
			 "roi_ratio":2.5,"jobs_created":120}]}`))
	})

	cmp, err := client.CompareEvents(context.Background(), []int{3, 4})
	require.NoError(t, err)
	require.Len(t, cmp.Items, 1)
	it := cmp.Items[0]
	assert.Equal(t, 3, it.EventID)
	assert.Equal(t, "sports", it.EventType)
	assert.False(t, it.AvgVisitorIncreasePct.Known())

	v, ok := it.VisitorIncrease().Float()
	require.True(t, ok)
	assert.InDelta(t, 25.5, v, 0.001)
	v, _ = it.PriceIncrease().Float()
	assert.InDelta(t, 12.0, v, 0.001)
	v, _ = it.OccupancyIncrease().Float()
	assert.InDelta(t, 8.5, v, 0.001)
	n, ok := it.Jobs().Int()
	require.True(t, ok)
	assert.Equal(t, int64(120), n)
}

func TestSimulateAttendance_OmitsUnsetOptionals(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analytics/whatif/attendance", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(5), body["event_id"])
		assert.Equal(t, float64(25), body["attendance_change_pct"])
		assert.NotContains(t, body, "price_elasticity")
		assert.NotContains(t, body, "spending_multiplier")
		_, _ = w.Write([]byte(`{"event_name":"Marathon","base_scenario":{"scenario_name":"Current/Historical"},
			"projected_scenario":{"scenario_name":"Attendance +25%","total_economic_impact_usd":500},
			"changes":{"total_economic_impact_usd":25.0}}`))
	})

	sim, err := client.SimulateAttendance(context.Background(), AttendanceScenario{EventID: 5, AttendanceChangePct: 25})
	require.NoError(t, err)
	assert.Equal(t, "Attendance +25%", sim.Projected.ScenarioName)
	v, ok := sim.Changes["total_economic_impact_usd"].Float()
	assert.True(t, ok)
	assert.InDelta(t, 25.0, v, 0.001)
}

func TestSimulateGrowth_QueryParams(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analytics/whatif/growth/9", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("years"))
		assert.Equal(t, "12.5", r.URL.Query().Get("annual_growth_pct"))
		_, _ = w.Write([]byte(`{"event_id":9,"projection_years":3,"annual_growth_rate":12.5,
			"projections":[{"year":1,"cumulative_growth_pct":12.5,"scenario_name":"Attendance +12%","jobs_created":10}]}`))
	})

	proj, err := client.SimulateGrowth(context.Background(), 9, 3, 12.5)
	require.NoError(t, err)
	require.Len(t, proj.Projections, 1)
	assert.Equal(t, 1, proj.Projections[0].Year)
	jobs, ok := proj.Projections[0].JobsCreated.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(10), jobs)
}

func TestTimeSeries_ValidatesMetricType(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.TimeSeries(context.Background(), TimeSeriesQuery{CityID: 1, MetricType: "weather"})
	require.Error(t, err)
	assert.Equal(t, KindValidation, Classify(err))
	assert.Equal(t, int32(0), calls.Load())
}

func TestTimeSeries_Success(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analytics/timeseries/2", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "hotel", q.Get("metric_type"))
		assert.Equal(t, "2024-05-16", q.Get("start_date"))
		assert.Equal(t, "2024-06-27", q.Get("end_date"))
		_, _ = w.Write([]byte(`{"metric_name":"hotel","city_name":"Paris",
			"data_points":[{"date":"2024-05-16","value":1.5},{"date":"2024-05-17T00:00:00","value":2}],
			"events":[]}`))
	})

	ts, err := client.TimeSeries(context.Background(), TimeSeriesQuery{
		CityID:     2,
		MetricType: MetricTypeHotel,
		Start:      time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 6, 27, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, ts.DataPoints, 2)
	assert.Equal(t, "2024-05-17", ts.DataPoints[1].Date.String())
}

func TestPredict_OmitsMissingAttendance(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/predict", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"event_type":"sports","city":"London","duration_days":7}`, string(body))
		_, _ = w.Write([]byte(`{"prediction":{"total_economic_impact_usd":1000000,"lower_bound_usd":800000,
			"upper_bound_usd":1200000,"confidence_level":"90%"},
			"model_info":{"model_used":"gradient_boosting","model_r2":0.91,"model_mape":12.3},
			"input_summary":{"event_type":"sports","city":"London","attendance":null,"duration_days":7,
			"estimated_from_historical":true}}`))
	})

	p, err := client.Predict(context.Background(), PredictionInput{EventType: "sports", City: "London", DurationDays: 7})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "gradient_boosting", p.ModelInfo.ModelUsed)
	assert.True(t, p.InputSummary.EstimatedFromHistorical)
	assert.Nil(t, p.BaselineComparison)
}

func TestPredict_SendsAttendanceWhenSet(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"event_type":"music","city":"Paris","duration_days":3,"attendance":50000}`, string(body))
		_, _ = w.Write([]byte(`{}`))
	})

	att := int64(50000)
	_, err := client.Predict(context.Background(), PredictionInput{EventType: "music", City: "Paris", DurationDays: 3, Attendance: &att})
	require.NoError(t, err)
}

func TestPredict_ServerErrorDetail(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "model unavailable"}`))
	})

	_, err := client.Predict(context.Background(), PredictionInput{EventType: "sports", City: "London", DurationDays: 7})
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, "model unavailable", httpErr.Detail)
	assert.Equal(t, KindHTTP, Classify(err))
	assert.False(t, IsNotFound(err))
}

func TestPredictionOptions(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/predict/options", r.URL.Path)
		_, _ = w.Write([]byte(`{"event_types":["sports","music"],"cities":[{"name":"London","country":"UK","continent":"Europe"}]}`))
	})

	opts, err := client.PredictionOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sports", "music"}, opts.EventTypes)
	require.Len(t, opts.Cities, 1)
	assert.Equal(t, "London", opts.Cities[0].Name)
}

func TestDashboardKPIs_HighestImpactObjects(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"total_events_analyzed":12,"total_cities":4,
			"avg_economic_impact_per_event_usd":1500000,"avg_visitor_increase_pct":0,
			"total_jobs_created":300,
			"highest_impact_event":{"id":3,"city_id":1,"name":"Carnival","event_type":"festival","year":2024,
				"start_date":"2024-02-09","end_date":"2024-02-14"},
			"highest_impact_city":{"id":1,"name":"Rio de Janeiro","country":"Brazil"}}`))
	})

	kpis, err := client.DashboardKPIs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, kpis.TotalEventsAnalyzed)
	assert.True(t, kpis.AvgVisitorIncreasePct.Zero())
	assert.False(t, kpis.AvgHotelPriceIncreasePct.Known())
	require.NotNil(t, kpis.HighestImpactEvent)
	assert.Equal(t, "Carnival", kpis.HighestImpactEvent.Name)
	require.NotNil(t, kpis.HighestImpactCity)
	assert.Equal(t, "Rio de Janeiro", kpis.HighestImpactCity.Name)
}

func TestNetworkError_NoServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url + "/api/v1")
	_, err := client.ListCities(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, KindNetwork, Classify(err))

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "/cities", netErr.Path)
}

func TestNoRetryOnServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.DashboardKPIs(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "request failed with status 503", Message(err))
}

func TestMalformedJSON(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := client.DashboardKPIs(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindDecode, Classify(err))
}

func TestContextCancellation(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListCities(ctx)
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()
	custom := &http.Client{}
	c := NewClient("http://example.test", WithHTTPClient(custom))
	hc := c.(*httpClient)
	assert.Equal(t, custom, hc.http)
}

func TestWithRateLimit(t *testing.T) {
	t.Parallel()

	c := NewClient("", WithRateLimit(5)).(*httpClient)
	require.NotNil(t, c.limiter)
	assert.Equal(t, DefaultBaseURL, c.baseURL)

	c = NewClient("", WithRateLimit(0)).(*httpClient)
	assert.Nil(t, c.limiter)
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	t.Parallel()
	c := NewClient("http://example.test/api/v1/").(*httpClient)
	assert.Equal(t, "http://example.test/api/v1", c.baseURL)
}
