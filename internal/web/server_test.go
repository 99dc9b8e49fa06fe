package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/evently-app/evently/internal/query"
	"github.com/evently-app/evently/internal/view"
	"github.com/evently-app/evently/pkg/analytics"
	"github.com/evently-app/evently/pkg/analytics/mocks"
)

// fakeBackend serves a small fixture of the analytics API.
type fakeBackend struct {
	mu           sync.Mutex
	noCities     bool
	predictions  []map[string]any
	predictFail  bool
	predictGate  chan struct{}
	predictEnter chan struct{}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}

	mux.HandleFunc("GET /api/v1/cities", func(w http.ResponseWriter, _ *http.Request) {
		if b.noCities {
			write(w, 200, `[]`)
			return
		}
		write(w, 200, `[{"id":1,"name":"London","country":"United Kingdom","continent":"Europe",
			"latitude":51.5074,"longitude":-0.1278,"population":8982000,"annual_tourists":19560000,
			"hotel_rooms":150000,"avg_hotel_price_usd":185}]`)
	})
	mux.HandleFunc("GET /api/v1/events/42", func(w http.ResponseWriter, _ *http.Request) {
		write(w, 200, `{"id":42,"city_id":1,"name":"Summer Games","event_type":"sports","year":2024,
			"start_date":"2024-06-15","end_date":"2024-06-20","expected_attendance":80000}`)
	})
	mux.HandleFunc("GET /api/v1/events/42/impact", func(w http.ResponseWriter, _ *http.Request) {
		write(w, 200, `{"id":1,"event_id":42,"total_economic_impact_usd":1500000,"visitor_increase_pct":25.5,
			"jobs_created":320,"roi_ratio":null}`)
	})
	mux.HandleFunc("GET /api/v1/analytics/timeseries/1", func(w http.ResponseWriter, _ *http.Request) {
		write(w, 200, `{"metric_name":"daily_visitors","city_name":"London","data_points":[
			{"date":"2024-06-01","value":50},{"date":"2024-06-16","value":100}],"events":[]}`)
	})
	mux.HandleFunc("GET /api/v1/events/7", func(w http.ResponseWriter, _ *http.Request) {
		write(w, 404, `{"detail":"Event not found"}`)
	})
	mux.HandleFunc("GET /api/v1/events/7/impact", func(w http.ResponseWriter, _ *http.Request) {
		write(w, 404, `{"detail":"Event not found"}`)
	})
	mux.HandleFunc("GET /api/v1/predict/options", func(w http.ResponseWriter, _ *http.Request) {
		write(w, 200, `{"event_types":["sports","music"],"cities":[{"name":"London","country":"United Kingdom"}]}`)
	})
	mux.HandleFunc("POST /api/v1/predict", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		b.predictions = append(b.predictions, body)
		fail, gate, enter := b.predictFail, b.predictGate, b.predictEnter
		b.mu.Unlock()

		if enter != nil {
			enter <- struct{}{}
		}
		if gate != nil {
			<-gate
		}
		if fail {
			write(w, 500, `{"detail":"model unavailable"}`)
			return
		}
		write(w, 200, `{"prediction":{"total_economic_impact_usd":2400000,"lower_bound_usd":2000000,
			"upper_bound_usd":2800000,"confidence_level":"95%"},
			"breakdown":{"direct_spending_usd":1200000,"indirect_spending_usd":700000,"induced_spending_usd":500000},
			"estimates":{"jobs_created":150},"model_info":{"model_used":"gradient_boosting","model_r2":0.91},
			"input_summary":{"event_type":"sports","city":"London","attendance":65000,"duration_days":7,
			"estimated_from_historical":true}}`)
	})
	return mux
}

func (b *fakeBackend) predictBodies() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.predictions...)
}

func newTestSite(t *testing.T, b *fakeBackend) *httptest.Server {
	t.Helper()

	api := httptest.NewServer(b.handler())
	t.Cleanup(api.Close)

	client := analytics.NewClient(api.URL+"/api/v1", analytics.WithTimeout(5*time.Second))
	srv, err := NewServer(query.NewQueries(client, query.New()), Options{
		APIURL:     api.URL + "/api/v1",
		RenderWait: 3 * time.Second,
	})
	require.NoError(t, err)

	site := httptest.NewServer(srv.Handler())
	t.Cleanup(site.Close)
	return site
}

func browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func get(t *testing.T, c *http.Client, u string) (int, string) {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestEventPage_RendersDateRangeAndImpact(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, &fakeBackend{})
	status, body := get(t, browser(t), site.URL+"/events/42")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Summer Games")
	assert.Contains(t, body, "Jun 15, 2024 - Jun 20, 2024")
	assert.Contains(t, body, "$1,500,000")
	assert.Contains(t, body, "+25.5%")
	assert.Contains(t, body, "N/A")
	assert.Contains(t, body, `class="header"`)
	assert.NotContains(t, body, "http-equiv=\"refresh\"")
}

func TestEventPage_NotFound(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, &fakeBackend{})
	c := browser(t)

	status, body := get(t, c, site.URL+"/events/7")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Event not found")

	status, _ = get(t, c, site.URL+"/events/abc")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLanding_FullScreenWithSelection(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, &fakeBackend{})
	status, body := get(t, browser(t), site.URL+"/?city=1")

	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, `class="header"`)
	assert.Contains(t, body, "-- Select a city --")
	assert.Contains(t, body, "London, United Kingdom")
	assert.Contains(t, body, "19.6M")
	assert.Contains(t, body, `"city_id":1`)
}

func TestLanding_NoCities(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, &fakeBackend{noCities: true})
	c := browser(t)
	status, body := get(t, c, site.URL+"/")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, strings.Count(body, "<option"))
	assert.Contains(t, body, "-- Select a city --")
	assert.Contains(t, body, "window.EVENTLY_MARKERS = [];")

	status, body = get(t, c, site.URL+"/api/globe/markers")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, body)
}

func TestEventImages_Served(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, &fakeBackend{})
	c := browser(t)
	for _, f := range view.EventImageFiles() {
		resp, err := c.Get(site.URL + "/static/img/" + f)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, f)
		assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"), f)
	}
}

func TestMarkers_GeoJSON(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, &fakeBackend{})
	resp, err := browser(t).Get(site.URL + "/api/globe/markers")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))

	var doc struct {
		Features []json.RawMessage `json:"features"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Len(t, doc.Features, 1)
}

func TestPredict_OmitsBlankAttendance(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{}
	site := newTestSite(t, b)
	c := browser(t)

	resp, err := c.PostForm(site.URL+"/predict", url.Values{
		"event_type":    {"sports"},
		"city":          {"London"},
		"duration_days": {"7"},
		"attendance":    {""},
	})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/predict", resp.Request.URL.Path)
	assert.Contains(t, string(body), "$2,400,000")
	assert.Contains(t, string(body), "65,000 (estimated)")

	sent := b.predictBodies()
	require.Len(t, sent, 1)
	assert.NotContains(t, sent[0], "attendance")
	assert.Equal(t, "London", sent[0]["city"])
	assert.EqualValues(t, 7, sent[0]["duration_days"])
}

func TestPredict_ShowsBackendDetail(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{predictFail: true}
	site := newTestSite(t, b)
	c := browser(t)

	resp, err := c.PostForm(site.URL+"/predict", url.Values{"city": {"London"}, "attendance": {"1000"}})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Contains(t, string(body), "Prediction Error")
	assert.Contains(t, string(body), "Error: model unavailable")
	assert.NotContains(t, string(body), "$2,400,000")

	sent := b.predictBodies()
	require.Len(t, sent, 1)
	assert.EqualValues(t, 1000, sent[0]["attendance"])
}

func TestPredict_RejectsOverlappingSubmit(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{predictGate: make(chan struct{}), predictEnter: make(chan struct{}, 1)}
	site := newTestSite(t, b)
	c := browser(t)

	// Establish the session cookie first so both submits share it.
	status, _ := get(t, c, site.URL+"/predict")
	require.Equal(t, http.StatusOK, status)

	done := make(chan int, 1)
	go func() {
		resp, err := c.PostForm(site.URL+"/predict", url.Values{"city": {"London"}})
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()
	<-b.predictEnter

	resp, err := c.PostForm(site.URL+"/predict", url.Values{"city": {"Paris"}})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "already running")
	assert.Contains(t, string(body), "disabled")

	close(b.predictGate)
	assert.Equal(t, http.StatusOK, <-done)
	assert.Len(t, b.predictBodies(), 1)
}

func TestRecalculate_RefetchesAndRedirects(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockClient(t)
	client.On("GetEventImpact", mock.Anything, 5, true).
		Return(&analytics.EventImpact{EventID: 5}, nil).Once()

	srv, err := NewServer(query.NewQueries(client, query.New()), Options{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/events/5/recalculate", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/events/5", rr.Header().Get("Location"))
}

func TestDashboard_NetworkErrorShowsHints(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockClient(t)
	client.On("DashboardKPIs", mock.Anything).
		Return(nil, &analytics.NetworkError{Method: "GET", Path: "/analytics/dashboard/kpis", Err: io.ErrUnexpectedEOF})

	srv, err := NewServer(query.NewQueries(client, query.New()), Options{APIURL: "http://localhost:8000/api/v1"})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Cannot connect to backend API")
	assert.Contains(t, body, "http://localhost:8000/api/v1")
}

func TestStaticPagesAndNotFound(t *testing.T) {
	t.Parallel()

	srv, err := NewServer(query.NewQueries(mocks.NewMockClient(t), query.New()), Options{})
	require.NoError(t, err)
	h := srv.Handler()

	for _, path := range []string{"/about", "/methodology", "/case-studies", "/case-studies?study=unknown", "/health"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "/nowhere does not exist"))
}

func TestCompare_NeedsTwoSelections(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockClient(t)
	client.On("ListCities", mock.Anything).Return([]analytics.City{{ID: 1, Name: "London", Country: "UK"}}, nil)

	srv, err := NewServer(query.NewQueries(client, query.New()), Options{})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/compare?ids=1", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	client.AssertNotCalled(t, "CompareCities", mock.Anything, mock.Anything)
}
