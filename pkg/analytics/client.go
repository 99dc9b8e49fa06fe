// Package analytics provides a client for the Evently analytics API.
//
// Every operation is a single request. Failures are never retried here;
// callers retry by issuing the call again.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the development API root.
const DefaultBaseURL = "http://localhost:8000/api/v1"

// Client defines the analytics API operations.
type Client interface {
	// ListCities returns every city in the catalog.
	ListCities(ctx context.Context) ([]City, error)
	// GetCity returns one city. A missing id yields ErrNotFound.
	GetCity(ctx context.Context, id int) (*City, error)
	// ListEvents returns events matching all set filter fields.
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	// GetEvent returns one event. A missing id yields ErrNotFound.
	GetEvent(ctx context.Context, id int) (*Event, error)
	// GetEventImpact returns the impact of an event. When recalculate is true
	// the backend recomputes it instead of serving its stored value.
	GetEventImpact(ctx context.Context, eventID int, recalculate bool) (*EventImpact, error)
	// DashboardKPIs returns the dataset-wide KPI snapshot.
	DashboardKPIs(ctx context.Context) (*DashboardKPIs, error)
	// CompareEvents compares the given events.
	CompareEvents(ctx context.Context, eventIDs []int) (*Comparison, error)
	// CompareCities compares the given cities.
	CompareCities(ctx context.Context, cityIDs []int) (*Comparison, error)
	// SimulateAttendance projects the impact of an attendance change.
	SimulateAttendance(ctx context.Context, scenario AttendanceScenario) (*AttendanceSimulation, error)
	// SimulateGrowth projects an event's impact over several years of growth.
	SimulateGrowth(ctx context.Context, eventID, years int, annualGrowthPct float64) (*GrowthProjection, error)
	// TimeSeries returns a city's metric over a date range.
	TimeSeries(ctx context.Context, q TimeSeriesQuery) (*TimeSeries, error)
	// Predict estimates the impact of a hypothetical event.
	Predict(ctx context.Context, in PredictionInput) (*Prediction, error)
	// PredictionOptions lists the event types and cities Predict accepts.
	PredictionOptions(ctx context.Context) (*PredictionOptions, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit paces outbound requests to rps requests per second.
// A non-positive rps disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

type httpClient struct {
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewClient creates an analytics API client rooted at baseURL
// (for example "http://localhost:8000/api/v1").
func NewClient(baseURL string, opts ...Option) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &httpClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "evently/1.0",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one request and decodes a 2xx JSON body into out.
func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "analytics: marshal request")
		}
		reader = bytes.NewReader(b)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &NetworkError{Method: method, Path: path, Err: eris.Wrap(err, "rate limiter wait")}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return eris.Wrap(err, "analytics: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Warn("analytics: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: eris.Wrap(err, "read response body")}
	}

	zap.L().Debug("analytics: request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := newHTTPError(method, path, resp.StatusCode, respBody)
		zap.L().Warn("analytics: error response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", httpErr.Detail),
		)
		return httpErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Method: method, Path: path, Err: err}
	}
	return nil
}

func (c *httpClient) ListCities(ctx context.Context) ([]City, error) {
	var cities []City
	if err := c.do(ctx, http.MethodGet, "/cities", nil, nil, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

func (c *httpClient) GetCity(ctx context.Context, id int) (*City, error) {
	var city City
	if err := c.do(ctx, http.MethodGet, "/cities/"+strconv.Itoa(id), nil, nil, &city); err != nil {
		return nil, err
	}
	return &city, nil
}

func (c *httpClient) ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	var events []Event
	if err := c.do(ctx, http.MethodGet, "/events", filter.Values(), nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *httpClient) GetEvent(ctx context.Context, id int) (*Event, error) {
	var event Event
	if err := c.do(ctx, http.MethodGet, "/events/"+strconv.Itoa(id), nil, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *httpClient) GetEventImpact(ctx context.Context, eventID int, recalculate bool) (*EventImpact, error) {
	q := url.Values{}
	q.Set("recalculate", strconv.FormatBool(recalculate))

	var impact EventImpact
	path := fmt.Sprintf("/events/%d/impact", eventID)
	if err := c.do(ctx, http.MethodGet, path, q, nil, &impact); err != nil {
		return nil, err
	}
	return &impact, nil
}

func (c *httpClient) DashboardKPIs(ctx context.Context) (*DashboardKPIs, error) {
	var kpis DashboardKPIs
	if err := c.do(ctx, http.MethodGet, "/analytics/dashboard/kpis", nil, nil, &kpis); err != nil {
		return nil, err
	}
	return &kpis, nil
}

func (c *httpClient) CompareEvents(ctx context.Context, eventIDs []int) (*Comparison, error) {
	return c.compare(ctx, "/analytics/compare/events", eventIDs)
}

func (c *httpClient) CompareCities(ctx context.Context, cityIDs []int) (*Comparison, error) {
	return c.compare(ctx, "/analytics/compare/cities", cityIDs)
}

func (c *httpClient) compare(ctx context.Context, path string, ids []int) (*Comparison, error) {
	if ids == nil {
		ids = []int{}
	}
	var cmp Comparison
	if err := c.do(ctx, http.MethodPost, path, nil, ids, &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

func (c *httpClient) SimulateAttendance(ctx context.Context, scenario AttendanceScenario) (*AttendanceSimulation, error) {
	var sim AttendanceSimulation
	if err := c.do(ctx, http.MethodPost, "/analytics/whatif/attendance", nil, scenario, &sim); err != nil {
		return nil, err
	}
	return &sim, nil
}

func (c *httpClient) SimulateGrowth(ctx context.Context, eventID, years int, annualGrowthPct float64) (*GrowthProjection, error) {
	q := url.Values{}
	q.Set("years", strconv.Itoa(years))
	q.Set("annual_growth_pct", strconv.FormatFloat(annualGrowthPct, 'f', -1, 64))

	var proj GrowthProjection
	path := fmt.Sprintf("/analytics/whatif/growth/%d", eventID)
	if err := c.do(ctx, http.MethodGet, path, q, nil, &proj); err != nil {
		return nil, err
	}
	return &proj, nil
}

func (c *httpClient) TimeSeries(ctx context.Context, q TimeSeriesQuery) (*TimeSeries, error) {
	if !ValidMetricType(q.MetricType) {
		return nil, &ValidationError{
			Field:   "metric_type",
			Message: fmt.Sprintf("must be one of %s", strings.Join(MetricTypes, ", ")),
		}
	}
	if q.End.Before(q.Start) {
		return nil, &ValidationError{Field: "end_date", Message: "must not be before start_date"}
	}

	var ts TimeSeries
	path := fmt.Sprintf("/analytics/timeseries/%d", q.CityID)
	if err := c.do(ctx, http.MethodGet, path, q.Values(), nil, &ts); err != nil {
		return nil, err
	}
	return &ts, nil
}

func (c *httpClient) Predict(ctx context.Context, in PredictionInput) (*Prediction, error) {
	var p Prediction
	if err := c.do(ctx, http.MethodPost, "/predict", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *httpClient) PredictionOptions(ctx context.Context) (*PredictionOptions, error) {
	var opts PredictionOptions
	if err := c.do(ctx, http.MethodGet, "/predict/options", nil, nil, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}
