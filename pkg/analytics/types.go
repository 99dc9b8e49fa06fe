package analytics

import (
	"net/url"
	"strconv"
	"time"
)

// City is a city tracked by the analytics backend.
type City struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Country          string  `json:"country"`
	CountryCode      string  `json:"country_code"`
	Continent        string  `json:"continent"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Timezone         string  `json:"timezone"`
	Population       int64   `json:"population"`
	AnnualTourists   int64   `json:"annual_tourists"`
	HotelRooms       int64   `json:"hotel_rooms"`
	AvgHotelPriceUSD float64 `json:"avg_hotel_price_usd"`
}

// ValidCoordinates reports whether the city's latitude and longitude are in range.
func (c City) ValidCoordinates() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Event is a single analyzed event held in a city.
type Event struct {
	ID                 int    `json:"id"`
	CityID             int    `json:"city_id"`
	Name               string `json:"name"`
	EventType          string `json:"event_type"`
	Year               int    `json:"year"`
	StartDate          Date   `json:"start_date"`
	EndDate            Date   `json:"end_date"`
	ExpectedAttendance Metric `json:"expected_attendance"`
	ActualAttendance   Metric `json:"actual_attendance"`
}

// Attendance returns the actual attendance when known, otherwise the expected one.
func (e Event) Attendance() Metric {
	if e.ActualAttendance.Known() {
		return e.ActualAttendance
	}
	return e.ExpectedAttendance
}

// SingleDay reports whether the event starts and ends on the same date.
func (e Event) SingleDay() bool {
	return e.EndDate.IsZero() || e.StartDate.Equal(e.EndDate)
}

// EventFilter narrows ListEvents. Zero fields are not sent.
type EventFilter struct {
	CityID    int
	EventType string
	Year      int
}

// Values encodes the set filters as query parameters.
func (f EventFilter) Values() url.Values {
	v := url.Values{}
	if f.CityID > 0 {
		v.Set("city_id", strconv.Itoa(f.CityID))
	}
	if f.EventType != "" {
		v.Set("event_type", f.EventType)
	}
	if f.Year > 0 {
		v.Set("year", strconv.Itoa(f.Year))
	}
	return v
}

// EventImpact holds the backend-derived impact metrics for one event.
type EventImpact struct {
	ID      int `json:"id"`
	EventID int `json:"event_id"`

	BaselineDailyVisitors    Metric `json:"baseline_daily_visitors"`
	EventPeriodDailyVisitors Metric `json:"event_period_daily_visitors"`
	VisitorIncreasePct       Metric `json:"visitor_increase_pct"`
	AdditionalVisitors       Metric `json:"additional_visitors"`

	BaselineOccupancyPct Metric `json:"baseline_occupancy_pct"`
	EventOccupancyPct    Metric `json:"event_occupancy_pct"`
	OccupancyIncreasePct Metric `json:"occupancy_increase_pct"`
	BaselineAvgPriceUSD  Metric `json:"baseline_avg_price_usd"`
	EventAvgPriceUSD     Metric `json:"event_avg_price_usd"`
	PriceIncreasePct     Metric `json:"price_increase_pct"`

	TotalEconomicImpactUSD Metric `json:"total_economic_impact_usd"`
	DirectSpendingUSD      Metric `json:"direct_spending_usd"`
	JobsCreated            Metric `json:"jobs_created"`
	TaxRevenueUSD          Metric `json:"tax_revenue_usd"`
	ROIRatio               Metric `json:"roi_ratio"`

	CalculatedAt Timestamp `json:"calculated_at"`
}

// DashboardKPIs is the dataset-wide aggregate snapshot.
type DashboardKPIs struct {
	TotalEventsAnalyzed          int    `json:"total_events_analyzed"`
	TotalCities                  int    `json:"total_cities"`
	AvgEconomicImpactPerEventUSD Metric `json:"avg_economic_impact_per_event_usd"`
	AvgVisitorIncreasePct        Metric `json:"avg_visitor_increase_pct"`
	AvgHotelPriceIncreasePct     Metric `json:"avg_hotel_price_increase_pct"`
	TotalJobsCreated             Metric `json:"total_jobs_created"`
	HighestImpactEvent           *Event `json:"highest_impact_event,omitempty"`
	HighestImpactCity            *City  `json:"highest_impact_city,omitempty"`
}

// Comparison is the backend's side-by-side comparison of cities or events.
type Comparison struct {
	Type  string           `json:"comparison_type"`
	Items []ComparisonItem `json:"items"`
}

// ComparisonItem is one compared city or event. City comparisons carry
// averages under avg_* keys and a job total; event comparisons carry the
// event's own percentages and job count. Use the accessor methods to read
// whichever shape was sent.
type ComparisonItem struct {
	CityID                  int    `json:"city_id,omitempty"`
	CityName                string `json:"city_name,omitempty"`
	NumEvents               int    `json:"num_events,omitempty"`
	EventID                 int    `json:"event_id,omitempty"`
	EventName               string `json:"event_name,omitempty"`
	EventType               string `json:"event_type,omitempty"`
	AvgVisitorIncreasePct   Metric `json:"avg_visitor_increase_pct"`
	AvgPriceIncreasePct     Metric `json:"avg_price_increase_pct"`
	AvgOccupancyIncreasePct Metric `json:"avg_occupancy_increase_pct"`
	VisitorIncreasePct      Metric `json:"visitor_increase_pct"`
	PriceIncreasePct        Metric `json:"price_increase_pct"`
	OccupancyIncreasePct    Metric `json:"occupancy_increase_pct"`
	TotalEconomicImpactUSD  Metric `json:"total_economic_impact_usd"`
	ROIRatio                Metric `json:"roi_ratio"`
	JobsCreated             Metric `json:"jobs_created"`
	TotalJobsCreated        Metric `json:"total_jobs_created"`
}

// VisitorIncrease returns the event's visitor increase or the city average.
func (it ComparisonItem) VisitorIncrease() Metric {
	return firstKnown(it.VisitorIncreasePct, it.AvgVisitorIncreasePct)
}

// PriceIncrease returns the event's price increase or the city average.
func (it ComparisonItem) PriceIncrease() Metric {
	return firstKnown(it.PriceIncreasePct, it.AvgPriceIncreasePct)
}

// OccupancyIncrease returns the event's occupancy increase or the city average.
func (it ComparisonItem) OccupancyIncrease() Metric {
	return firstKnown(it.OccupancyIncreasePct, it.AvgOccupancyIncreasePct)
}

// Jobs returns the event's jobs created or the city total.
func (it ComparisonItem) Jobs() Metric {
	return firstKnown(it.JobsCreated, it.TotalJobsCreated)
}

func firstKnown(ms ...Metric) Metric {
	for _, m := range ms {
		if m.Known() {
			return m
		}
	}
	return Unknown()
}

// AttendanceScenario is the what-if input for an attendance change. Nil
// optional fields are omitted so the backend applies its defaults.
type AttendanceScenario struct {
	EventID             int      `json:"event_id"`
	AttendanceChangePct float64  `json:"attendance_change_pct"`
	PriceElasticity     *float64 `json:"price_elasticity,omitempty"`
	SpendingMultiplier  *float64 `json:"spending_multiplier,omitempty"`
}

// Scenario is one side of a what-if simulation.
type Scenario struct {
	ScenarioName           string `json:"scenario_name"`
	Attendance             Metric `json:"attendance"`
	AdditionalVisitors     Metric `json:"additional_visitors"`
	VisitorIncreasePct     Metric `json:"visitor_increase_pct"`
	AvgPriceUSD            Metric `json:"avg_price_usd"`
	PriceIncreasePct       Metric `json:"price_increase_pct"`
	OccupancyPct           Metric `json:"occupancy_pct"`
	OccupancyIncreasePct   Metric `json:"occupancy_increase_pct"`
	TotalEconomicImpactUSD Metric `json:"total_economic_impact_usd"`
	JobsCreated            Metric `json:"jobs_created"`
	ROIRatio               Metric `json:"roi_ratio"`
}

// SimulationParameters echoes the parameters the backend applied.
type SimulationParameters struct {
	AttendanceChangePct Metric `json:"attendance_change_pct"`
	PriceElasticity     Metric `json:"price_elasticity"`
	SpendingMultiplier  Metric `json:"spending_multiplier"`
}

// AttendanceSimulation is the simulated impact of an attendance change.
type AttendanceSimulation struct {
	EventName  string               `json:"event_name"`
	Parameters SimulationParameters `json:"simulation_parameters"`
	Base       Scenario             `json:"base_scenario"`
	Projected  Scenario             `json:"projected_scenario"`
	Changes    map[string]Metric    `json:"changes"`
}

// YearProjection is one year of a growth projection.
type YearProjection struct {
	Year                int     `json:"year"`
	CumulativeGrowthPct float64 `json:"cumulative_growth_pct"`
	Scenario
}

// GrowthProjection is a multi-year what-if projection.
type GrowthProjection struct {
	EventID          int              `json:"event_id"`
	ProjectionYears  int              `json:"projection_years"`
	AnnualGrowthRate float64          `json:"annual_growth_rate"`
	Projections      []YearProjection `json:"projections"`
}

// Time-series metric types accepted by the backend.
const (
	MetricTypeTourism  = "tourism"
	MetricTypeHotel    = "hotel"
	MetricTypeEconomic = "economic"
	MetricTypeMobility = "mobility"
)

// MetricTypes lists the valid time-series metric types.
var MetricTypes = []string{MetricTypeTourism, MetricTypeHotel, MetricTypeEconomic, MetricTypeMobility}

// ValidMetricType reports whether t is a time-series metric type.
func ValidMetricType(t string) bool {
	for _, m := range MetricTypes {
		if m == t {
			return true
		}
	}
	return false
}

// TimeSeriesQuery selects a city's metric over a date range.
type TimeSeriesQuery struct {
	CityID     int
	MetricType string
	Start      time.Time
	End        time.Time
}

// Values encodes the query parameters.
func (q TimeSeriesQuery) Values() url.Values {
	v := url.Values{}
	v.Set("metric_type", q.MetricType)
	v.Set("start_date", q.Start.Format(dateLayout))
	v.Set("end_date", q.End.Format(dateLayout))
	return v
}

// DataPoint is a single time-stamped value.
type DataPoint struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
}

// TimeSeriesEvent is an event that started within the series range.
type TimeSeriesEvent struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StartDate Date   `json:"start_date"`
	EndDate   Date   `json:"end_date"`
	EventType string `json:"event_type"`
}

// TimeSeries is an ordered metric series for one city.
type TimeSeries struct {
	MetricName string            `json:"metric_name"`
	CityName   string            `json:"city_name"`
	DataPoints []DataPoint       `json:"data_points"`
	Events     []TimeSeriesEvent `json:"events"`
}

// PredictionInput is the body of POST /predict. A nil Attendance is omitted
// from the payload and the backend estimates it from similar events.
type PredictionInput struct {
	EventType    string `json:"event_type"`
	City         string `json:"city"`
	DurationDays int    `json:"duration_days"`
	Attendance   *int64 `json:"attendance,omitempty"`
}

// PredictionEstimate is the point estimate and its interval.
type PredictionEstimate struct {
	TotalEconomicImpactUSD Metric `json:"total_economic_impact_usd"`
	LowerBoundUSD          Metric `json:"lower_bound_usd"`
	UpperBoundUSD          Metric `json:"upper_bound_usd"`
	ConfidenceLevel        string `json:"confidence_level"`
}

// SpendingBreakdown splits the estimate into direct, indirect and induced spending.
type SpendingBreakdown struct {
	DirectSpendingUSD   Metric `json:"direct_spending_usd"`
	IndirectSpendingUSD Metric `json:"indirect_spending_usd"`
	InducedSpendingUSD  Metric `json:"induced_spending_usd"`
}

// PredictionEstimates are the derived estimates of a prediction.
type PredictionEstimates struct {
	JobsCreated           Metric `json:"jobs_created"`
	JobsRatioUSD          Metric `json:"jobs_ratio_usd"`
	ROIRatio              Metric `json:"roi_ratio"`
	EstimatedEventCostUSD Metric `json:"estimated_event_cost_usd"`
}

// ModelInfo describes the regression model behind a prediction.
type ModelInfo struct {
	ModelUsed string `json:"model_used"`
	ModelR2   Metric `json:"model_r2"`
	ModelMAPE Metric `json:"model_mape"`
}

// InputSummary echoes the inputs the backend used.
type InputSummary struct {
	EventType               string `json:"event_type"`
	City                    string `json:"city"`
	Attendance              Metric `json:"attendance"`
	DurationDays            int    `json:"duration_days"`
	EstimatedFromHistorical bool   `json:"estimated_from_historical"`
	ReferenceContinent      string `json:"reference_continent,omitempty"`
}

// BaselineComparison compares the prediction with a no-event period of equal length.
type BaselineComparison struct {
	BaselineWeeklyImpactUSD  Metric `json:"baseline_weekly_impact_usd"`
	EventImpactUSD           Metric `json:"event_impact_usd"`
	AdditionalImpactUSD      Metric `json:"additional_impact_usd"`
	ImpactMultiplier         Metric `json:"impact_multiplier"`
	ImpactIncreasePct        Metric `json:"impact_increase_pct"`
	BaselineDailyVisitors    Metric `json:"baseline_daily_visitors"`
	BaselineDailySpendingUSD Metric `json:"baseline_daily_spending_usd"`
	DurationDays             int    `json:"duration_days"`
}

// HistoricalReference summarises the similar events the prediction drew on.
type HistoricalReference struct {
	ReferenceScope        string   `json:"reference_scope"`
	EventsAnalyzed        int      `json:"events_analyzed"`
	AvgVisitorIncreasePct Metric   `json:"avg_visitor_increase_pct"`
	AvgPriceIncreasePct   Metric   `json:"avg_price_increase_pct"`
	AvgOccupancyBoostPct  Metric   `json:"avg_occupancy_boost_pct"`
	AvgAttendancePerDay   Metric   `json:"avg_attendance_per_day"`
	AvgImpactPerDayUSD    Metric   `json:"avg_impact_per_day_usd"`
	SimilarEvents         []string `json:"similar_events"`
}

// Prediction is the result of one prediction request.
type Prediction struct {
	Prediction          PredictionEstimate   `json:"prediction"`
	Breakdown           SpendingBreakdown    `json:"breakdown"`
	Estimates           PredictionEstimates  `json:"estimates"`
	ModelInfo           ModelInfo            `json:"model_info"`
	InputSummary        InputSummary         `json:"input_summary"`
	BaselineComparison  *BaselineComparison  `json:"baseline_comparison,omitempty"`
	HistoricalReference *HistoricalReference `json:"historical_reference,omitempty"`
}

// OptionCity is a city accepted by the prediction model.
type OptionCity struct {
	Name      string `json:"name"`
	Country   string `json:"country"`
	Continent string `json:"continent"`
}

// PredictionOptions lists the inputs the prediction model accepts.
type PredictionOptions struct {
	EventTypes []string     `json:"event_types"`
	Cities     []OptionCity `json:"cities"`
}
