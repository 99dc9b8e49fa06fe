package view

import (
	"net/url"
	"strconv"

	"github.com/evently-app/evently/internal/query"
	"github.com/evently-app/evently/pkg/analytics"
)

// What-if input ranges, matching what the backend accepts.
const (
	MinAttendanceChange = -50.0
	MaxAttendanceChange = 200.0

	DefaultElasticity = 0.3
	MinElasticity     = 0.0
	MaxElasticity     = 1.0

	DefaultMultiplier = 1.0
	MinMultiplier     = 0.5
	MaxMultiplier     = 3.0

	DefaultGrowthYears = 5
	MinGrowthYears     = 1
	MaxGrowthYears     = 10

	DefaultGrowthPct = 10.0
	MinGrowthPct     = -50.0
	MaxGrowthPct     = 100.0
)

// SimulatorForm is the parsed what-if input. EventID is zero until an event
// is picked.
type SimulatorForm struct {
	EventID          int
	AttendanceChange float64
	Elasticity       float64
	Multiplier       float64
	Years            int
	GrowthPct        float64
}

// Scenario returns the attendance what-if request.
func (f SimulatorForm) Scenario() analytics.AttendanceScenario {
	e, m := f.Elasticity, f.Multiplier
	return analytics.AttendanceScenario{
		EventID:             f.EventID,
		AttendanceChangePct: f.AttendanceChange,
		PriceElasticity:     &e,
		SpendingMultiplier:  &m,
	}
}

// ParseSimulatorForm reads and clamps the what-if inputs.
func ParseSimulatorForm(v url.Values) (SimulatorForm, Adjustments) {
	var adj Adjustments
	f := SimulatorForm{
		EventID:          parseIntField(v.Get("event_id"), "event_id", 0, 0, 1<<31-1, &adj),
		AttendanceChange: parseFloatField(v.Get("attendance_change"), "attendance_change", 0, MinAttendanceChange, MaxAttendanceChange, &adj),
		Elasticity:       parseFloatField(v.Get("price_elasticity"), "price_elasticity", DefaultElasticity, MinElasticity, MaxElasticity, &adj),
		Multiplier:       parseFloatField(v.Get("spending_multiplier"), "spending_multiplier", DefaultMultiplier, MinMultiplier, MaxMultiplier, &adj),
		Years:            parseIntField(v.Get("years"), "years", DefaultGrowthYears, MinGrowthYears, MaxGrowthYears, &adj),
		GrowthPct:        parseFloatField(v.Get("annual_growth_pct"), "annual_growth_pct", DefaultGrowthPct, MinGrowthPct, MaxGrowthPct, &adj),
	}
	return f, adj
}

// ScenarioRow compares one figure across the base and projected scenarios.
type ScenarioRow struct {
	Label     string
	Base      string
	Projected string
	Change    string
}

// GrowthRow is one projected year.
type GrowthRow struct {
	Year        string
	Growth      string
	Attendance  string
	TotalImpact string
	Jobs        string
	ROI         string
}

// SimulatorPage is the what-if simulator page model.
type SimulatorPage struct {
	Form        SimulatorForm
	Adjustments Adjustments
	Events      []Option
	EventsError *ErrorPanel

	// Picked is false until an event is chosen; no simulation is requested before.
	Picked bool

	Status    Status
	Error     *ErrorPanel
	EventName string
	Rows      []ScenarioRow

	GrowthStatus Status
	GrowthError  *ErrorPanel
	Growth       []GrowthRow
}

// NewSimulatorPage builds the simulator. The attendance and growth results
// are separate groups and render independently.
func NewSimulatorPage(
	form SimulatorForm,
	events query.Result[[]analytics.Event],
	sim query.Result[*analytics.AttendanceSimulation],
	growth query.Result[*analytics.GrowthProjection],
	apiURL string,
) SimulatorPage {
	p := SimulatorPage{Form: form, Picked: form.EventID > 0}

	if st, err := Combine(events); st == StatusFailed {
		p.EventsError = NewErrorPanel("events", err, apiURL)
	} else if st == StatusReady {
		p.Events = EventChoices(events.Data)
		p.Events = markSelected(p.Events, []int{form.EventID})
	}
	if !p.Picked {
		return p
	}

	status, err := Combine(sim)
	p.Status = status
	switch status {
	case StatusFailed:
		p.Error = LookupErrorPanel("simulation", err, apiURL)
	case StatusReady:
		s := sim.Data
		p.EventName = s.EventName
		p.Rows = []ScenarioRow{
			scenarioRow("Attendance", Count(s.Base.Attendance), Count(s.Projected.Attendance), s.Changes["attendance"]),
			scenarioRow("Additional Visitors", Count(s.Base.AdditionalVisitors), Count(s.Projected.AdditionalVisitors), s.Changes["additional_visitors"]),
			scenarioRow("Total Economic Impact", Currency(s.Base.TotalEconomicImpactUSD), Currency(s.Projected.TotalEconomicImpactUSD), s.Changes["total_economic_impact_usd"]),
			scenarioRow("Jobs Created", Count(s.Base.JobsCreated), Count(s.Projected.JobsCreated), s.Changes["jobs_created"]),
			scenarioRow("Avg Hotel Price", Currency(s.Base.AvgPriceUSD), Currency(s.Projected.AvgPriceUSD), s.Changes["avg_price_usd"]),
			scenarioRow("Occupancy", Share(s.Base.OccupancyPct, 1), Share(s.Projected.OccupancyPct, 1), s.Changes["occupancy_pct"]),
			scenarioRow("ROI Ratio", Ratio(s.Base.ROIRatio, 2), Ratio(s.Projected.ROIRatio, 2), s.Changes["roi_ratio"]),
		}
	}

	gstatus, gerr := Combine(growth)
	p.GrowthStatus = gstatus
	switch gstatus {
	case StatusFailed:
		p.GrowthError = LookupErrorPanel("growth projection", gerr, apiURL)
	case StatusReady:
		for _, y := range growth.Data.Projections {
			p.Growth = append(p.Growth, GrowthRow{
				Year:        strconv.Itoa(y.Year),
				Growth:      SignedPercent(y.CumulativeGrowthPct),
				Attendance:  Count(y.Attendance),
				TotalImpact: Currency(y.TotalEconomicImpactUSD),
				Jobs:        Count(y.JobsCreated),
				ROI:         Ratio(y.ROIRatio, 2),
			})
		}
	}
	return p
}

// scenarioRow takes the change column from the backend's percentage change
// for the field. A missing entry renders as N/A rather than +0.0%.
func scenarioRow(label, base, projected string, change analytics.Metric) ScenarioRow {
	return ScenarioRow{Label: label, Base: base, Projected: projected, Change: Percent(change)}
}
