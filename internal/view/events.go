package view

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/evently-app/evently/internal/query"
	"github.com/evently-app/evently/pkg/analytics"
)

// EventCard is one event in a list.
type EventCard struct {
	ID         int
	Name       string
	Type       string
	City       string
	Dates      string
	Attendance string
	Image      string
	Href       string
}

// NewEventCard renders e. cityNames may be nil.
func NewEventCard(e analytics.Event, cityNames map[int]string) EventCard {
	return EventCard{
		ID:         e.ID,
		Name:       e.Name,
		Type:       Title(e.EventType),
		City:       cityNames[e.CityID],
		Dates:      EventDates(e),
		Attendance: Count(e.Attendance()),
		Image:      EventImage(e.EventType, e.Name),
		Href:       "/events/" + strconv.Itoa(e.ID),
	}
}

// EventsPage is the events list page model.
type EventsPage struct {
	Status      Status
	Error       *ErrorPanel
	Filter      analytics.EventFilter
	Adjustments Adjustments
	Cards       []EventCard
	Cities      []Option
	EventTypes  []Option
}

// Option is an entry of a select control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// ParseEventFilter reads the list filters from a query string. Malformed
// numbers are dropped with an adjustment.
func ParseEventFilter(v url.Values) (analytics.EventFilter, Adjustments) {
	var adj Adjustments
	f := analytics.EventFilter{
		EventType: strings.TrimSpace(v.Get("event_type")),
	}
	f.CityID = parseIntField(v.Get("city_id"), "city_id", 0, 0, 1<<31-1, &adj)
	f.Year = parseIntField(v.Get("year"), "year", 0, 0, 9999, &adj)
	return f, adj
}

// NewEventsPage builds the events list. The city list only supplies names
// and filter choices; its failure does not fail the page.
func NewEventsPage(events query.Result[[]analytics.Event], cities query.Result[[]analytics.City], filter analytics.EventFilter, apiURL string) EventsPage {
	status, err := Combine(events)
	p := EventsPage{Status: status, Filter: filter}

	var names map[int]string
	if cities.Ready() {
		names = CityNames(cities.Data)
		p.Cities = cityOptions(cities.Data, filter.CityID)
	}

	switch status {
	case StatusFailed:
		p.Error = NewErrorPanel("events", err, apiURL)
		return p
	case StatusLoading:
		return p
	}

	types := map[string]bool{}
	p.Cards = make([]EventCard, 0, len(events.Data))
	for _, e := range events.Data {
		p.Cards = append(p.Cards, NewEventCard(e, names))
		types[e.EventType] = true
	}
	if filter.EventType != "" {
		types[filter.EventType] = true
	}
	p.EventTypes = typeOptions(types, filter.EventType)
	return p
}

// Empty reports whether a resolved list has no events.
func (p EventsPage) Empty() bool {
	return p.Status == StatusReady && len(p.Cards) == 0
}

// CityNames indexes city names by id.
func CityNames(cities []analytics.City) map[int]string {
	names := make(map[int]string, len(cities))
	for _, c := range cities {
		names[c.ID] = c.Name
	}
	return names
}

func cityOptions(cities []analytics.City, selected int) []Option {
	opts := make([]Option, 0, len(cities))
	for _, c := range cities {
		opts = append(opts, Option{
			Value:    strconv.Itoa(c.ID),
			Label:    c.Name + ", " + c.Country,
			Selected: c.ID == selected,
		})
	}
	return opts
}

func typeOptions(types map[string]bool, selected string) []Option {
	names := make([]string, 0, len(types))
	for t := range types {
		if t != "" {
			names = append(names, t)
		}
	}
	sort.Strings(names)
	opts := make([]Option, 0, len(names))
	for _, t := range names {
		opts = append(opts, Option{Value: t, Label: Title(t), Selected: t == selected})
	}
	return opts
}

// Series window around an event: the baseline before it and the tail after.
const (
	BaselineDays = 30
	TailDays     = 7
)

// SeriesQuery returns the tourism series query covering the baseline period
// before e through the days after it.
func SeriesQuery(e analytics.Event) analytics.TimeSeriesQuery {
	end := e.EndDate.Time
	if e.EndDate.IsZero() {
		end = e.StartDate.Time
	}
	return analytics.TimeSeriesQuery{
		CityID:     e.CityID,
		MetricType: analytics.MetricTypeTourism,
		Start:      e.StartDate.AddDate(0, 0, -BaselineDays),
		End:        end.AddDate(0, 0, TailDays),
	}
}

// ImpactMetric is one labelled impact figure.
type ImpactMetric struct {
	Label string
	Value string
}

// SeriesPoint is one plotted value, scaled to the series maximum.
type SeriesPoint struct {
	Date     string
	Value    string
	Percent  float64
	InEvent  bool
	Baseline bool
}

// SeriesView is the time-series section of the event page.
type SeriesView struct {
	Status Status
	Error  *ErrorPanel
	Metric string
	Points []SeriesPoint
}

// EventDetail is the event details page model.
type EventDetail struct {
	Status       Status
	Error        *ErrorPanel
	Card         EventCard
	Headline     []ImpactMetric
	Tourism      []ImpactMetric
	Hotel        []ImpactMetric
	Economy      []ImpactMetric
	CalculatedAt string
	Series       SeriesView
}

// NewEventDetail builds the details page from the event and impact queries,
// which form one group, and the optional series query.
func NewEventDetail(
	event query.Result[*analytics.Event],
	impact query.Result[*analytics.EventImpact],
	series query.Result[*analytics.TimeSeries],
	apiURL string,
) EventDetail {
	status, err := Combine(event, impact)
	d := EventDetail{Status: status}
	switch status {
	case StatusFailed:
		d.Error = LookupErrorPanel("event", err, apiURL)
		return d
	case StatusLoading:
		return d
	}

	e, im := event.Data, impact.Data
	d.Card = NewEventCard(*e, nil)
	d.Headline = []ImpactMetric{
		{"Total Economic Impact", Currency(im.TotalEconomicImpactUSD)},
		{"Visitor Increase", Percent(im.VisitorIncreasePct)},
		{"Jobs Created", Count(im.JobsCreated)},
		{"ROI Ratio", Ratio(im.ROIRatio, 2)},
	}
	d.Tourism = []ImpactMetric{
		{"Baseline Daily Visitors", Count(im.BaselineDailyVisitors)},
		{"Event Period Daily Visitors", Count(im.EventPeriodDailyVisitors)},
		{"Additional Visitors", Count(im.AdditionalVisitors)},
	}
	d.Hotel = []ImpactMetric{
		{"Baseline Occupancy", Share(im.BaselineOccupancyPct, 1)},
		{"Event Occupancy", Share(im.EventOccupancyPct, 1)},
		{"Occupancy Increase", Percent(im.OccupancyIncreasePct)},
		{"Baseline Avg Price", Currency(im.BaselineAvgPriceUSD)},
		{"Event Avg Price", Currency(im.EventAvgPriceUSD)},
		{"Price Increase", Percent(im.PriceIncreasePct)},
	}
	d.Economy = []ImpactMetric{
		{"Direct Spending", Currency(im.DirectSpendingUSD)},
		{"Tax Revenue", Currency(im.TaxRevenueUSD)},
	}
	if !im.CalculatedAt.IsZero() {
		d.CalculatedAt = im.CalculatedAt.Format(time.RFC822)
	}
	d.Series = newSeriesView(series, *e, apiURL)
	return d
}

func newSeriesView(r query.Result[*analytics.TimeSeries], e analytics.Event, apiURL string) SeriesView {
	status, err := Combine(r)
	v := SeriesView{Status: status}
	switch status {
	case StatusFailed:
		v.Error = NewErrorPanel("time series", err, apiURL)
		return v
	case StatusLoading:
		return v
	}

	ts := r.Data
	v.Metric = Humanize(ts.MetricName)
	var peak float64
	for _, p := range ts.DataPoints {
		peak = max(peak, p.Value)
	}
	end := e.EndDate
	if end.IsZero() {
		end = e.StartDate
	}
	for _, p := range ts.DataPoints {
		pt := SeriesPoint{
			Date:     p.Date.Format("Jan 02"),
			Value:    printer.Sprintf("%.0f", p.Value),
			InEvent:  !p.Date.Before(e.StartDate.Time) && !p.Date.After(end.Time),
			Baseline: p.Date.Before(e.StartDate.Time),
		}
		if peak > 0 {
			pt.Percent = p.Value / peak * 100
		}
		v.Points = append(v.Points, pt)
	}
	return v
}
