package view

import (
	"strconv"

	"github.com/evently-app/evently/internal/query"
	"github.com/evently-app/evently/pkg/analytics"
)

// KPICard is one headline number.
type KPICard struct {
	Label string
	Value string
	Note  string
}

// Highlight is the dashboard's highest-impact event or city.
type Highlight struct {
	Name   string
	Detail string
	Href   string
}

// Dashboard is the dashboard page model.
type Dashboard struct {
	Status  Status
	Error   *ErrorPanel
	Cards   []KPICard
	Event   *Highlight
	City    *Highlight
	Fetched string
}

// NewDashboard builds the dashboard from the KPI query.
func NewDashboard(kpis query.Result[*analytics.DashboardKPIs], apiURL string) Dashboard {
	status, err := Combine(kpis)
	d := Dashboard{Status: status}
	switch status {
	case StatusFailed:
		d.Error = NewErrorPanel("dashboard", err, apiURL)
		return d
	case StatusLoading:
		return d
	}

	k := kpis.Data
	d.Fetched = kpis.FetchedAt.Format("15:04:05")
	d.Cards = []KPICard{
		{Label: "Total Events Analyzed", Value: Int(k.TotalEventsAnalyzed), Note: "Across " + Int(k.TotalCities) + " cities"},
		{Label: "Avg Economic Impact", Value: Currency(k.AvgEconomicImpactPerEventUSD), Note: "Per event"},
		{Label: "Total Jobs Created", Value: Count(k.TotalJobsCreated), Note: "Temporary and permanent"},
		{Label: "Avg Visitor Increase", Value: Percent(k.AvgVisitorIncreasePct), Note: "Compared to baseline"},
		{Label: "Avg Hotel Price Increase", Value: Percent(k.AvgHotelPriceIncreasePct), Note: "During event periods"},
	}

	if e := k.HighestImpactEvent; e != nil {
		d.Event = &Highlight{
			Name:   e.Name,
			Detail: EventDates(*e),
			Href:   "/events/" + strconv.Itoa(e.ID),
		}
	}
	if c := k.HighestImpactCity; c != nil {
		d.City = &Highlight{
			Name:   c.Name,
			Detail: c.Country,
		}
	}
	return d
}
