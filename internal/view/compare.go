package view

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/evently-app/evently/internal/query"
	"github.com/evently-app/evently/pkg/analytics"
)

// Comparison modes.
const (
	CompareCities = "cities"
	CompareEvents = "events"
)

// MinCompared is the number of ids needed before a comparison is requested.
const MinCompared = 2

// CompareForm is the parsed comparison selection.
type CompareForm struct {
	Mode string
	IDs  []int
}

// Ready reports whether enough ids are selected to request a comparison.
func (f CompareForm) Ready() bool {
	return len(f.IDs) >= MinCompared
}

// ParseCompareForm reads mode and ids. Ids may be repeated parameters or a
// comma-separated list; duplicates and malformed entries are dropped.
func ParseCompareForm(v url.Values) (CompareForm, Adjustments) {
	var adj Adjustments
	f := CompareForm{Mode: CompareCities}
	if v.Get("mode") == CompareEvents {
		f.Mode = CompareEvents
	}

	seen := map[int]bool{}
	for _, raw := range v["ids"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil || id <= 0 {
				adj.add("ids", "ignored invalid id %q", part)
				continue
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			f.IDs = append(f.IDs, id)
		}
	}
	return f, adj
}

// CompareRow is one compared city or event.
type CompareRow struct {
	Name               string
	VisitorIncrease    string
	PriceIncrease      string
	OccupancyIncrease  string
	Jobs               string
	TotalImpact        string
	ROI                string
	ImpactBarPercent   float64
	HasImpactBarValues bool
}

// ComparePage is the comparison page model.
type ComparePage struct {
	Form        CompareForm
	Adjustments Adjustments
	Choices     []Option
	// NeedMore is set until MinCompared ids are chosen; no request is made.
	NeedMore bool
	Status   Status
	Error    *ErrorPanel
	Rows     []CompareRow
}

// NewComparePage builds the comparison page. choices lists the selectable
// cities or events; cmp is ignored while fewer than MinCompared ids are set.
func NewComparePage(form CompareForm, choices []Option, cmp query.Result[*analytics.Comparison], apiURL string) ComparePage {
	p := ComparePage{Form: form, Choices: markSelected(choices, form.IDs)}
	if !form.Ready() {
		p.NeedMore = true
		return p
	}

	status, err := Combine(cmp)
	p.Status = status
	switch status {
	case StatusFailed:
		p.Error = NewErrorPanel("comparison", err, apiURL)
		return p
	case StatusLoading:
		return p
	}

	var peak float64
	for _, it := range cmp.Data.Items {
		if v, ok := it.TotalEconomicImpactUSD.Float(); ok {
			peak = max(peak, v)
		}
	}
	for _, it := range cmp.Data.Items {
		name := it.CityName
		if form.Mode == CompareEvents && it.EventName != "" {
			name = it.EventName
		}
		row := CompareRow{
			Name:              name,
			VisitorIncrease:   Percent(it.VisitorIncrease()),
			PriceIncrease:     Percent(it.PriceIncrease()),
			OccupancyIncrease: Percent(it.OccupancyIncrease()),
			Jobs:              Count(it.Jobs()),
			TotalImpact:       Currency(it.TotalEconomicImpactUSD),
			ROI:               Ratio(it.ROIRatio, 2),
		}
		if v, ok := it.TotalEconomicImpactUSD.Float(); ok && peak > 0 {
			row.ImpactBarPercent = v / peak * 100
			row.HasImpactBarValues = true
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}

// CityChoices lists cities as comparison choices.
func CityChoices(cities []analytics.City) []Option {
	return cityOptions(cities, 0)
}

// EventChoices lists events as comparison choices.
func EventChoices(events []analytics.Event) []Option {
	opts := make([]Option, 0, len(events))
	for _, e := range events {
		opts = append(opts, Option{Value: strconv.Itoa(e.ID), Label: e.Name})
	}
	return opts
}

func markSelected(opts []Option, ids []int) []Option {
	sel := make(map[string]bool, len(ids))
	for _, id := range ids {
		sel[strconv.Itoa(id)] = true
	}
	out := make([]Option, len(opts))
	for i, o := range opts {
		o.Selected = sel[o.Value]
		out[i] = o
	}
	return out
}
