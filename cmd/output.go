package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/evently-app/evently/internal/view"
	"github.com/evently-app/evently/pkg/analytics"
)

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatCities(out io.Writer, cities []analytics.City) {
	t := newTable(out, "ID", "NAME", "COUNTRY", "CONTINENT", "POPULATION", "TOURISTS")
	for _, c := range cities {
		t.row(strconv.Itoa(c.ID), c.Name, c.Country, c.Continent,
			view.Count(analytics.Value(float64(c.Population))),
			view.Count(analytics.Value(float64(c.AnnualTourists))),
		)
	}
	t.flush()
}

func formatEvents(out io.Writer, events []analytics.Event, cityNames map[int]string) {
	t := newTable(out, "ID", "NAME", "TYPE", "CITY", "DATES", "ATTENDANCE")
	for _, e := range events {
		city := cityNames[e.CityID]
		if city == "" {
			city = strconv.Itoa(e.CityID)
		}
		name := e.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		t.row(strconv.Itoa(e.ID), name, e.EventType, city,
			view.EventDates(e),
			view.Count(e.Attendance()),
		)
	}
	t.flush()
}

func formatMetrics(out io.Writer, title string, metrics []view.ImpactMetric) {
	if len(metrics) == 0 {
		return
	}
	_, _ = fmt.Fprintf(out, "%s\n", title)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, m := range metrics {
		_, _ = fmt.Fprintf(w, "  %s\t%s\n", m.Label, m.Value)
	}
	_ = w.Flush()
}

// table is a tabwriter with a header and dashed underline.
type table struct {
	w *tabwriter.Writer
}

func newTable(out io.Writer, header ...string) *table {
	t := &table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	t.row(header...)
	dashes := make([]string, len(header))
	for i, h := range header {
		dashes[i] = strings.Repeat("-", len(h))
	}
	t.row(dashes...)
	return t
}

func (t *table) row(cells ...string) {
	_, _ = fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}

func (t *table) flush() {
	_ = t.w.Flush()
}
