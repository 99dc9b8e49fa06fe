package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/evently-app/evently/internal/query"
	"github.com/evently-app/evently/internal/view"
	"github.com/evently-app/evently/pkg/analytics"
)

// -- cities --

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "List the city catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cities, err := newClient(cfg).ListCities(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "cities")
		}
		if asJSON(cmd) {
			return writeJSON(os.Stdout, cities)
		}
		if len(cities) == 0 {
			fmt.Fprintln(os.Stderr, "No cities found.")
			return nil
		}
		formatCities(os.Stdout, cities)
		return nil
	},
}

// -- events --

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List events, optionally filtered",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cityID, _ := cmd.Flags().GetInt("city-id")
		eventType, _ := cmd.Flags().GetString("event-type")
		year, _ := cmd.Flags().GetInt("year")
		filter := analytics.EventFilter{CityID: cityID, EventType: eventType, Year: year}

		q := newQueries(cfg, newClient(cfg))
		var (
			events []analytics.Event
			names  map[int]string
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			events, err = query.Fetch(gctx, q.Cache(), query.EventsKey(filter), func(ctx context.Context) ([]analytics.Event, error) {
				return q.Client().ListEvents(ctx, filter)
			})
			return err
		})
		g.Go(func() error {
			// Names are cosmetic; a failed city list falls back to ids.
			if res := q.Cities(gctx); res.Ready() {
				names = view.CityNames(res.Data)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "events")
		}

		if asJSON(cmd) {
			return writeJSON(os.Stdout, events)
		}
		if len(events) == 0 {
			fmt.Fprintln(os.Stderr, "No events found.")
			return nil
		}
		formatEvents(os.Stdout, events, names)
		return nil
	},
}

// -- event --

var eventCmd = &cobra.Command{
	Use:   "event <id>",
	Short: "Show an event and its impact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		q := newQueries(cfg, newClient(cfg))

		var (
			event  query.Result[*analytics.Event]
			impact query.Result[*analytics.EventImpact]
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			event = q.Event(gctx, id)
			return nil
		})
		g.Go(func() error {
			impact = q.Impact(gctx, id)
			return nil
		})
		_ = g.Wait()

		if asJSON(cmd) {
			if err := firstFailure(event, impact); err != nil {
				return eris.Wrapf(err, "event %d", id)
			}
			return writeJSON(os.Stdout, map[string]any{"event": event.Data, "impact": impact.Data})
		}
		d := view.NewEventDetail(event, impact, query.Result[*analytics.TimeSeries]{}, cfg.APIBaseURL())
		if d.Error != nil {
			return eris.Errorf("event %d: %s", id, d.Error.Message)
		}
		printEventDetail(os.Stdout, d)
		return nil
	},
}

func printEventDetail(out io.Writer, d view.EventDetail) {
	_, _ = fmt.Fprintf(out, "%s (%s)\n%s · %s attendees\n\n", d.Card.Name, d.Card.Type, d.Card.Dates, d.Card.Attendance)
	formatMetrics(out, "Headline", d.Headline)
	formatMetrics(out, "Tourism", d.Tourism)
	formatMetrics(out, "Hotels", d.Hotel)
	formatMetrics(out, "Economy", d.Economy)
	if d.CalculatedAt != "" {
		_, _ = fmt.Fprintf(out, "\nCalculated %s\n", d.CalculatedAt)
	}
}

// -- impact --

var impactCmd = &cobra.Command{
	Use:   "impact <event-id>",
	Short: "Show or recalculate an event's impact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		recalculate, _ := cmd.Flags().GetBool("recalculate")

		im, err := newClient(cfg).GetEventImpact(cmd.Context(), id, recalculate)
		if err != nil {
			return eris.Wrapf(err, "impact %d", id)
		}
		return writeJSON(os.Stdout, im)
	},
}

// -- kpis --

var kpisCmd = &cobra.Command{
	Use:   "kpis",
	Short: "Show the dashboard KPIs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		q := newQueries(cfg, newClient(cfg))
		res := q.KPIs(cmd.Context())
		if err := firstFailure(res); err != nil {
			return eris.Wrap(err, "kpis")
		}
		if asJSON(cmd) {
			return writeJSON(os.Stdout, res.Data)
		}

		d := view.NewDashboard(res, cfg.APIBaseURL())
		metrics := make([]view.ImpactMetric, 0, len(d.Cards))
		for _, c := range d.Cards {
			metrics = append(metrics, view.ImpactMetric{Label: c.Label, Value: c.Value})
		}
		formatMetrics(os.Stdout, "Dashboard", metrics)
		if d.Event != nil {
			_, _ = fmt.Fprintf(os.Stdout, "Highest impact event: %s (%s)\n", d.Event.Name, d.Event.Detail)
		}
		if d.City != nil {
			_, _ = fmt.Fprintf(os.Stdout, "Highest impact city: %s, %s\n", d.City.Name, d.City.Detail)
		}
		return nil
	},
}

// -- compare --

var compareCmd = &cobra.Command{
	Use:       "compare <cities|events> <id> <id> [id...]",
	Short:     "Compare cities or events side by side",
	Args:      cobra.MinimumNArgs(1 + view.MinCompared),
	ValidArgs: []string{view.CompareCities, view.CompareEvents},
	RunE: func(cmd *cobra.Command, args []string) error {
		form, adj := view.ParseCompareForm(url.Values{"mode": {args[0]}, "ids": args[1:]})
		for _, m := range adj.Messages() {
			fmt.Fprintln(os.Stderr, m)
		}
		if !form.Ready() {
			return eris.Errorf("compare: need at least %d valid ids", view.MinCompared)
		}

		client := newClient(cfg)
		var (
			cmp *analytics.Comparison
			err error
		)
		if form.Mode == view.CompareEvents {
			cmp, err = client.CompareEvents(cmd.Context(), form.IDs)
		} else {
			cmp, err = client.CompareCities(cmd.Context(), form.IDs)
		}
		if err != nil {
			return eris.Wrap(err, "compare")
		}
		if asJSON(cmd) {
			return writeJSON(os.Stdout, cmp)
		}

		page := view.NewComparePage(form, nil, query.Result[*analytics.Comparison]{Data: cmp, HasData: true}, cfg.APIBaseURL())
		w := newTable(os.Stdout, "NAME", "VISITORS", "PRICE", "OCCUPANCY", "JOBS", "IMPACT", "ROI")
		for _, r := range page.Rows {
			w.row(r.Name, r.VisitorIncrease, r.PriceIncrease, r.OccupancyIncrease, r.Jobs, r.TotalImpact, r.ROI)
		}
		w.flush()
		return nil
	},
}

// -- options --

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the event types and cities the predictor accepts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := newClient(cfg).PredictionOptions(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "options")
		}
		if asJSON(cmd) {
			return writeJSON(os.Stdout, opts)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Event types: %s\n", strings.Join(opts.EventTypes, ", "))
		w := newTable(os.Stdout, "CITY", "COUNTRY", "CONTINENT")
		for _, c := range opts.Cities {
			w.row(c.Name, c.Country, c.Continent)
		}
		w.flush()
		return nil
	},
}

// -- predict --

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the economic impact of a hypothetical event",
	RunE: func(cmd *cobra.Command, _ []string) error {
		v := url.Values{}
		for flag, field := range map[string]string{
			"event-type": "event_type",
			"city":       "city",
			"days":       "duration_days",
			"attendance": "attendance",
		} {
			if cmd.Flags().Changed(flag) {
				s, _ := cmd.Flags().GetString(flag)
				v.Set(field, s)
			}
		}
		form, in, adj := view.ParsePredictionForm(v)
		for _, m := range adj.Messages() {
			fmt.Fprintln(os.Stderr, m)
		}

		sess := view.NewPredictionSession()
		err := sess.Submit(cmd.Context(), form, in, adj, newClient(cfg).Predict)
		if err != nil {
			return eris.Wrapf(err, "predict: %s", analytics.Message(err))
		}
		snap := sess.Snapshot()
		if asJSON(cmd) {
			return writeJSON(os.Stdout, snap.Result)
		}

		page := view.NewPredictPage(snap, nil, nil, cfg.APIBaseURL())
		printPrediction(os.Stdout, page.Result)
		return nil
	},
}

func printPrediction(out io.Writer, r *view.PredictionResult) {
	if r == nil {
		return
	}
	_, _ = fmt.Fprintf(out, "Predicted impact: %s (%s to %s, %s confidence)\n\n", r.Total, r.Lower, r.Upper, r.Confidence)
	breakdown := make([]view.ImpactMetric, 0, len(r.Breakdown))
	for _, s := range r.Breakdown {
		breakdown = append(breakdown, view.ImpactMetric{Label: s.Label, Value: s.Amount + " (" + s.Percent + ")"})
	}
	formatMetrics(out, "Breakdown", breakdown)
	formatMetrics(out, "Estimates", r.Estimates)
	formatMetrics(out, "Model", r.Model)
	formatMetrics(out, "Inputs", r.Inputs)
	formatMetrics(out, "Compared to a normal period", r.Baseline)
	formatMetrics(out, "Historical reference", r.History)
	if len(r.Similar) > 0 {
		_, _ = fmt.Fprintf(out, "Similar events: %s\n", strings.Join(r.Similar, ", "))
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, eris.Errorf("invalid id %q", s)
	}
	return id, nil
}

// firstFailure returns the first error among outcomes, or an error naming a
// query that did not resolve.
func firstFailure(outcomes ...view.Outcome) error {
	status, err := view.Combine(outcomes...)
	switch status {
	case view.StatusFailed:
		return err
	case view.StatusLoading:
		return eris.New("query did not complete")
	}
	return nil
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func init() {
	eventsCmd.Flags().Int("city-id", 0, "only events in this city")
	eventsCmd.Flags().String("event-type", "", "only events of this type")
	eventsCmd.Flags().Int("year", 0, "only events in this year")

	impactCmd.Flags().Bool("recalculate", false, "recompute the impact instead of reading the stored value")

	predictCmd.Flags().String("event-type", view.DefaultEventType, "event type")
	predictCmd.Flags().String("city", view.DefaultCity, "city name")
	predictCmd.Flags().String("days", strconv.Itoa(view.DefaultDuration), "duration in days")
	predictCmd.Flags().String("attendance", "", "expected attendance (estimated when empty)")

	for _, c := range []*cobra.Command{citiesCmd, eventsCmd, eventCmd, kpisCmd, compareCmd, optionsCmd, predictCmd} {
		c.Flags().Bool("json", false, "print JSON instead of a table")
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(impactCmd)
}
