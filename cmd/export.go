package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/evently-app/evently/internal/export"
	"github.com/evently-app/evently/internal/query"
	"github.com/evently-app/evently/pkg/analytics"
)

// exportConcurrency bounds parallel impact lookups during an export.
const exportConcurrency = 4

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export analytics data to spreadsheets",
}

var exportEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Export events with their headline impact to .xlsx or .csv",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, _ := cmd.Flags().GetString("out")
		withImpact, _ := cmd.Flags().GetBool("impact")
		ext := strings.ToLower(filepath.Ext(out))
		if ext != ".xlsx" && ext != ".csv" {
			return eris.Errorf("export: --out must end in .xlsx or .csv, got %q", out)
		}

		cityID, _ := cmd.Flags().GetInt("city-id")
		eventType, _ := cmd.Flags().GetString("event-type")
		year, _ := cmd.Flags().GetInt("year")
		filter := analytics.EventFilter{CityID: cityID, EventType: eventType, Year: year}

		ctx := cmd.Context()
		q := newQueries(cfg, newClient(cfg))

		var (
			events []analytics.Event
			cities []analytics.City
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
			var err error
			cities, err = query.Fetch(gctx, q.Cache(), query.CitiesKey(), q.Client().ListCities)
			return err
		})
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "export: load catalog")
		}

		var impacts map[int]*analytics.EventImpact
		if withImpact {
			impacts = loadImpacts(ctx, q, events)
		}

		table := export.EventsTable(events, cities, impacts)
		if err := writeTable(out, ext, table); err != nil {
			return err
		}
		zap.L().Info("export complete",
			zap.String("path", out),
			zap.Int("events", len(table.Rows)),
			zap.Int("impacts", len(impacts)),
		)
		fmt.Fprintf(os.Stderr, "Wrote %d events to %s\n", len(table.Rows), out)
		return nil
	},
}

// loadImpacts fetches the stored impact of each event. Events whose impact
// cannot be loaded are exported without one.
func loadImpacts(ctx context.Context, q *query.Queries, events []analytics.Event) map[int]*analytics.EventImpact {
	var mu sync.Mutex
	impacts := make(map[int]*analytics.EventImpact, len(events))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exportConcurrency)
	for _, e := range events {
		e := e
		g.Go(func() error {
			res := q.Impact(gctx, e.ID)
			if err := res.Failure(); err != nil {
				zap.L().Warn("export: impact unavailable", zap.Int("event_id", e.ID), zap.Error(err))
				return nil
			}
			if res.Ready() {
				mu.Lock()
				impacts[e.ID] = res.Data
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return impacts
}

func writeTable(path, ext string, t export.Table) error {
	if ext == ".xlsx" {
		return export.WriteXLSX(path, export.EventsSheet, t)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	if err := export.WriteCSV(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "export: close csv")
}

func init() {
	exportEventsCmd.Flags().String("out", "events.xlsx", "output file (.xlsx or .csv)")
	exportEventsCmd.Flags().Int("city-id", 0, "only events in this city")
	exportEventsCmd.Flags().String("event-type", "", "only events of this type")
	exportEventsCmd.Flags().Int("year", 0, "only events in this year")
	exportEventsCmd.Flags().Bool("impact", true, "include each event's headline impact")
	exportCmd.AddCommand(exportEventsCmd)
	rootCmd.AddCommand(exportCmd)
}
