// Package export writes the event catalog to spreadsheets.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/evently-app/evently/pkg/analytics"
)

// EventsSheet is the sheet name used for event exports.
const EventsSheet = "Events"

// Table is a header row followed by data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

var eventHeader = []string{
	"id", "name", "event_type", "city", "country", "start_date", "end_date",
	"attendance", "total_economic_impact_usd", "visitor_increase_pct", "jobs_created", "roi_ratio",
}

// EventsTable lays out events with their city and, when present in
// impacts, their headline impact figures. Unknown figures are left blank.
func EventsTable(events []analytics.Event, cities []analytics.City, impacts map[int]*analytics.EventImpact) Table {
	byID := make(map[int]analytics.City, len(cities))
	for _, c := range cities {
		byID[c.ID] = c
	}

	t := Table{Header: eventHeader, Rows: make([][]string, 0, len(events))}
	for _, e := range events {
		c := byID[e.CityID]
		row := []string{
			strconv.Itoa(e.ID),
			e.Name,
			e.EventType,
			c.Name,
			c.Country,
			e.StartDate.String(),
			e.EndDate.String(),
			metric(e.Attendance()),
		}
		if im := impacts[e.ID]; im != nil {
			row = append(row,
				metric(im.TotalEconomicImpactUSD),
				metric(im.VisitorIncreasePct),
				metric(im.JobsCreated),
				metric(im.ROIRatio),
			)
		} else {
			row = append(row, "", "", "", "")
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func metric(m analytics.Metric) string {
	v, ok := m.Float()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes t as CSV.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return eris.Wrap(err, "export: write csv rows")
	}
	return nil
}

// WriteXLSX saves t as a single-sheet workbook at path.
func WriteXLSX(path, sheetName string, t Table) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %q", sheetName)
	}
	addRow(sheet, t.Header)
	for _, r := range t.Rows {
		addRow(sheet, r)
	}
	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, v := range cells {
		row.AddCell().SetString(v)
	}
}

// ReadXLSX loads the named sheet of a workbook written by WriteXLSX.
func ReadXLSX(path, sheetName string) (Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return Table{}, eris.Wrap(err, "export: open xlsx")
	}
	sheet, ok := f.Sheet[sheetName]
	if !ok {
		return Table{}, eris.Errorf("export: sheet %q not found", sheetName)
	}

	var t Table
	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = c.String()
		}
		if i == 0 {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}
