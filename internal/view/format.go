package view

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/evently-app/evently/pkg/analytics"
)

// NotAvailable is shown for values the backend did not compute.
const NotAvailable = "N/A"

const displayDateLayout = "Jan 02, 2006"

var printer = message.NewPrinter(language.English)

// Currency formats m as whole US dollars with grouping, e.g. "$1,234,567".
func Currency(m analytics.Metric) string {
	v, ok := m.Float()
	if !ok {
		return NotAvailable
	}
	return Dollars(v)
}

// Dollars formats v as whole US dollars with grouping.
func Dollars(v float64) string {
	if v < 0 {
		return "-" + printer.Sprintf("$%.0f", math.Abs(v))
	}
	return printer.Sprintf("$%.0f", v)
}

// Percent formats m with one decimal and an explicit sign, e.g. "+12.3%".
func Percent(m analytics.Metric) string {
	v, ok := m.Float()
	if !ok {
		return NotAvailable
	}
	return SignedPercent(v)
}

// SignedPercent formats v with one decimal and an explicit sign.
func SignedPercent(v float64) string {
	return printer.Sprintf("%+.1f%%", v)
}

// Count formats m as a rounded integer with grouping, e.g. "80,000".
func Count(m analytics.Metric) string {
	v, ok := m.Int()
	if !ok {
		return NotAvailable
	}
	return printer.Sprintf("%d", v)
}

// Int formats n with grouping.
func Int(n int) string {
	return printer.Sprintf("%d", n)
}

// Ratio formats m with the given decimals and an "x" suffix, e.g. "2.50x".
func Ratio(m analytics.Metric, decimals int) string {
	v, ok := m.Float()
	if !ok {
		return NotAvailable
	}
	return printer.Sprintf(fixed(decimals)+"x", v)
}

// Decimal formats m with the given number of decimals.
func Decimal(m analytics.Metric, decimals int) string {
	v, ok := m.Float()
	if !ok {
		return NotAvailable
	}
	return printer.Sprintf(fixed(decimals), v)
}

// Share formats an unsigned percentage such as an occupancy rate, e.g. "72.5%".
func Share(m analytics.Metric, decimals int) string {
	v, ok := m.Float()
	if !ok {
		return NotAvailable
	}
	return printer.Sprintf(fixed(decimals), v) + "%"
}

func fixed(decimals int) string {
	return "%." + strconv.Itoa(decimals) + "f"
}

// DateRange renders "Jan 02, 2006", or "start - end" when the dates differ.
func DateRange(start, end analytics.Date) string {
	if start.IsZero() {
		return ""
	}
	s := start.Format(displayDateLayout)
	if end.IsZero() || start.Equal(end) {
		return s
	}
	return s + " - " + end.Format(displayDateLayout)
}

// EventDates renders an event's dates, a single date for one-day events.
func EventDates(e analytics.Event) string {
	if e.SingleDay() {
		return DateRange(e.StartDate, analytics.Date{})
	}
	return DateRange(e.StartDate, e.EndDate)
}

// Humanize turns a snake_case identifier into words, e.g. "gradient boosting".
func Humanize(s string) string {
	if s == "" {
		return NotAvailable
	}
	return strings.ReplaceAll(s, "_", " ")
}

// Title upper-cases the first letter of s.
func Title(s string) string {
	if s == "" {
		return s
	}
	_, n := utf8.DecodeRuneInString(s)
	// A Caser is stateful, so each call gets its own.
	return cases.Upper(language.English).String(s[:n]) + s[n:]
}
