package view

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/evently-app/evently/pkg/analytics"
)

// ErrorPanel is the error branch of a page section.
type ErrorPanel struct {
	Title    string
	Message  string
	Network  bool
	NotFound bool
	Hints    []string
	Raw      string
}

// NewErrorPanel describes err for the section named subject, e.g. "events".
// apiURL is the configured API base URL, quoted in network hints. A 404 is
// shown as an HTTP failure with its detail; only LookupErrorPanel reports
// a missing entity.
func NewErrorPanel(subject string, err error, apiURL string) *ErrorPanel {
	return newErrorPanel(subject, err, apiURL, false)
}

// LookupErrorPanel is NewErrorPanel for a single-entity lookup, where a 404
// means the entity does not exist.
func LookupErrorPanel(subject string, err error, apiURL string) *ErrorPanel {
	return newErrorPanel(subject, err, apiURL, true)
}

func newErrorPanel(subject string, err error, apiURL string, lookup bool) *ErrorPanel {
	if err == nil {
		return nil
	}
	kind := analytics.Classify(err)
	if kind == analytics.KindNotFound && !lookup {
		kind = analytics.KindHTTP
	}
	p := &ErrorPanel{
		Title: "Error loading " + subject,
		Raw:   err.Error(),
	}

	switch kind {
	case analytics.KindNetwork:
		p.Network = true
		p.Message = "Cannot connect to backend API. Please check:"
		p.Hints = []string{
			fmt.Sprintf("Is the backend server running? (%s)", apiURL),
			"Check the server logs for more details",
			"Verify the API URL setting: EVENTLY_API_URL",
		}
	case analytics.KindNotFound:
		p.NotFound = true
		p.Title = Title(subject) + " not found"
		p.Message = analytics.Message(err)
	case analytics.KindHTTP:
		p.Message = "Error: " + analytics.Message(err)
		p.Hints = []string{"Make sure the backend is running and sample data has been generated."}
	default:
		p.Message = "Error: " + analytics.Message(err)
	}
	return p
}

// ValidationError records an input the page adjusted before submitting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Adjustments is the list of corrections applied to a submitted form.
type Adjustments []ValidationError

func (a *Adjustments) add(field, format string, args ...any) {
	*a = append(*a, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Messages returns the adjustment texts.
func (a Adjustments) Messages() []string {
	out := make([]string, len(a))
	for i, e := range a {
		out[i] = e.Message
	}
	return out
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

// parseFloatField reads a float form value, clamping it to [lo, hi].
// Empty or malformed input yields def.
func parseFloatField(raw, field string, def, lo, hi float64, adj *Adjustments) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		adj.add(field, "%s %q is not a number; using %g", field, raw, def)
		return def
	}
	if c := clampFloat(v, lo, hi); c != v {
		adj.add(field, "%s %g is outside [%g, %g]; using %g", field, v, lo, hi, c)
		return c
	}
	return v
}

// parseIntField is parseFloatField for integers.
func parseIntField(raw, field string, def, lo, hi int, adj *Adjustments) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		adj.add(field, "%s %q is not a whole number; using %d", field, raw, def)
		return def
	}
	if c := clampInt(v, lo, hi); c != v {
		adj.add(field, "%s %d is outside [%d, %d]; using %d", field, v, lo, hi, c)
		return c
	}
	return v
}

// NotFoundPanel is the empty state for a lookup that matched nothing.
func NotFoundPanel(subject, message string) *ErrorPanel {
	return &ErrorPanel{
		Title:    Title(subject) + " not found",
		Message:  message,
		NotFound: true,
	}
}

// HTTPStatus is the response status for a page showing p: 404 for a
// missing entity, 502 for any other backend failure.
func (p *ErrorPanel) HTTPStatus() int {
	if p == nil {
		return http.StatusOK
	}
	if p.NotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
