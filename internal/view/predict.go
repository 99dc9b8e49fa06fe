package view

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/evently-app/evently/pkg/analytics"
)

// Prediction form defaults and bounds.
const (
	DefaultEventType = "sports"
	DefaultCity      = "London"
	DefaultDuration  = 7
	MinDuration      = 1
	MaxDuration      = 365
)

// EventTypes are offered when the backend's option list is unavailable.
var EventTypes = []string{"sports", "music", "culture", "festival", "business", "fair"}

// ErrSubmitInFlight is returned when a prediction is submitted while the
// previous one has not finished.
var ErrSubmitInFlight = eris.New("view: prediction already in flight")

// PredictionForm echoes the submitted form. Attendance is empty when the
// backend should estimate it.
type PredictionForm struct {
	EventType    string
	City         string
	DurationDays int
	Attendance   string
}

// DefaultPredictionForm is the form shown before any submission.
func DefaultPredictionForm() PredictionForm {
	return PredictionForm{EventType: DefaultEventType, City: DefaultCity, DurationDays: DefaultDuration}
}

// ParsePredictionForm validates the submitted values. Bad input is
// corrected locally and reported as adjustments; the submission still goes
// ahead. An empty, non-numeric or non-positive attendance is omitted from
// the request.
func ParsePredictionForm(v url.Values) (PredictionForm, analytics.PredictionInput, Adjustments) {
	var adj Adjustments
	f := PredictionForm{
		EventType: strings.TrimSpace(v.Get("event_type")),
		City:      strings.TrimSpace(v.Get("city")),
	}
	if f.EventType == "" {
		f.EventType = DefaultEventType
	}
	if f.City == "" {
		f.City = DefaultCity
	}

	raw := strings.TrimSpace(v.Get("duration_days"))
	if raw == "" {
		f.DurationDays = DefaultDuration
	} else {
		f.DurationDays = parseIntField(raw, "duration_days", MinDuration, MinDuration, MaxDuration, &adj)
	}

	in := analytics.PredictionInput{
		EventType:    f.EventType,
		City:         f.City,
		DurationDays: f.DurationDays,
	}

	if raw := strings.TrimSpace(v.Get("attendance")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		switch {
		case err != nil:
			adj.add("attendance", "attendance %q is not a whole number; it will be estimated", raw)
		case n <= 0:
			adj.add("attendance", "attendance must be positive; it will be estimated")
		default:
			in.Attendance = &n
			f.Attendance = strconv.FormatInt(n, 10)
		}
	}
	return f, in, adj
}

// Phase is the state of a prediction session.
type Phase int

const (
	// PhaseIdle means nothing has been submitted yet.
	PhaseIdle Phase = iota
	// PhaseSubmitting means a request is in flight.
	PhaseSubmitting
	// PhaseSucceeded means the last request returned a prediction.
	PhaseSucceeded
	// PhaseFailed means the last request failed.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// PredictFunc issues one prediction request.
type PredictFunc func(ctx context.Context, in analytics.PredictionInput) (*analytics.Prediction, error)

// PredictionSnapshot is a copy of a session's state.
type PredictionSnapshot struct {
	Phase       Phase
	Form        PredictionForm
	Adjustments Adjustments
	Result      *analytics.Prediction
	Err         error
	SubmittedAt time.Time
}

// PredictionSession holds one visitor's current prediction. A new submission
// discards the previous result; only one submission may be in flight.
type PredictionSession struct {
	mu   sync.Mutex
	snap PredictionSnapshot
}

// NewPredictionSession returns an idle session.
func NewPredictionSession() *PredictionSession {
	return &PredictionSession{snap: PredictionSnapshot{Form: DefaultPredictionForm()}}
}

// Begin moves the session to Submitting, clearing the previous result and
// error. It fails with ErrSubmitInFlight if a submission is running.
func (s *PredictionSession) Begin(form PredictionForm, adj Adjustments) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Phase == PhaseSubmitting {
		return ErrSubmitInFlight
	}
	s.snap = PredictionSnapshot{
		Phase:       PhaseSubmitting,
		Form:        form,
		Adjustments: adj,
		SubmittedAt: time.Now(),
	}
	return nil
}

// Finish records the outcome of the submission started by Begin.
func (s *PredictionSession) Finish(result *analytics.Prediction, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Phase != PhaseSubmitting {
		return
	}
	if err != nil {
		s.snap.Phase = PhaseFailed
		s.snap.Err = err
		s.snap.Result = nil
		return
	}
	s.snap.Phase = PhaseSucceeded
	s.snap.Result = result
	s.snap.Err = nil
}

// Submit runs one prediction: Begin, a single request, Finish. The request
// is detached from ctx cancellation because submissions are never cancelled.
func (s *PredictionSession) Submit(ctx context.Context, form PredictionForm, in analytics.PredictionInput, adj Adjustments, predict PredictFunc) error {
	if err := s.Begin(form, adj); err != nil {
		return err
	}
	zap.L().Debug("view: prediction submitted",
		zap.String("event_type", in.EventType),
		zap.String("city", in.City),
		zap.Int("duration_days", in.DurationDays),
	)
	result, err := predict(context.WithoutCancel(ctx), in)
	s.Finish(result, err)
	return err
}

// Snapshot returns a copy of the session state.
func (s *PredictionSession) Snapshot() PredictionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// BreakdownShare is one part of the spending breakdown.
type BreakdownShare struct {
	Label   string
	Amount  string
	Percent string
}

// PredictionResult is the rendered prediction.
type PredictionResult struct {
	Confidence string
	Total      string
	Lower      string
	Upper      string
	Breakdown  []BreakdownShare
	Estimates  []ImpactMetric
	Model      []ImpactMetric
	Inputs     []ImpactMetric
	Baseline   []ImpactMetric
	History    []ImpactMetric
	Similar    []string
}

// PredictPage is the predictor page model.
type PredictPage struct {
	Phase       Phase
	Form        PredictionForm
	Adjustments Adjustments
	// Notice is a one-off message, such as a rejected overlapping submit.
	Notice      string
	EventTypes  []Option
	Cities      []Option
	CitiesError *ErrorPanel
	Error       *ErrorPanel
	Result      *PredictionResult
}

// Submitting reports whether the submit button should be disabled.
func (p PredictPage) Submitting() bool { return p.Phase == PhaseSubmitting }

// NewPredictPage builds the predictor page from the session state and the
// option list. opts may be unresolved; the form then falls back to the
// built-in event types and only the submitted city.
func NewPredictPage(snap PredictionSnapshot, opts *analytics.PredictionOptions, optsErr error, apiURL string) PredictPage {
	p := PredictPage{
		Phase:       snap.Phase,
		Form:        snap.Form,
		Adjustments: snap.Adjustments,
	}

	types := EventTypes
	if opts != nil && len(opts.EventTypes) > 0 {
		types = opts.EventTypes
	}
	for _, t := range types {
		p.EventTypes = append(p.EventTypes, Option{Value: t, Label: Title(t), Selected: t == p.Form.EventType})
	}

	if opts != nil {
		for _, c := range opts.Cities {
			label := c.Name
			if c.Country != "" {
				label += ", " + c.Country
			}
			p.Cities = append(p.Cities, Option{Value: c.Name, Label: label, Selected: c.Name == p.Form.City})
		}
	}
	if len(p.Cities) == 0 {
		p.Cities = []Option{{Value: p.Form.City, Label: p.Form.City, Selected: true}}
	}
	if optsErr != nil {
		p.CitiesError = NewErrorPanel("prediction options", optsErr, apiURL)
	}

	switch snap.Phase {
	case PhaseFailed:
		p.Error = NewErrorPanel("prediction", snap.Err, apiURL)
		p.Error.Title = "Prediction Error"
	case PhaseSucceeded:
		p.Result = newPredictionResult(snap.Result)
	}
	return p
}

func newPredictionResult(pr *analytics.Prediction) *PredictionResult {
	if pr == nil {
		return nil
	}
	est := pr.Prediction
	r := &PredictionResult{
		Confidence: est.ConfidenceLevel,
		Total:      Currency(est.TotalEconomicImpactUSD),
		Lower:      Currency(est.LowerBoundUSD),
		Upper:      Currency(est.UpperBoundUSD),
	}
	if r.Confidence == "" {
		r.Confidence = NotAvailable
	}

	b := pr.Breakdown
	r.Breakdown = []BreakdownShare{
		share("Direct Spending", b.DirectSpendingUSD, est.TotalEconomicImpactUSD),
		share("Indirect Spending", b.IndirectSpendingUSD, est.TotalEconomicImpactUSD),
		share("Induced Spending", b.InducedSpendingUSD, est.TotalEconomicImpactUSD),
	}

	e := pr.Estimates
	r.Estimates = []ImpactMetric{
		{"Jobs Created", Count(e.JobsCreated)},
		{"Spending per Job", Currency(e.JobsRatioUSD)},
		{"ROI Ratio", Ratio(e.ROIRatio, 2)},
		{"Estimated Event Cost", Currency(e.EstimatedEventCostUSD)},
	}

	m := pr.ModelInfo
	r.Model = []ImpactMetric{
		{"Model", Humanize(m.ModelUsed)},
		{"R²", Decimal(m.ModelR2, 3)},
		{"MAPE", Share(m.ModelMAPE, 1)},
	}

	in := pr.InputSummary
	attendance := Count(in.Attendance)
	if in.EstimatedFromHistorical {
		attendance += " (estimated)"
	}
	r.Inputs = []ImpactMetric{
		{"Event Type", Title(in.EventType)},
		{"City", in.City},
		{"Duration", Int(in.DurationDays) + " days"},
		{"Attendance", attendance},
	}

	if bc := pr.BaselineComparison; bc != nil {
		r.Baseline = []ImpactMetric{
			{"Baseline Impact (same period)", Currency(bc.BaselineWeeklyImpactUSD)},
			{"Event Impact", Currency(bc.EventImpactUSD)},
			{"Additional Impact", Currency(bc.AdditionalImpactUSD)},
			{"Impact Multiplier", Ratio(bc.ImpactMultiplier, 1)},
			{"Impact Increase", Percent(bc.ImpactIncreasePct)},
		}
	}
	if h := pr.HistoricalReference; h != nil {
		r.History = []ImpactMetric{
			{"Reference", h.ReferenceScope},
			{"Events Analyzed", Int(h.EventsAnalyzed)},
			{"Avg Visitor Increase", Percent(h.AvgVisitorIncreasePct)},
			{"Avg Price Increase", Percent(h.AvgPriceIncreasePct)},
			{"Avg Occupancy Boost", Percent(h.AvgOccupancyBoostPct)},
		}
		r.Similar = h.SimilarEvents
	}
	return r
}

// share computes part's share of total. Either side unknown, or a zero
// total, leaves the percentage unavailable.
func share(label string, part, total analytics.Metric) BreakdownShare {
	s := BreakdownShare{Label: label, Amount: Currency(part), Percent: NotAvailable}
	p, okP := part.Float()
	t, okT := total.Float()
	if okP && okT && t != 0 {
		s.Percent = printer.Sprintf("%.0f%% of total", p/t*100)
	}
	return s
}
