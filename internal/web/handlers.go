package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/evently-app/evently/internal/globe"
	"github.com/evently-app/evently/internal/query"
	"github.com/evently-app/evently/internal/view"
	"github.com/evently-app/evently/pkg/analytics"
)

// wait bounds how long a page waits for its queries.
func (s *Server) wait(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.opts.RenderWait)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.wait(r)
	defer cancel()

	selected, _ := strconv.Atoi(r.URL.Query().Get("city"))
	page := globe.NewLanding(s.queries.Cities(ctx), selected, s.opts.APIURL)
	s.render.page(w, r, page.Error.HTTPStatus(), "landing", page.Status.Loading(), page)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.wait(r)
	defer cancel()

	page := view.NewDashboard(s.queries.KPIs(ctx), s.opts.APIURL)
	s.render.page(w, r, page.Error.HTTPStatus(), "dashboard", page.Status.Loading(), page)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.wait(r)
	defer cancel()

	filter, adj := view.ParseEventFilter(r.URL.Query())

	var (
		events query.Result[[]analytics.Event]
		cities query.Result[[]analytics.City]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events = s.queries.Events(gctx, filter)
		return nil
	})
	g.Go(func() error {
		cities = s.queries.Cities(gctx)
		return nil
	})
	_ = g.Wait()

	page := view.NewEventsPage(events, cities, filter, s.opts.APIURL)
	page.Adjustments = adj
	s.render.page(w, r, page.Error.HTTPStatus(), "events", page.Status.Loading(), page)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		page := view.EventDetail{
			Status: view.StatusFailed,
			Error:  view.NotFoundPanel("event", "No event with id "+strconv.Quote(chi.URLParam(r, "id"))),
		}
		s.render.page(w, r, http.StatusNotFound, "event", false, page)
		return
	}

	ctx, cancel := s.wait(r)
	defer cancel()

	var (
		event  query.Result[*analytics.Event]
		impact query.Result[*analytics.EventImpact]
		series query.Result[*analytics.TimeSeries]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		event = s.queries.Event(gctx, id)
		// The series window depends on the event's dates.
		if event.Ready() {
			if event.Data.StartDate.IsZero() {
				series.Err = &analytics.ValidationError{Field: "start_date", Message: "event has no start date"}
				return nil
			}
			series = s.queries.TimeSeries(gctx, view.SeriesQuery(*event.Data))
		}
		return nil
	})
	g.Go(func() error {
		impact = s.queries.Impact(gctx, id)
		return nil
	})
	_ = g.Wait()

	page := view.NewEventDetail(event, impact, series, s.opts.APIURL)
	loading := page.Status.Loading() || (page.Status.Ready() && page.Series.Status.Loading())
	s.render.page(w, r, page.Error.HTTPStatus(), "event", loading, page)
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		s.handleNotFound(w, r)
		return
	}

	res := s.queries.RecalculateImpact(r.Context(), id)
	if err := res.Failure(); err != nil {
		zap.L().Warn("web: recalculate impact failed", zap.Int("event_id", id), zap.Error(err))
	}
	http.Redirect(w, r, "/events/"+strconv.Itoa(id), http.StatusSeeOther)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.wait(r)
	defer cancel()

	form, adj := view.ParseCompareForm(r.URL.Query())

	var (
		choices []view.Option
		cmp     query.Result[*analytics.Comparison]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if form.Mode == view.CompareEvents {
			if res := s.queries.Events(gctx, analytics.EventFilter{}); res.Ready() {
				choices = view.EventChoices(res.Data)
			}
			return nil
		}
		if res := s.queries.Cities(gctx); res.Ready() {
			choices = view.CityChoices(res.Data)
		}
		return nil
	})
	if form.Ready() {
		g.Go(func() error {
			if form.Mode == view.CompareEvents {
				cmp = s.queries.CompareEvents(gctx, form.IDs)
			} else {
				cmp = s.queries.CompareCities(gctx, form.IDs)
			}
			return nil
		})
	}
	_ = g.Wait()

	page := view.NewComparePage(form, choices, cmp, s.opts.APIURL)
	page.Adjustments = adj
	s.render.page(w, r, page.Error.HTTPStatus(), "compare", !page.NeedMore && page.Status.Loading(), page)
}

func (s *Server) handleSimulator(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.wait(r)
	defer cancel()

	form, adj := view.ParseSimulatorForm(r.URL.Query())

	var (
		events query.Result[[]analytics.Event]
		sim    query.Result[*analytics.AttendanceSimulation]
		growth query.Result[*analytics.GrowthProjection]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events = s.queries.Events(gctx, analytics.EventFilter{})
		return nil
	})
	if form.EventID > 0 {
		g.Go(func() error {
			sim = s.queries.SimulateAttendance(gctx, form.Scenario())
			return nil
		})
		g.Go(func() error {
			growth = s.queries.SimulateGrowth(gctx, form.EventID, form.Years, form.GrowthPct)
			return nil
		})
	}
	_ = g.Wait()

	page := view.NewSimulatorPage(form, events, sim, growth, s.opts.APIURL)
	page.Adjustments = adj
	loading := page.Picked && (page.Status.Loading() || page.GrowthStatus.Loading())
	s.render.page(w, r, page.Error.HTTPStatus(), "simulator", loading, page)
}

func (s *Server) predictPage(ctx context.Context, snap view.PredictionSnapshot) view.PredictPage {
	opts := s.queries.PredictionOptions(ctx)
	return view.NewPredictPage(snap, opts.Data, opts.Failure(), s.opts.APIURL)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.wait(r)
	defer cancel()

	sess := s.sessions.Prediction(w, r)
	page := s.predictPage(ctx, sess.Snapshot())
	s.render.page(w, r, http.StatusOK, "predict", page.Submitting(), page)
}

// handlePredictSubmit runs one prediction and redirects back to the form,
// which renders the session's result.
func (s *Server) handlePredictSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form, in, adj := view.ParsePredictionForm(r.PostForm)
	sess := s.sessions.Prediction(w, r)

	err := sess.Submit(r.Context(), form, in, adj, s.client.Predict)
	if errors.Is(err, view.ErrSubmitInFlight) {
		ctx, cancel := s.wait(r)
		defer cancel()

		page := s.predictPage(ctx, sess.Snapshot())
		page.Notice = "A prediction is already running. Its result will appear here when it finishes."
		s.render.page(w, r, http.StatusConflict, "predict", true, page)
		return
	}
	if err != nil {
		zap.L().Warn("web: prediction failed", zap.String("city", in.City), zap.Error(err))
	}
	http.Redirect(w, r, "/predict", http.StatusSeeOther)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render.page(w, r, http.StatusOK, "about", false, s.content.About)
}

func (s *Server) handleMethodology(w http.ResponseWriter, r *http.Request) {
	s.render.page(w, r, http.StatusOK, "methodology", false, s.content.Methodology)
}

func (s *Server) handleCaseStudies(w http.ResponseWriter, r *http.Request) {
	page := s.content.SelectCaseStudy(r.URL.Query().Get("study"))
	s.render.page(w, r, http.StatusOK, "case_studies", false, page)
}

// handleMarkers serves the city markers as GeoJSON for the globe renderer.
func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.wait(r)
	defer cancel()

	cities := s.queries.Cities(ctx)
	status, err := view.Combine(cities)
	switch status {
	case view.StatusLoading:
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "cities are still loading"})
		return
	case view.StatusFailed:
		writeJSON(w, http.StatusBadGateway, map[string]string{"detail": analytics.Message(err)})
		return
	}

	body, err := globe.MarshalMarkers(cities.Data)
	if err != nil {
		zap.L().Error("web: encode markers", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(body)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"cache":    s.queries.Cache().Stats(),
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render.page(w, r, http.StatusNotFound, "notfound", false, r.URL.Path)
}
