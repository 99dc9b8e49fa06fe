package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evently-app/evently/internal/view"
)

const (
	sessionCookie = "evently_session"
	sessionIdle   = 2 * time.Hour
)

type session struct {
	prediction *view.PredictionSession
	lastSeen   time.Time
}

// Sessions keeps each visitor's prediction state in memory, keyed by a
// random id stored in a cookie.
type Sessions struct {
	mu   sync.Mutex
	byID map[string]*session
	now  func() time.Time
}

// NewSessions creates an empty session store.
func NewSessions() *Sessions {
	return &Sessions{byID: make(map[string]*session), now: time.Now}
}

// Prediction returns the caller's prediction session, creating the session
// (and setting its cookie) when the request carries none.
func (s *Sessions) Prediction(w http.ResponseWriter, r *http.Request) *view.PredictionSession {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.byID[c.Value]; ok {
			sess.lastSeen = now
			return sess.prediction
		}
	}

	s.pruneLocked(now)

	id := uuid.NewString()
	sess := &session{prediction: view.NewPredictionSession(), lastSeen: now}
	s.byID[id] = sess
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess.prediction
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// pruneLocked drops sessions idle for longer than sessionIdle. Sessions with
// a submission in flight are kept.
func (s *Sessions) pruneLocked(now time.Time) {
	for id, sess := range s.byID {
		if now.Sub(sess.lastSeen) <= sessionIdle {
			continue
		}
		if sess.prediction.Snapshot().Phase == view.PhaseSubmitting {
			continue
		}
		delete(s.byID, id)
	}
}
