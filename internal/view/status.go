// Package view derives what each page shows from the state of its queries.
// Nothing here performs I/O; handlers feed it query results and render the
// returned models.
package view

// Status is the render branch of a page or page section.
type Status int

const (
	// StatusLoading means at least one query has not resolved yet.
	StatusLoading Status = iota
	// StatusFailed means a query resolved with an error.
	StatusFailed
	// StatusReady means every query holds data.
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusReady:
		return "ready"
	default:
		return "loading"
	}
}

// Outcome is the part of a query result a status depends on.
type Outcome interface {
	Ready() bool
	Failure() error
}

// Combine derives one status from several query outcomes. Any failure wins
// and the first one is returned; all must be ready for StatusReady.
func Combine(outcomes ...Outcome) (Status, error) {
	for _, o := range outcomes {
		if err := o.Failure(); err != nil {
			return StatusFailed, err
		}
	}
	for _, o := range outcomes {
		if !o.Ready() {
			return StatusLoading, nil
		}
	}
	return StatusReady, nil
}

// Loading reports whether s is StatusLoading.
func (s Status) Loading() bool { return s == StatusLoading }

// Failed reports whether s is StatusFailed.
func (s Status) Failed() bool { return s == StatusFailed }

// Ready reports whether s is StatusReady.
func (s Status) Ready() bool { return s == StatusReady }
