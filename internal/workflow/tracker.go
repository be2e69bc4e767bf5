package workflow

import (
	"sync"

	"go-jobmatch-web/internal/domain"
)

type controlKey struct {
	view string
	app  domain.ID
}

// Tracker is the set of status controls with a request outstanding, keyed by
// view instance and application.
type Tracker struct {
	mu       sync.Mutex
	inFlight map[controlKey]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{inFlight: make(map[controlKey]struct{})}
}

// Begin marks the control busy. It returns false if it already was.
func (t *Tracker) Begin(view string, id domain.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := controlKey{view: view, app: id}
	if _, busy := t.inFlight[k]; busy {
		return false
	}
	t.inFlight[k] = struct{}{}
	return true
}

func (t *Tracker) End(view string, id domain.ID) {
	t.mu.Lock()
	delete(t.inFlight, controlKey{view: view, app: id})
	t.mu.Unlock()
}

func (t *Tracker) InFlight(view string, id domain.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, busy := t.inFlight[controlKey{view: view, app: id}]
	return busy
}
