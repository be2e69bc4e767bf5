package workflow

import (
	"sync"
	"time"

	"go-jobmatch-web/internal/domain"
)

const defaultMaxViews = 1024

// History records, per view instance, the status an application was first
// shown with and every acknowledged change after it. The oldest view is
// dropped once maxViews is exceeded.
type History struct {
	mu       sync.Mutex
	views    map[string]map[domain.ID][]domain.StatusChange
	order    []string
	maxViews int
	now      func() time.Time
}

func NewHistory(maxViews int) *History {
	if maxViews <= 0 {
		maxViews = defaultMaxViews
	}
	return &History{
		views:    make(map[string]map[domain.ID][]domain.StatusChange),
		maxViews: maxViews,
		now:      time.Now,
	}
}

// Seed records the initial status unless the application already has a history in this view.
func (h *History) Seed(view string, id domain.ID, status domain.ApplicationStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries := h.viewLocked(view)
	if len(entries[id]) > 0 {
		return
	}
	entries[id] = []domain.StatusChange{{Status: status, At: h.now()}}
}

func (h *History) Append(view string, id domain.ID, status domain.ApplicationStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries := h.viewLocked(view)
	entries[id] = append(entries[id], domain.StatusChange{Status: status, At: h.now()})
}

func (h *History) Entries(view string, id domain.ID) []domain.StatusChange {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries, ok := h.views[view]
	if !ok {
		return nil
	}
	out := make([]domain.StatusChange, len(entries[id]))
	copy(out, entries[id])
	return out
}

func (h *History) viewLocked(view string) map[domain.ID][]domain.StatusChange {
	if entries, ok := h.views[view]; ok {
		return entries
	}
	entries := make(map[domain.ID][]domain.StatusChange)
	h.views[view] = entries
	h.order = append(h.order, view)
	for len(h.order) > h.maxViews {
		delete(h.views, h.order[0])
		h.order = h.order[1:]
	}
	return entries
}
