package stream

import (
	"sync"

	"FinCast/internal/domain/models"
)

// Windows keeps a bounded ring of the latest live prices per security.
// It backs the recent-price fallback when a request carries no history.
type Windows struct {
	mu       sync.RWMutex
	capacity int
	rings    map[string]*ring
}

type ring struct {
	buf   []float64
	head  int
	count int
}

// NewWindows creates a window set holding up to capacity prices per security.
func NewWindows(capacity int) *Windows {
	if capacity <= 0 {
		capacity = 128
	}
	return &Windows{
		capacity: capacity,
		rings:    make(map[string]*ring),
	}
}

// Observe records one quote into its security's ring.
func (w *Windows) Observe(q *models.Quote) {
	if q == nil || q.Price <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	r := w.rings[q.Symbol]
	if r == nil {
		r = &ring{buf: make([]float64, w.capacity)}
		w.rings[q.Symbol] = r
	}
	r.buf[r.head] = q.Price
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Recent returns up to n latest prices for the security, oldest first.
// It returns nil when nothing has been observed.
func (w *Windows) Recent(securityID string, n int) []float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r := w.rings[securityID]
	if r == nil || r.count == 0 || n <= 0 {
		return nil
	}
	if n > r.count {
		n = r.count
	}
	out := make([]float64, 0, n)
	start := (r.head - n + len(r.buf)) % len(r.buf)
	for i := 0; i < n; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// Tracked returns the set of securities with at least one observation.
func (w *Windows) Tracked() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.rings))
	for sym := range w.rings {
		out = append(out, sym)
	}
	return out
}
