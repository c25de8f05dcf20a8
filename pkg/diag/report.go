package diag

import "sync"

// Report accumulates diagnostics for a whole build. A diagnostic identical to
// one already reported is dropped, so the same file/reason pair is shown once.
type Report struct {
	mu      sync.Mutex
	items   []Diagnostic
	seen    map[Diagnostic]bool
	flushed int
}

func NewReport() *Report {
	return &Report{seen: map[Diagnostic]bool{}}
}

// Add appends diagnostics in order, skipping duplicates.
func (r *Report) Add(diags ...Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range diags {
		if r.seen[d] {
			continue
		}
		r.seen[d] = true
		r.items = append(r.items, d)
	}
}

// Items returns a copy of everything reported so far.
func (r *Report) Items() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Diagnostic(nil), r.items...)
}

// Flush emits the diagnostics added since the previous flush.
func (r *Report) Flush(logger Logger) {
	r.mu.Lock()
	pending := r.items[r.flushed:]
	r.flushed = len(r.items)
	r.mu.Unlock()

	for _, d := range pending {
		Emit(logger, d)
	}
}
