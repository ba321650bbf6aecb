package trace

import "sync"

// Kind enumerates event types.
type Kind int

const (
	// ProbeEvaluated: the residual was evaluated at a bracketing probe.
	ProbeEvaluated Kind = iota
	// ProbeSkipped: evaluation failed recoverably; the point was skipped.
	ProbeSkipped
	// BracketFound: two consecutive probes straddle a sign change (or a
	// probe hit zero).
	BracketFound
	// BracketExhausted: the expansion budget ran out without a sign change.
	BracketExhausted
	// BisectionStep: one midpoint evaluation and bracket update.
	BisectionStep
	// Converged: an eigenvalue estimate met the tolerance.
	Converged
	// Retry: a slot is retried with a larger expansion step.
	Retry
	// SlotFailed: a slot failed and the sequence stops.
	SlotFailed
	// Materialized: a converged eigenvalue got its normalized trajectory.
	Materialized
)

var kindNames = [...]string{
	ProbeEvaluated:   "probe",
	ProbeSkipped:     "probe_skipped",
	BracketFound:     "bracket_found",
	BracketExhausted: "bracket_exhausted",
	BisectionStep:    "bisection_step",
	Converged:        "converged",
	Retry:            "retry",
	SlotFailed:       "slot_failed",
	Materialized:     "materialized",
}

// String returns the snake_case name of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}

	return kindNames[k]
}

// Event is one observation. Fields irrelevant to a Kind stay zero.
type Event struct {
	Kind Kind

	// Run and Slot identify the sequence search and the 1-based mode index;
	// both are empty/zero for single searches.
	Run  string
	Slot int

	Lambda    float64 // probe, midpoint or converged λ
	Residual  float64 // residual at Lambda
	Lo, Hi    float64 // current bracket, when one exists
	Iteration int     // bisection iteration or retry number
	Step      float64 // expansion step Δ (Retry, BracketExhausted)
	Scale     float64 // normalization factor (Materialized)
	Err       error   // cause (ProbeSkipped, SlotFailed)
}

// Observer receives events. Implementations must be safe for use from the
// goroutine that runs the search; Recorder and the zap adapter are also
// safe for concurrent use.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

// Emit delivers e to o; a nil observer drops it.
func Emit(o Observer, e Event) {
	if o != nil {
		o.Observe(e)
	}
}

// Multi returns an observer forwarding to every non-nil observer in obs.
func Multi(obs ...Observer) Observer {
	var live []Observer
	for _, o := range obs {
		if o != nil {
			live = append(live, o)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}

	return ObserverFunc(func(e Event) {
		for _, o := range live {
			o.Observe(e)
		}
	})
}

// Stamp returns an observer that sets Run and Slot on every event before
// forwarding it to o. A nil o yields nil.
func Stamp(o Observer, run string, slot int) Observer {
	if o == nil {
		return nil
	}

	return ObserverFunc(func(e Event) {
		e.Run, e.Slot = run, slot
		o.Observe(e)
	})
}

// Recorder stores events in arrival order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Observe appends e.
func (r *Recorder) Observe(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Event(nil), r.events...)
}

// Filter returns the recorded events of the given kind.
func (r *Recorder) Filter(k Kind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for _, e := range r.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}

	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
