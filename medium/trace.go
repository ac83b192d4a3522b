package medium

// trace.go is adapted from ITI-mrnes's trace.go: a TraceManager that only
// does work when active, so call sites can embed tracing calls everywhere
// without cost when tracing is off.

// TraceInst is one recorded event, analogous to ITI-mrnes's TraceInst but
// keyed on a frame's cookie rather than an execution ID.
type TraceInst struct {
	Time   float64
	Op     string
	Cookie uint64
	Signal int
	AC     string
}

// Trace collects TraceInst records when active, and is a no-op otherwise —
// the same inuse-flag pattern as ITI-mrnes's TraceManager.
type Trace struct {
	active  bool
	records []TraceInst
}

// NewTrace constructs a Trace, active or not.
func NewTrace(active bool) *Trace {
	return &Trace{active: active, records: make([]TraceInst, 0)}
}

// Active reports whether this Trace is recording.
func (t *Trace) Active() bool { return t != nil && t.active }

// Record appends one event if tracing is active.
func (t *Trace) Record(now float64, f *Frame, op string) {
	if !t.Active() {
		return
	}
	t.records = append(t.records, TraceInst{
		Time:   now,
		Op:     op,
		Cookie: f.Cookie,
		Signal: f.Signal,
		AC:     f.AC.String(),
	})
}

// Records returns a copy of everything recorded so far.
func (t *Trace) Records() []TraceInst {
	if t == nil {
		return nil
	}
	return append([]TraceInst(nil), t.records...)
}
