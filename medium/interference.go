package medium

import (
	"math"

	"github.com/iti/rngstream"
)

// interferenceWindowUsec is the 10ms accumulation window from spec.md §4.C.
const interferenceWindowUsec = 10000.0

// Interference is the per-directional-link collision-probability map from
// spec.md §3/§4.C. Indexing is interference_map[i][j]: i is the station
// whose transmissions are being accumulated as noise, j is every other
// station the accumulation is attributed against (spec.md's "duration[s,*]"
// notation — the same signal/duration pair is recorded against every
// column for source s, not just the frame's actual destination).
type Interference struct {
	n        int
	enabled  bool
	duration [][]float64
	signal   [][]int
	probCol  [][]float64
}

// NewInterference builds an N-station interference map. enabled mirrors
// spec.md §4.C: "enabled iff the user requested interference modeling."
func NewInterference(n int, enabled bool) *Interference {
	im := &Interference{n: n, enabled: enabled}
	im.duration = make([][]float64, n)
	im.signal = make([][]int, n)
	im.probCol = make([][]float64, n)
	for i := 0; i < n; i++ {
		im.duration[i] = make([]float64, n)
		im.signal[i] = make([]int, n)
		im.probCol[i] = make([]float64, n)
	}
	return im
}

// Enabled reports whether interference modeling is active.
func (im *Interference) Enabled() bool { return im != nil && im.enabled }

// Update records station s's transmission as an interference source, per
// spec.md §4.C: a frame loud enough to be decoded (sigma >= CCA_THRESHOLD)
// never contributes. Returns true when the frame *did* contribute — the
// delivery engine (§4.E) uses that to suppress the clone for this frame.
func (im *Interference) Update(s *Station, sigma int, frameDurationUsec float64) bool {
	if !im.Enabled() {
		return false
	}
	if sigma >= CCAThreshold {
		return false
	}
	i := s.Index
	for j := 0; j < im.n; j++ {
		if j == i {
			continue
		}
		im.duration[i][j] += frameDurationUsec
		im.signal[i][j] = sigma
	}
	return true
}

// Decay implements the periodic 10ms window boundary from spec.md §4.C:
// every (i,j), i != j, becomes prob_col = duration/10000 and duration resets.
func (im *Interference) Decay() {
	if !im.Enabled() {
		return
	}
	for i := 0; i < im.n; i++ {
		for j := 0; j < im.n; j++ {
			if i == j {
				continue
			}
			im.probCol[i][j] = im.duration[i][j] / interferenceWindowUsec
			im.duration[i][j] = 0
		}
	}
}

// dbmToMW is the clamped dBm->mW conversion from spec.md §4.C.
func dbmToMW(signalDBm int) float64 {
	delta := float64(NoiseFloor - signalDBm)
	switch {
	case delta >= 31:
		return 0.001
	case delta <= -31:
		return 1000
	default:
		return math.Pow(10, -delta/10)
	}
}

// Offset computes the interference penalty Delta from spec.md §4.C for a
// frame arriving at station dst, excluding the actual transmitter src: each
// other station i independently contributes mW(signal[i][dst]) if a
// Bernoulli(prob_col[i][dst]) coin flip succeeds.
func (im *Interference) Offset(src, dst int, rng *rngstream.RngStream) int {
	if !im.Enabled() {
		return 0
	}
	total := 0.0
	for i := 0; i < im.n; i++ {
		if i == src || i == dst {
			continue
		}
		p := im.probCol[i][dst]
		if p <= 0 {
			continue
		}
		if rng.RandU01() < p {
			total += dbmToMW(im.signal[i][dst])
		}
	}
	if total <= 1.0 {
		return 0
	}
	return int(math.Round(10 * math.Log10(total)))
}

// Snapshot returns a deep copy of the duration/signal/prob_col state,
// letting diagnostics and tests inspect it without racing the (single
// threaded) event loop — there's no real race, this just avoids handing
// out aliasing slices.
type InterferenceSnapshot struct {
	Duration [][]float64
	Signal   [][]int
	ProbCol  [][]float64
}

func (im *Interference) Snapshot() InterferenceSnapshot {
	snap := InterferenceSnapshot{
		Duration: make([][]float64, im.n),
		Signal:   make([][]int, im.n),
		ProbCol:  make([][]float64, im.n),
	}
	for i := 0; i < im.n; i++ {
		snap.Duration[i] = append([]float64(nil), im.duration[i]...)
		snap.Signal[i] = append([]int(nil), im.signal[i]...)
		snap.ProbCol[i] = append([]float64(nil), im.probCol[i]...)
	}
	return snap
}

// StartDecayLoop schedules the recurring 10ms decay job against sched, the
// way ITI-mrnes's periodic jobs reschedule themselves from inside their own
// handler rather than relying on an external ticker.
func StartDecayLoop(sched *Scheduler, im *Interference) {
	if !im.Enabled() {
		return
	}
	var tick func(now float64)
	tick = func(now float64) {
		im.Decay()
		sched.ScheduleAfter(interferenceWindowUsec/1e6, tick)
	}
	sched.ScheduleAfter(interferenceWindowUsec/1e6, tick)
}
