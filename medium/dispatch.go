package medium

// dispatch.go implements the frame scheduler, spec.md §4.D — the hardest
// subsystem per spec.md §2. It ties together the station table (A), link
// model (B), interference accumulator (C) and the evtm-backed Scheduler to
// turn an ingested frame into an enqueued, deadline-bearing job.

import "github.com/iti/rngstream"

// Medium is the whole simulated wireless medium: the station table, the
// active link-model strategy, the interference map, the scheduler handle
// and the RNG stream, wired together by the configuration loader (§4.G).
// It is the single point every pipeline stage (B through E) is reached
// through, matching spec.md §9's "thread a scheduler handle through
// callbacks rather than process-wide state" note generalized to the whole
// simulation.
type Medium struct {
	Stations     *Table
	Link         LinkModel
	Interference *Interference
	Sched        *Scheduler
	Fading       FadingModel
	Rng          *rngstream.RngStream
	Log          *Logger
	Trace        *Trace

	// OnDeliver is invoked once per successful clone, OnStatus once per
	// frame after its clones (§5's ordering guarantee), wiring the pipeline
	// to the client multiplexer (F) without this package importing it.
	OnDeliver func(receiver *Station, f *Frame, effSignal int)
	OnStatus  func(f *Frame)
}

// NewMedium wires the components the configuration loader has already
// built into a ready-to-run Medium. Fading defaults to ZeroFading, matching
// spec.md §4.D step 2's "default returns 0."
func NewMedium(stations *Table, link LinkModel, interference *Interference, sched *Scheduler, rng *rngstream.RngStream, log *Logger) *Medium {
	return &Medium{
		Stations:     stations,
		Link:         link,
		Interference: interference,
		Sched:        sched,
		Fading:       ZeroFading{},
		Rng:          rng,
		Log:          log,
		Trace:        NewTrace(false),
	}
}

// Ingress implements spec.md §4.D end to end: classify, compute receive-side
// SNR, simulate MRR, truncate the rate list on ACK, compute the deadline
// and enqueue. f.Src must already be resolved (the client multiplexer, §4.F,
// does that before calling in).
func (m *Medium) Ingress(f *Frame) {
	f.AC = classifyAC(f)

	multicast := f.DstAddr.IsMulticast()
	if !multicast {
		if dst, ok := m.Stations.LookupByVirtualAddr(f.DstAddr); ok {
			f.Dst = dst
		}
	}

	var snrForErrorProb int
	if multicast || f.Dst == nil {
		// spec.md §4.D step 2: "for multicast, defer per-receiver
		// evaluation to delivery and use SNR_DEFAULT for the status report."
		f.Signal = dbmFromSNR(SNRDefault)
		snrForErrorProb = SNRDefault
	} else {
		offset := m.Interference.Offset(f.Src.Index, f.Dst.Index, m.Rng)
		f.Signal = m.Link.Signal(f.Src, f.Dst) - offset + m.Fading.Sample(f.Src, f.Dst)
		snrForErrorProb = f.Signal - NoiseFloor
	}

	res := m.simulateMRR(f, snrForErrorProb, multicast)
	f.Duration = res.sendTime

	if res.acked {
		if res.usedEntry >= 0 {
			f.TruncateRates(res.usedEntry, res.usedAttempts)
		} else {
			f.Flags.Acked = true
		}
	}

	deadline := m.computeDeadline(f, res.sendTime)
	f.Src.Queues[f.AC].PushBack(f)
	m.Sched.Add(deadline, f, m.deliver)

	m.Trace.Record(m.Sched.Now(), f, "enqueue")
}

type mrrResult struct {
	sendTime   float64 // microseconds
	acked      bool
	usedEntry  int // -1 if no entry was truncated (e.g. the zero-rate edge case)
	usedAttempts int
}

// isManagement reports whether f represents an 802.11 management frame for
// the purposes of the no-ack decision in spec.md §4.D step 3. Data frames
// (QoS or not) are the only ones that ever wait for an ACK.
func isManagement(f *Frame) bool { return !f.Flags.Data }

// simulateMRR implements spec.md §4.D step 3's multi-rate-retry walk,
// including the two documented edge cases: an empty rate list produces
// zero send_time, and unacked unless the frame is multicast (in which case
// it's treated as acked with zero duration).
func (m *Medium) simulateMRR(f *Frame, snrForErrorProb int, multicast bool) mrrResult {
	if len(f.Rates) == 0 {
		return mrrResult{sendTime: 0, acked: multicast, usedEntry: -1}
	}

	noack := f.Flags.NoAck || isManagement(f) || multicast
	ac := acContentionWindow[f.AC]
	cw := ac.min

	var fixedChoice float64
	if m.Link.FixedRandom() {
		fixedChoice = m.Rng.RandU01()
	}

	sendTime := 0.0
	for entryIdx, attempt := range f.Rates {
		if attempt.RateIdx < 0 {
			continue
		}
		rate := rateOf(attempt.RateIdx, f.Freq)
		for j := 0; j < attempt.Count; j++ {
			sendTime += difsUsec + pktDuration(f.Length, rate)

			if noack {
				return mrrResult{sendTime: sendTime, acked: true, usedEntry: entryIdx, usedAttempts: j + 1}
			}

			if j > 0 {
				sendTime += float64(cw) * slotUsec / 2
				cw = min(ac.max, 2*cw+1)
			}
			sendTime += ackTime(f.Freq)

			choice := fixedChoice
			if !m.Link.FixedRandom() {
				choice = m.Rng.RandU01()
			}
			errorProb := m.Link.ErrorProb(snrForErrorProb, attempt.RateIdx, f.Freq, f.Length, f.Src, f.Dst)
			failed := choice <= errorProb
			if !failed {
				return mrrResult{sendTime: sendTime, acked: true, usedEntry: entryIdx, usedAttempts: j + 1}
			}
		}
	}
	return mrrResult{sendTime: sendTime, acked: false, usedEntry: -1}
}

// computeDeadline implements spec.md §4.D step 5: scan every AC at least as
// important as f.AC, across every station, for the latest already-scheduled
// deadline, and serialize this frame's airtime after it (or after t0 if the
// medium is idle).
func (m *Medium) computeDeadline(f *Frame, sendTimeUsec float64) float64 {
	t0 := m.Sched.Now()
	latest := t0
	for _, ac := range acPriorityOrEqual(f.AC) {
		for _, st := range m.Stations.Iter() {
			if d, ok := st.Queues[ac].PeekLastDeadline(); ok && d > latest {
				latest = d
			}
		}
	}
	return latest + sendTimeUsec/1e6
}
