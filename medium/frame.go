package medium

// AC is an 802.11 access category. Numeric order follows spec.md §9's open
// question resolution: VO=0 is the highest priority, BK=3 the lowest, so
// "AC k or more important" is the range [0,k].
type AC int

const (
	ACVO AC = 0
	ACVI AC = 1
	ACBE AC = 2
	ACBK AC = 3
)

func (ac AC) String() string {
	switch ac {
	case ACVO:
		return "VO"
	case ACVI:
		return "VI"
	case ACBE:
		return "BE"
	case ACBK:
		return "BK"
	default:
		return "?"
	}
}

// cwBounds holds the fixed contention-window bounds from spec.md §3.
type cwBounds struct {
	min, max int
}

var acContentionWindow = map[AC]cwBounds{
	ACBK: {min: 15, max: 1023},
	ACBE: {min: 15, max: 1023},
	ACVI: {min: 7, max: 15},
	ACVO: {min: 3, max: 7},
}

// dot1dToAC is the 802.1D priority (QoS TID low bits) to access-category
// mapping used by spec.md §4.D step 1.
var dot1dToAC = map[int]AC{
	1: ACBK, 2: ACBK,
	0: ACBE, 3: ACBE,
	4: ACVI, 5: ACVI,
	6: ACVO, 7: ACVO,
}

// RateAttempt is one entry of a multi-rate-retry chain: (rate_idx, count).
// A rate_idx of -1 marks an invalidated/unused entry, per spec.md §4.D step 4.
type RateAttempt struct {
	RateIdx int
	Count   int
}

// FrameFlags mirrors the subset of 802.11 TX-info flags the medium cares
// about.
type FrameFlags struct {
	NoAck      bool // kernel requested no ACK (mgmt/multicast are no-ack in simulateMRR regardless)
	Acked      bool // set by the scheduler once the MRR simulation succeeds
	QoSData    bool
	Data       bool
	FourAddr   bool // 4-address format, shifts the QoS control field offset
}

// Frame is the in-flight unit of the simulation: an ingested 802.11 frame
// together with everything the pipeline (§4.B-§4.E) computes about it.
// Lifetime: allocated on ingress, lives in exactly one station/AC queue and
// one scheduler job until delivered or cancelled by client disconnect.
type Frame struct {
	Payload []byte
	Length  int
	Cookie  uint64

	Src *Station // resolved from 802.11 addr2
	// DstAddr is the raw 802.11 destination address; may be the broadcast
	// address, a multicast address, or a known station's virtual MAC.
	DstAddr MACAddr
	Dst     *Station // resolved unicast receiver, nil for multicast/unknown

	Rates []RateAttempt // MRR chain, mutated in place by the scheduler
	Freq  int           // MHz, default 2412 if absent on ingress

	Flags FrameFlags
	AC    AC

	Signal   int     // dBm, computed receive-side SNR-derived signal
	Duration float64 // microseconds spent on the medium (MRR send_time)

	// SrcClient identifies which connected client originated this frame, so
	// the client multiplexer can cancel it on disconnect (spec.md §4.F).
	SrcClient any

	queueIdx int  // index within its station/AC queue, maintained by Queue
	job      *Job // scheduler handle, non-nil between enqueue and delivery/cancel
}

// Job returns the frame's scheduler handle, or nil if it has already been
// delivered or cancelled. The client multiplexer (§4.F) uses this to cancel
// every job sourced from a disconnecting client.
func (f *Frame) Job() *Job { return f.job }

// TruncateRates implements spec.md §4.D step 4: once attempt j (0-based)
// succeeds, keep tx_rates[i].Count for i<used as-is except the last used
// entry is truncated to j+1 attempts, and every later entry is invalidated.
func (f *Frame) TruncateRates(usedEntry, attemptsOnThatEntry int) {
	for i := range f.Rates {
		switch {
		case i < usedEntry:
			// untouched: earlier entries were fully exhausted
		case i == usedEntry:
			f.Rates[i].Count = attemptsOnThatEntry
		default:
			f.Rates[i] = RateAttempt{RateIdx: -1, Count: -1}
		}
	}
	f.Flags.Acked = true
}
