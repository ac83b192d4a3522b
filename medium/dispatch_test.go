package medium

import (
	"testing"

	"github.com/iti/rngstream"
)

func newTestMedium(link LinkModel) *Medium {
	return &Medium{
		Stations:     NewTable(),
		Link:         link,
		Interference: NewInterference(2, false),
		Fading:       ZeroFading{},
		Rng:          rngstream.New("dispatch-test"),
		Log:          NoopLogger(),
	}
}

func TestIsManagementOnlyForNonDataFrames(t *testing.T) {
	if !isManagement(&Frame{Flags: FrameFlags{Data: false}}) {
		t.Fatalf("expected a non-Data frame to be treated as management")
	}
	if isManagement(&Frame{Flags: FrameFlags{Data: true}}) {
		t.Fatalf("expected a Data frame not to be treated as management")
	}
}

func TestSimulateMRREmptyRatesProducesZeroDuration(t *testing.T) {
	m := newTestMedium(&DefaultLink{PER: NewDefaultPERTable()})
	f := &Frame{Rates: nil, AC: ACBE}
	res := m.simulateMRR(f, SNRDefault, false)
	if res.sendTime != 0 {
		t.Fatalf("expected zero send_time for an empty rate list, got %v", res.sendTime)
	}
	if res.acked {
		t.Fatalf("expected an empty rate list to be unacked for unicast")
	}
}

func TestSimulateMRREmptyRatesMulticastIsAcked(t *testing.T) {
	m := newTestMedium(&DefaultLink{PER: NewDefaultPERTable()})
	f := &Frame{Rates: nil, AC: ACBE}
	res := m.simulateMRR(f, SNRDefault, true)
	if !res.acked {
		t.Fatalf("expected an empty rate list to be treated as acked for multicast")
	}
}

func TestSimulateMRRNoAckStopsAfterFirstAttempt(t *testing.T) {
	m := newTestMedium(&DefaultLink{PER: NewDefaultPERTable()})
	f := &Frame{
		Rates:  []RateAttempt{{RateIdx: 0, Count: 4}, {RateIdx: 0, Count: 4}},
		Freq:   2412,
		Length: 100,
		AC:     ACBE,
		Flags:  FrameFlags{NoAck: true, Data: true},
	}
	res := m.simulateMRR(f, SNRDefault, false)
	if !res.acked {
		t.Fatalf("expected a no-ack frame to report success immediately")
	}
	if res.usedEntry != 0 || res.usedAttempts != 1 {
		t.Fatalf("expected the first entry/attempt used, got entry=%d attempts=%d", res.usedEntry, res.usedAttempts)
	}
}

// TestSimulateMRRFixedRandomAlwaysFailsExhaustsChain: with the
// error-prob-matrix variant (fixed-random mode) and an error probability of
// 1.0, every attempt in the chain fails and the frame ends unacked.
func TestSimulateMRRFixedRandomAlwaysFailsExhaustsChain(t *testing.T) {
	link := NewErrorProbMatrixLink(2)
	link.Set(0, 1, 1.0) // certain failure
	m := newTestMedium(link)
	m.Stations = NewTable()
	src := m.Stations.Add(MACAddr{1})
	dst := m.Stations.Add(MACAddr{2})

	f := &Frame{
		Rates:  []RateAttempt{{RateIdx: 0, Count: 2}},
		Freq:   2412,
		Length: 100,
		AC:     ACBE,
		Flags:  FrameFlags{Data: true},
		Src:    src,
		Dst:    dst,
	}
	res := m.simulateMRR(f, SNRDefault, false)
	if res.acked {
		t.Fatalf("expected a certain-failure error-prob matrix to exhaust the chain unacked")
	}
}

func TestSimulateMRRFixedRandomAlwaysSucceedsAcksFirstAttempt(t *testing.T) {
	link := NewErrorProbMatrixLink(2)
	link.Set(0, 1, 0.0) // certain success
	m := newTestMedium(link)
	src := m.Stations.Add(MACAddr{1})
	dst := m.Stations.Add(MACAddr{2})

	f := &Frame{
		Rates:  []RateAttempt{{RateIdx: 0, Count: 4}},
		Freq:   2412,
		Length: 100,
		AC:     ACBE,
		Flags:  FrameFlags{Data: true},
		Src:    src,
		Dst:    dst,
	}
	res := m.simulateMRR(f, SNRDefault, false)
	if !res.acked {
		t.Fatalf("expected a certain-success error-prob matrix to ack")
	}
	if res.usedAttempts != 1 {
		t.Fatalf("expected the first attempt to succeed, got %d attempts used", res.usedAttempts)
	}
}
