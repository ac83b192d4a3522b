package medium

import (
	"testing"

	"github.com/iti/rngstream"
)

// TestInterferenceUpdateIgnoresDecodableSignal covers spec.md §4.C: a
// frame loud enough to be decoded never contributes to the interference
// accumulation.
func TestInterferenceUpdateIgnoresDecodableSignal(t *testing.T) {
	im := NewInterference(2, true)
	contributed := im.Update(&Station{Index: 0}, CCAThreshold, 1000)
	if contributed {
		t.Fatalf("expected a decodable signal (>= CCA threshold) not to contribute")
	}
	snap := im.Snapshot()
	if snap.Duration[0][1] != 0 {
		t.Fatalf("expected no duration accumulated for a decodable signal, got %v", snap.Duration[0][1])
	}
}

func TestInterferenceUpdateAccumulatesBelowCCA(t *testing.T) {
	im := NewInterference(2, true)
	contributed := im.Update(&Station{Index: 0}, CCAThreshold-5, 1000)
	if !contributed {
		t.Fatalf("expected a sub-CCA signal to contribute")
	}
	snap := im.Snapshot()
	if snap.Duration[0][1] != 1000 {
		t.Fatalf("expected duration accumulated against every other station, got %v", snap.Duration[0][1])
	}
}

// TestInterferenceDecayResetsWindow covers property 4 from spec.md §8: the
// periodic decay converts accumulated duration into prob_col and resets
// duration to zero.
func TestInterferenceDecayResetsWindow(t *testing.T) {
	im := NewInterference(2, true)
	im.Update(&Station{Index: 0}, CCAThreshold-10, 5000)
	im.Decay()

	snap := im.Snapshot()
	if snap.Duration[0][1] != 0 {
		t.Fatalf("expected duration reset to 0 after decay, got %v", snap.Duration[0][1])
	}
	if got, want := snap.ProbCol[0][1], 0.5; got != want {
		t.Fatalf("expected prob_col = duration/window = %v, got %v", want, got)
	}

	// A second decay with no further updates must drive prob_col to 0.
	im.Decay()
	snap = im.Snapshot()
	if snap.ProbCol[0][1] != 0 {
		t.Fatalf("expected prob_col to reset to 0 once duration stays at 0, got %v", snap.ProbCol[0][1])
	}
}

func TestInterferenceDisabledIsInert(t *testing.T) {
	im := NewInterference(2, false)
	if im.Update(&Station{Index: 0}, CCAThreshold-10, 5000) {
		t.Fatalf("expected a disabled interference map never to report a contribution")
	}
	if im.Offset(0, 1, rngstream.New("x")) != 0 {
		t.Fatalf("expected a disabled interference map to contribute no offset")
	}
}

func TestInterferenceOffsetIsZeroBelowOneMilliwattTotal(t *testing.T) {
	im := NewInterference(3, true)
	// Station 0 interferes at -91 dBm (1 mW), so even if its small collision
	// probability fires, the total never exceeds 1 mW.
	im.Update(&Station{Index: 0}, CCAThreshold-1, 1)
	im.Decay()
	rng := rngstream.New("offset-test")
	if off := im.Offset(2, 1, rng); off != 0 {
		t.Fatalf("expected a negligible single contributor to round to zero offset, got %d", off)
	}
}
