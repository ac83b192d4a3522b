package medium

import "math"

// Data-plane constants from spec.md §6.
const (
	NoiseFloor  = -91 // dBm
	CCAThreshold = -90 // dBm
	SNRDefault  = 30   // dB
)

// LinkModel is the strategy interface from spec.md §4.B. Exactly one
// concrete variant is active for a given configuration — default,
// snr-matrix, error-prob-matrix or path-loss — selected at load time by the
// configuration loader (§4.G) and never mutated afterward, per the design
// note in spec.md §9 ("a tagged variant with a small dispatch interface,
// not... mutating callbacks on a global context").
type LinkModel interface {
	// Signal returns the receive-side signal in dBm for a transmission from
	// src to dst, before any interference offset or fading is applied.
	Signal(src, dst *Station) int

	// ErrorProb returns the probability in [0,1] that a frame of the given
	// length, sent at rateIdx on freqMHz from src to dst, is not decoded.
	ErrorProb(snrDB, rateIdx, freqMHz, length int, src, dst *Station) float64

	// FixedRandom reports whether the active variant requires the MRR
	// simulation (§4.D step 3) to draw its success/failure coin once and
	// reuse it across every retry attempt, instead of redrawing each time.
	// Only the error-prob-matrix variant sets this.
	FixedRandom() bool
}

func dbmFromSNR(snr int) int { return snr + NoiseFloor }

// ---- default variant ----

// DefaultLink always reports SNR_DEFAULT and defers error probability to a
// PER table, per spec.md §4.B "Default".
type DefaultLink struct {
	PER PERTable
}

func (l *DefaultLink) Signal(src, dst *Station) int { return dbmFromSNR(SNRDefault) }

func (l *DefaultLink) ErrorProb(snrDB, rateIdx, freqMHz, length int, src, dst *Station) float64 {
	return l.PER.ErrorProb(snrDB, rateIdx, length)
}

func (l *DefaultLink) FixedRandom() bool { return false }

// ---- snr-matrix variant ----

// SNRMatrixLink reads an explicit N*N SNR matrix (spec.md §3), error_prob
// still goes through the PER table.
type SNRMatrixLink struct {
	N   int
	SNR []int // flat, index src*N+dst, dB
	PER PERTable
}

// NewSNRMatrixLink allocates an N*N matrix initialized to SNR_DEFAULT, per
// spec.md §3's "Initialized to SNR_DEFAULT=30 dB."
func NewSNRMatrixLink(n int, per PERTable) *SNRMatrixLink {
	m := make([]int, n*n)
	for i := range m {
		m[i] = SNRDefault
	}
	return &SNRMatrixLink{N: n, SNR: m, PER: per}
}

func (l *SNRMatrixLink) at(src, dst int) int { return l.SNR[src*l.N+dst] }

// Set assigns snr[a][b] and its symmetric counterpart snr[b][a], per
// spec.md §8 property 5 ("links config entries set snr[a,b] = snr[b,a]").
func (l *SNRMatrixLink) Set(a, b, snrDB int) {
	l.SNR[a*l.N+b] = snrDB
	l.SNR[b*l.N+a] = snrDB
}

func (l *SNRMatrixLink) Signal(src, dst *Station) int {
	return dbmFromSNR(l.at(src.Index, dst.Index))
}

func (l *SNRMatrixLink) ErrorProb(snrDB, rateIdx, freqMHz, length int, src, dst *Station) float64 {
	return l.PER.ErrorProb(snrDB, rateIdx, length)
}

func (l *SNRMatrixLink) FixedRandom() bool { return false }

// ---- error-prob-matrix variant ----

// ErrorProbMatrixLink uses an explicit N*N error-probability matrix,
// independent of rate/length, per spec.md §4.B. Signal always falls back
// to the default, and this variant runs the MRR simulation in
// fixed-random mode (§4.D step 3, §8 S5).
type ErrorProbMatrixLink struct {
	N     int
	Probs []float64 // flat, index src*N+dst, in [0,1]
}

func NewErrorProbMatrixLink(n int) *ErrorProbMatrixLink {
	return &ErrorProbMatrixLink{N: n, Probs: make([]float64, n*n)}
}

func (l *ErrorProbMatrixLink) at(src, dst int) float64 { return l.Probs[src*l.N+dst] }

func (l *ErrorProbMatrixLink) Set(a, b int, prob float64) {
	l.Probs[a*l.N+b] = prob
	l.Probs[b*l.N+a] = prob
}

func (l *ErrorProbMatrixLink) Signal(src, dst *Station) int { return dbmFromSNR(SNRDefault) }

func (l *ErrorProbMatrixLink) ErrorProb(snrDB, rateIdx, freqMHz, length int, src, dst *Station) float64 {
	if dst == nil {
		// multicast: "result is unused" per spec.md §4.B.
		return 0
	}
	return l.at(src.Index, dst.Index)
}

func (l *ErrorProbMatrixLink) FixedRandom() bool { return true }

// ---- path-loss variant ----

// PathLossParams configures the log-distance model from spec.md §4.B.
type PathLossParams struct {
	Gamma float64 // path-loss exponent
	Xg    float64 // constant shadowing term, dB; see SPEC_FULL.md §4.B+ for the
	// optional per-station-pair sampled variant that overrides this default.
}

const (
	pathLossFreqHz = 2.412e9
	speedOfLight   = 2.99792458e8
)

// pathLoss0 is PL0 = 20*log10(4*pi*f/c) from spec.md §4.B, a fixed constant
// independent of per-frame operating frequency.
func pathLoss0() float64 {
	return 20 * math.Log10(4*math.Pi*pathLossFreqHz/speedOfLight)
}

func distance(a, b Position) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// PathLossLink builds an SNR matrix from station positions and tx power
// using the log-distance model, then behaves like SNRMatrixLink for the
// rest of the pipeline.
type PathLossLink struct {
	*SNRMatrixLink
}

// NewPathLossLink computes snr[s,d] = tx_power[s] - PL(s,d) - noise for
// every ordered pair, per spec.md §4.B. xg returns the shadowing term for a
// given (src,dst) pair — the supplemental per-pair sampling hook from
// SPEC_FULL.md §4.B+; pass a function returning params.Xg unconditionally
// to get the spec.md baseline behavior.
func NewPathLossLink(stations []*Station, params PathLossParams, xg func(src, dst *Station) float64, per PERTable) *PathLossLink {
	n := len(stations)
	l := &PathLossLink{SNRMatrixLink: NewSNRMatrixLink(n, per)}
	pl0 := pathLoss0()
	for _, s := range stations {
		for _, d := range stations {
			if s.Index == d.Index {
				continue
			}
			dist := distance(s.Pos, d.Pos)
			if dist < 1.0 {
				dist = 1.0 // avoid log10(0) for co-located stations
			}
			shadow := params.Xg
			if xg != nil {
				shadow = xg(s, d)
			}
			pl := pl0 + 10*params.Gamma*math.Log10(dist) + shadow
			snr := s.TxPower - int(math.Round(pl)) - NoiseFloor
			l.SNR[s.Index*n+d.Index] = snr
		}
	}
	return l
}

// Recompute rebuilds the SNR matrix in place from the stations' current
// positions, without reallocating. No code in this repository calls it.
func (l *PathLossLink) Recompute(stations []*Station, params PathLossParams, xg func(src, dst *Station) float64) {
	pl0 := pathLoss0()
	n := l.N
	for _, s := range stations {
		for _, d := range stations {
			if s.Index == d.Index {
				continue
			}
			dist := distance(s.Pos, d.Pos)
			if dist < 1.0 {
				dist = 1.0
			}
			shadow := params.Xg
			if xg != nil {
				shadow = xg(s, d)
			}
			pl := pl0 + 10*params.Gamma*math.Log10(dist) + shadow
			l.SNR[s.Index*n+d.Index] = s.TxPower - int(math.Round(pl)) - NoiseFloor
		}
	}
}
