package medium

import (
	"math"

	"github.com/iti/rngstream"
)

// FadingModel is the pluggable fading() hook from spec.md §4.D step 2: an
// additive per-call signal perturbation, zero by default.
type FadingModel interface {
	Sample(src, dst *Station) int
}

// ZeroFading is the spec.md default: "default returns 0."
type ZeroFading struct{}

func (ZeroFading) Sample(src, dst *Station) int { return 0 }

// ShadowFading is the supplemental fading model from SPEC_FULL.md §4.D+,
// grounded on the shadow-fading concept in
// other_examples/openthread-ot-ns__fading_model.go: rather than redrawing a
// Gaussian perturbation on every call (expensive, and not reproducible
// frame-to-frame), it samples one normally-distributed value per ordered
// station pair the first time that pair is sampled, and caches it.
type ShadowFading struct {
	sigma  float64
	rng    *rngstream.RngStream
	cached map[[2]int]int
}

// NewShadowFading builds a fading model with standard deviation sigma dB,
// drawing from rng. sigma of 0 degenerates to ZeroFading's behavior.
func NewShadowFading(sigma float64, rng *rngstream.RngStream) *ShadowFading {
	return &ShadowFading{sigma: sigma, rng: rng, cached: make(map[[2]int]int)}
}

func (f *ShadowFading) Sample(src, dst *Station) int {
	if f.sigma <= 0 {
		return 0
	}
	key := [2]int{src.Index, dst.Index}
	if v, ok := f.cached[key]; ok {
		return v
	}
	v := int(gaussian(f.rng) * f.sigma)
	f.cached[key] = v
	return v
}

// gaussian draws a standard-normal sample from two uniforms via the
// Box-Muller transform; rngstream only exposes RandU01.
func gaussian(rng *rngstream.RngStream) float64 {
	const twoPi = 6.283185307179586
	u1 := rng.RandU01()
	if u1 <= 1e-12 {
		u1 = 1e-12
	}
	u2 := rng.RandU01()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(twoPi*u2)
}
