package medium

// config.go is component G from spec.md §4.G: it builds the station table
// (A), link model (B) and interference map (C) from an already-parsed
// Config object. Reading that object off disk is the out-of-scope concern
// per spec.md §1; see configio.go for the concrete (but boundary-only)
// implementation this repo still provides.

import (
	"net"

	"github.com/iti/rngstream"
)

// StationConfig describes one virtual station.
type StationConfig struct {
	Name    string  `yaml:"name" json:"name"`
	Mac     string  `yaml:"mac" json:"mac"`
	X       float64 `yaml:"x" json:"x"`
	Y       float64 `yaml:"y" json:"y"`
	TxPower int     `yaml:"tx_power,omitempty" json:"tx_power,omitempty"`
	MoveDX  float64 `yaml:"move_dx,omitempty" json:"move_dx,omitempty"`
	MoveDY  float64 `yaml:"move_dy,omitempty" json:"move_dy,omitempty"`
}

// LinkEntry is one explicit SNR assertion for the "links" variant.
type LinkEntry struct {
	StationA string `yaml:"station_a" json:"station_a"`
	StationB string `yaml:"station_b" json:"station_b"`
	SNR      int    `yaml:"snr" json:"snr"`
}

// ErrorProbEntry is one explicit error-probability assertion for the
// "error_probs" variant.
type ErrorProbEntry struct {
	StationA string  `yaml:"station_a" json:"station_a"`
	StationB string  `yaml:"station_b" json:"station_b"`
	Prob     float64 `yaml:"prob" json:"prob"`
}

// PathLossConfig configures the log-distance model (spec.md §4.B).
type PathLossConfig struct {
	Gamma       float64 `yaml:"gamma" json:"gamma"`
	Xg          float64 `yaml:"xg" json:"xg"`
	ShadowSigma float64 `yaml:"shadow_sigma,omitempty" json:"shadow_sigma,omitempty"`
}

// Config is the parsed configuration object spec.md §4.G's loader consumes.
// Exactly zero or one of Links, ErrorProbs, PathLoss may be set.
type Config struct {
	Name         string           `yaml:"name" json:"name"`
	Stations     []StationConfig  `yaml:"stations" json:"stations"`
	Links        []LinkEntry      `yaml:"links,omitempty" json:"links,omitempty"`
	ErrorProbs   []ErrorProbEntry `yaml:"error_probs,omitempty" json:"error_probs,omitempty"`
	PathLoss     *PathLossConfig  `yaml:"path_loss,omitempty" json:"path_loss,omitempty"`
	Interference bool             `yaml:"interference,omitempty" json:"interference,omitempty"`
	RngSeed      string           `yaml:"rng_seed,omitempty" json:"rng_seed,omitempty"`
}

// countSet tells how many of the three mutually exclusive link
// specifications are present, for the rejection check in spec.md §4.B/§4.G
// (exercised by scenario S4).
func (c *Config) countSet() int {
	n := 0
	if len(c.Links) > 0 {
		n++
	}
	if len(c.ErrorProbs) > 0 {
		n++
	}
	if c.PathLoss != nil {
		n++
	}
	return n
}

func parseMAC(s string) (MACAddr, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return MACAddr{}, configErrorf("invalid mac %q: %v", s, err)
	}
	var addr MACAddr
	copy(addr[:], hw)
	return addr, nil
}

// Build constructs the station table, link model and interference map from
// cfg, and wires them (plus sched and a named RNG stream) into a *Medium.
// It returns a *ConfigError if more than one link-model variant is
// selected, or a station address can't be parsed.
func Build(cfg *Config, per PERTable, sched *Scheduler, log *Logger) (*Medium, error) {
	if cfg.countSet() > 1 {
		return nil, configErrorf("at most one of links, error_probs, path_loss may be set")
	}
	if per == nil {
		per = NewDefaultPERTable()
	}

	table := NewTable()
	for _, sc := range cfg.Stations {
		addr, err := parseMAC(sc.Mac)
		if err != nil {
			return nil, err
		}
		st := table.Add(addr)
		st.Pos = Position{X: sc.X, Y: sc.Y}
		st.Movement = Vector{DX: sc.MoveDX, DY: sc.MoveDY}
		if sc.TxPower != 0 {
			st.TxPower = sc.TxPower
		}
	}

	seed := cfg.RngSeed
	if seed == "" {
		seed = cfg.Name
	}
	rng := rngstream.New(seed)

	var link LinkModel
	n := table.Len()
	switch {
	case len(cfg.Links) > 0:
		m := NewSNRMatrixLink(n, per)
		for _, le := range cfg.Links {
			a, aok := table.LookupByVirtualAddr(mustMAC(le.StationA))
			b, bok := table.LookupByVirtualAddr(mustMAC(le.StationB))
			if !aok || !bok {
				return nil, configErrorf("link entry references unknown station %q/%q", le.StationA, le.StationB)
			}
			m.Set(a.Index, b.Index, le.SNR)
		}
		link = m

	case len(cfg.ErrorProbs) > 0:
		m := NewErrorProbMatrixLink(n)
		for _, pe := range cfg.ErrorProbs {
			a, aok := table.LookupByVirtualAddr(mustMAC(pe.StationA))
			b, bok := table.LookupByVirtualAddr(mustMAC(pe.StationB))
			if !aok || !bok {
				return nil, configErrorf("error_prob entry references unknown station %q/%q", pe.StationA, pe.StationB)
			}
			m.Set(a.Index, b.Index, pe.Prob)
		}
		link = m

	case cfg.PathLoss != nil:
		var shadowFading *ShadowFading
		if cfg.PathLoss.ShadowSigma > 0 {
			shadowFading = NewShadowFading(cfg.PathLoss.ShadowSigma, rng)
		}
		xgf := func(src, dst *Station) float64 {
			if shadowFading != nil {
				return float64(shadowFading.Sample(src, dst))
			}
			return cfg.PathLoss.Xg
		}
		link = NewPathLossLink(table.Iter(), PathLossParams{Gamma: cfg.PathLoss.Gamma, Xg: cfg.PathLoss.Xg}, xgf, per)

	default:
		link = &DefaultLink{PER: per}
	}

	interference := NewInterference(n, cfg.Interference)
	StartDecayLoop(sched, interference)

	if warnings := CheckReachability(table, link); len(warnings) > 0 && log != nil {
		for _, w := range warnings {
			log.Logf(SevWarning, "station radio-isolated", "station", w)
		}
	}

	return NewMedium(table, link, interference, sched, rng, log), nil
}

// mustMAC parses a MAC address literal used only for matching already
// validated station config entries against each other; callers check the
// lookup's ok return rather than this function's error.
func mustMAC(s string) MACAddr {
	addr, _ := parseMAC(s)
	return addr
}
