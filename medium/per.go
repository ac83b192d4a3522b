package medium

import "sort"

// PERTable is the external collaborator named in spec.md §4.B: something
// the configuration loader populates (from an on-disk PER table, out of
// scope per §1) and the link model consults through a single function.
type PERTable interface {
	ErrorProb(snrDB int, rateIdx int, length int) float64
}

// perPoint is one (snr, per) sample for a given rate_idx row.
type perPoint struct {
	snr int
	per float64
}

// DefaultPERTable is a small built-in PER curve used when the loader is not
// given an external table (spec.md §4.B: "error_prob uses a PER table").
// Every rate shares the same shape, shifted so that higher rate indices
// need more SNR to reach the same error rate — a coarse but monotonic
// stand-in for the tables wmediumd ships for real, grounded on the
// "clamp to row range, then interpolate" convention spec.md describes.
type DefaultPERTable struct {
	rows map[int][]perPoint
}

// NewDefaultPERTable builds the table for rate indices 0..11, matching the
// rate ladder in rate.go.
func NewDefaultPERTable() *DefaultPERTable {
	t := &DefaultPERTable{rows: make(map[int][]perPoint)}
	base := []perPoint{
		{snr: -10, per: 1.0},
		{snr: 0, per: 0.9},
		{snr: 5, per: 0.5},
		{snr: 10, per: 0.1},
		{snr: 15, per: 0.02},
		{snr: 20, per: 0.005},
		{snr: 25, per: 0.001},
	}
	for idx := 0; idx < len(rates100kbps); idx++ {
		shift := idx * 2 // faster rates need proportionally more SNR
		row := make([]perPoint, len(base))
		for i, p := range base {
			row[i] = perPoint{snr: p.snr + shift, per: p.per}
		}
		t.rows[idx] = row
	}
	return t
}

// ErrorProb clamps snrDB to the row's range and linearly interpolates
// between the bracketing samples, per spec.md §4.B's PER-lookup contract.
func (t *DefaultPERTable) ErrorProb(snrDB int, rateIdx int, length int) float64 {
	return interpolateRow(t.rows[rateIdx], snrDB)
}

// interpolateRow is the clamp-then-interpolate lookup shared by
// DefaultPERTable and FilePERTable.
func interpolateRow(row []perPoint, snrDB int) float64 {
	if len(row) == 0 {
		return 1.0
	}
	if snrDB <= row[0].snr {
		return row[0].per
	}
	last := row[len(row)-1]
	if snrDB >= last.snr {
		return last.per
	}
	pos := sort.Search(len(row), func(i int) bool { return row[i].snr >= snrDB })
	hi := row[pos]
	lo := row[pos-1]
	frac := float64(snrDB-lo.snr) / float64(hi.snr-lo.snr)
	return lo.per + frac*(hi.per-lo.per)
}

// PERPoint is one (snr, per) sample of an on-disk PER curve, exported so a
// custom table (the CLI's -x flag) can be authored as yaml/json.
type PERPoint struct {
	SNR int     `yaml:"snr" json:"snr"`
	PER float64 `yaml:"per" json:"per"`
}

// PERCurve is one rate index's full curve.
type PERCurve struct {
	RateIdx int        `yaml:"rate_idx" json:"rate_idx"`
	Points  []PERPoint `yaml:"points" json:"points"`
}

// FilePERTable is a PERTable built from an on-disk set of curves, one per
// rate index, interpolated the same way DefaultPERTable is. Rate indices
// with no curve in the file fall back to DefaultPERTable's shape.
type FilePERTable struct {
	rows     map[int][]perPoint
	fallback *DefaultPERTable
}

// NewFilePERTable builds a FilePERTable from parsed curves, sorting each by
// SNR so interpolateRow's sort.Search precondition holds regardless of the
// file's authoring order.
func NewFilePERTable(curves []PERCurve) *FilePERTable {
	t := &FilePERTable{rows: make(map[int][]perPoint, len(curves)), fallback: NewDefaultPERTable()}
	for _, c := range curves {
		row := make([]perPoint, len(c.Points))
		for i, p := range c.Points {
			row[i] = perPoint{snr: p.SNR, per: p.PER}
		}
		sort.Slice(row, func(i, j int) bool { return row[i].snr < row[j].snr })
		t.rows[c.RateIdx] = row
	}
	return t
}

func (t *FilePERTable) ErrorProb(snrDB int, rateIdx int, length int) float64 {
	if row, ok := t.rows[rateIdx]; ok {
		return interpolateRow(row, snrDB)
	}
	return t.fallback.ErrorProb(snrDB, rateIdx, length)
}
