package medium

import "math"

// Timing constants from spec.md §4.D, in microseconds.
const (
	slotUsec = 9.0
	sifsUsec = 16.0
	difsUsec = 2*slotUsec + sifsUsec // 34
)

// rates100kbps is a legacy 802.11 PHY rate ladder in units of 100kbps. The
// first four entries are the CCK rates usable only at 2.4GHz; the remaining
// eight are the OFDM rates shared by 2.4GHz (802.11g) and 5GHz (802.11a).
var rates100kbps = []int{10, 20, 55, 110, 60, 90, 120, 180, 240, 360, 480, 540}

// rateOf maps a rate_idx and operating frequency onto a PHY bitrate in
// 100kbps units, per spec.md §4.D's pkt_duration contract. 5GHz operation
// skips the CCK rates since they don't exist on that band.
func rateOf(rateIdx int, freqMHz int) int {
	base := 0
	if freqMHz >= 5000 {
		base = 4
	}
	i := base + rateIdx
	if i < 0 {
		i = 0
	}
	if i >= len(rates100kbps) {
		i = len(rates100kbps) - 1
	}
	return rates100kbps[i]
}

// pktDuration implements spec.md §4.D's formula:
//
//	pkt_duration(len, rate_100kbps) = 16 + 4 + 4*ceil((16 + 8*len + 6)*10 / (4*rate)) usec
func pktDuration(length int, rate100kbps int) float64 {
	if rate100kbps <= 0 {
		return 16 + 4
	}
	num := float64(16+8*length+6) * 10
	den := float64(4 * rate100kbps)
	return 16 + 4 + 4*math.Ceil(num/den)
}

// ackTime is ack_time from spec.md §4.D: the duration of a 14-byte ACK sent
// at the base rate (rate_idx=0), plus an SIFS.
func ackTime(freqMHz int) float64 {
	return pktDuration(14, rateOf(0, freqMHz)) + sifsUsec
}

// classifyAC implements spec.md §4.D step 1: a non-Data frame goes to VO, a
// non-QoS Data frame goes to BE, and a QoS Data frame is classified by its
// TID via the 802.1D table.
func classifyAC(f *Frame) AC {
	if !f.Flags.Data {
		return ACVO
	}
	if !f.Flags.QoSData {
		return ACBE
	}
	offset := 24
	if f.Flags.FourAddr {
		offset = 30
	}
	if offset >= len(f.Payload) {
		return ACBE
	}
	tid := int(f.Payload[offset]) & 0x0f
	if ac, ok := dot1dToAC[tid]; ok {
		return ac
	}
	return ACBE
}

// acPriorityOrEqual returns the ACs at least as important as ac, i.e. the
// numeric range [ACVO, ac] — spec.md §9's open question resolution for the
// "same-or-higher priority" scan in step 5 of §4.D.
func acPriorityOrEqual(ac AC) []AC {
	out := make([]AC, 0, 4)
	for a := ACVO; a <= ac; a++ {
		out = append(out, a)
	}
	return out
}
