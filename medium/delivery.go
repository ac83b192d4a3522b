package medium

// delivery.go implements spec.md §4.E: the scheduler-fired callback that
// clones a frame out to every matching receiver and reports transmit status
// back to the source.

// deliver is the evtm callback the Scheduler invokes at a frame's deadline.
// It implements spec.md §4.E in order: dequeue, clone to matching receivers
// if acked (with the broadcast per-receiver re-check and the multicast
// interference short-circuit spec.md §9 calls out specifically), record
// interference for an unacked frame, then emit tx-status.
func (m *Medium) deliver(f *Frame) {
	f.Src.Queues[f.AC].Remove(f)

	multicast := f.DstAddr.IsMulticast()

	if f.Flags.Acked {
		for _, r := range m.Stations.Iter() {
			if r.Index == f.Src.Index {
				continue
			}
			if multicast {
				m.deliverMulticast(f, r)
			} else if r.VirtualAddr == f.DstAddr {
				m.deliverUnicast(f, r)
			}
		}
	} else {
		// spec.md §4.E: "If not acked, record interference contribution only."
		m.Interference.Update(f.Src, f.Signal, f.Duration)
	}

	if m.OnStatus != nil {
		m.OnStatus(f)
	}
	m.Trace.Record(m.Sched.Now(), f, "deliver")
}

// deliverMulticast implements the broadcast branch of spec.md §4.E: an
// independent per-receiver SNR recomputation, a CCA silent-drop, the
// interference short-circuit documented in spec.md §9 ("loud senders
// drown out everyone in my vicinity this tick"), and finally a PER roll at
// the base MRR rate.
func (m *Medium) deliverMulticast(f *Frame, r *Station) {
	sigma := m.Link.Signal(f.Src, r) + m.Fading.Sample(f.Src, r)
	if sigma < CCAThreshold {
		return
	}
	if m.Interference.Update(f.Src, sigma, f.Duration) {
		return
	}
	offset := m.Interference.Offset(f.Src.Index, r.Index, m.Rng)
	effSignal := sigma - offset
	errorProb := m.Link.ErrorProb(effSignal-NoiseFloor, f.baseRateIdx(), f.Freq, f.Length, f.Src, r)
	if m.Rng.RandU01() < errorProb {
		return
	}
	if m.OnDeliver != nil {
		m.OnDeliver(r, f, effSignal)
	}
}

// deliverUnicast implements the unicast branch of spec.md §4.E: no
// per-receiver SNR recomputation (the frame's ingress-time signal is
// reused), same interference short-circuit.
func (m *Medium) deliverUnicast(f *Frame, r *Station) {
	if m.Interference.Update(f.Src, f.Signal, f.Duration) {
		return
	}
	if m.OnDeliver != nil {
		m.OnDeliver(r, f, f.Signal)
	}
}

// baseRateIdx returns the rate index of the first MRR entry that is not
// invalidated (normally the 0th), or 0 if there is none, for the "fetch
// error_prob at the 0th MRR rate" step in spec.md §4.E.
func (f *Frame) baseRateIdx() int {
	for _, r := range f.Rates {
		if r.RateIdx >= 0 {
			return r.RateIdx
		}
	}
	return 0
}
