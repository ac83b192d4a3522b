package medium

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// MACAddr is a 6-byte 802.11 hardware or virtual address.
type MACAddr [6]byte

var BroadcastAddr = MACAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

func (a MACAddr) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", a[0], a[1], a[2], a[3], a[4], a[5])
}

// IsMulticast reports whether the address is the broadcast address or has
// the I/G bit set, per the usual 802.11/Ethernet convention.
func (a MACAddr) IsMulticast() bool {
	return a[0]&0x01 != 0
}

// Position is a station's location in meters, used by the path-loss link
// model (spec.md §4.B).
type Position struct {
	X, Y float64
}

// Vector is a movement vector in meters/second, loaded from the station
// config and stored on the Station. Nothing in this repository advances a
// station's position by it.
type Vector struct {
	DX, DY float64
}

// Queue is a station's per-access-category FIFO of pending frames. Queue
// operations mirror spec.md §4.A's contract: push_back, peek_last_deadline,
// remove, drain_matching.
type Queue struct {
	ac     AC
	frames []*Frame
}

func newQueue(ac AC) *Queue {
	return &Queue{ac: ac, frames: make([]*Frame, 0, 4)}
}

// PushBack appends frame to the tail of the queue.
func (q *Queue) PushBack(f *Frame) {
	f.queueIdx = len(q.frames)
	q.frames = append(q.frames, f)
}

// PeekLastDeadline returns the deadline of the most recently enqueued
// frame still present, and whether the queue is non-empty. This backs
// spec.md §4.D step 5's cross-queue deadline scan.
func (q *Queue) PeekLastDeadline() (deadline float64, ok bool) {
	if len(q.frames) == 0 {
		return 0, false
	}
	last := q.frames[len(q.frames)-1]
	if last.job == nil {
		return 0, false
	}
	return last.job.deadline, true
}

// Remove deletes frame from the queue if present, preserving FIFO order of
// the remainder. Returns true if frame was found. f.queueIdx (maintained by
// PushBack/Remove/DrainMatching) gives the removal its position directly
// instead of an O(n) search; slices.Delete then does the splice, the way
// ITI-mrnes's group-membership checks lean on golang.org/x/exp/slices
// instead of a hand-rolled loop.
func (q *Queue) Remove(f *Frame) bool {
	i := f.queueIdx
	if i < 0 || i >= len(q.frames) || q.frames[i] != f {
		return false
	}
	q.frames = slices.Delete(q.frames, i, i+1)
	for j := i; j < len(q.frames); j++ {
		q.frames[j].queueIdx = j
	}
	return true
}

// PopFront removes f from the queue wherever it sits (it is the same
// operation as Remove) and reports whether f was found. The delivery engine
// calls Remove directly.
func (q *Queue) PopFront(f *Frame) bool {
	return q.Remove(f)
}

// DrainMatching removes every frame satisfying pred and returns them, used
// by the client multiplexer's disconnect cleanup (spec.md §4.F).
func (q *Queue) DrainMatching(pred func(*Frame) bool) []*Frame {
	var removed []*Frame
	kept := q.frames[:0]
	for _, f := range q.frames {
		if pred(f) {
			removed = append(removed, f)
		} else {
			kept = append(kept, f)
		}
	}
	q.frames = kept
	for i, f := range q.frames {
		f.queueIdx = i
	}
	return removed
}

// Len reports how many frames are queued.
func (q *Queue) Len() int { return len(q.frames) }

// Station is a single virtual radio, per spec.md §3.
type Station struct {
	Index int

	VirtualAddr MACAddr // used for station-to-station addressing
	HWAddr      MACAddr // identifies the radio instance on the kernel/vhost side

	Pos      Position
	Movement Vector
	TxPower  int // dBm

	Queues [4]*Queue // indexed by AC

	// Client is the transport client most recently observed sending a frame
	// from this station, or nil if no client has claimed it yet.
	Client any
}

func newStation(index int, vaddr, hwaddr MACAddr) *Station {
	st := &Station{
		Index:       index,
		VirtualAddr: vaddr,
		HWAddr:      hwaddr,
		TxPower:     15,
	}
	st.Queues[ACBK] = newQueue(ACBK)
	st.Queues[ACBE] = newQueue(ACBE)
	st.Queues[ACVI] = newQueue(ACVI)
	st.Queues[ACVO] = newQueue(ACVO)
	return st
}

// Table is the station table and address-lookup index from spec.md §4.A.
// Station indices are dense [0,N) for the lifetime of the table, matching
// the invariant in spec.md §3: removal compacts the slice and reindexes.
type Table struct {
	stations  []*Station
	byVirtual map[MACAddr]*Station
	byHW      map[MACAddr]*Station
}

// NewTable constructs an empty station table.
func NewTable() *Table {
	return &Table{
		stations:  make([]*Station, 0),
		byVirtual: make(map[MACAddr]*Station),
		byHW:      make(map[MACAddr]*Station),
	}
}

// Add creates a new station at the next dense index with the given virtual
// address, and returns it. The station's hardware address starts as the
// zero value; it is filled in on first ingress per spec.md §4.F.
func (t *Table) Add(vaddr MACAddr) *Station {
	st := newStation(len(t.stations), vaddr, MACAddr{})
	t.stations = append(t.stations, st)
	t.byVirtual[vaddr] = st
	return st
}

// Remove deletes the station at index idx, compacting the table so indices
// stay dense. Any matrix rebuild triggered by this must happen in the
// caller (spec.md §5: matrices are reallocated only when the station set
// changes).
func (t *Table) Remove(idx int) error {
	if idx < 0 || idx >= len(t.stations) {
		return configErrorf("station index %d out of range", idx)
	}
	removed := t.stations[idx]
	delete(t.byVirtual, removed.VirtualAddr)
	delete(t.byHW, removed.HWAddr)

	t.stations = append(t.stations[:idx], t.stations[idx+1:]...)
	for i := idx; i < len(t.stations); i++ {
		t.stations[i].Index = i
	}
	return nil
}

// LookupByVirtualAddr finds a station by its virtual (station-to-station)
// MAC address.
func (t *Table) LookupByVirtualAddr(addr MACAddr) (*Station, bool) {
	st, ok := t.byVirtual[addr]
	return st, ok
}

// LookupByHWAddr finds a station by the hardware address the kernel/vhost
// side uses.
func (t *Table) LookupByHWAddr(addr MACAddr) (*Station, bool) {
	st, ok := t.byHW[addr]
	return st, ok
}

// SetHWAddr updates a station's reported hardware address and re-indexes
// the lookup map, per spec.md §4.F's "update sender's hwaddr" step.
func (t *Table) SetHWAddr(st *Station, addr MACAddr) {
	delete(t.byHW, st.HWAddr)
	st.HWAddr = addr
	t.byHW[addr] = st
}

// Iter returns the stations in index order, the deterministic order the
// testable properties in spec.md §8 rely on.
func (t *Table) Iter() []*Station {
	return t.stations
}

// Len reports the number of stations.
func (t *Table) Len() int { return len(t.stations) }
