// Package transport implements spec.md §4.F, the client multiplexer: the
// three transport kinds (generic netlink, vhost-user, API socket) share one
// client table and one set of ingress/egress rules, all expressed against
// the medium package's Frame/Station/Medium types rather than duplicating
// them.
package transport

import (
	"github.com/iti/wmediumd-go/medium"
)

// Kind identifies which of the three transports a Client speaks.
type Kind int

const (
	KindNetlink Kind = iota
	KindVhostUser
	KindAPISocket
)

func (k Kind) String() string {
	switch k {
	case KindNetlink:
		return "netlink"
	case KindVhostUser:
		return "vhost-user"
	case KindAPISocket:
		return "api-socket"
	default:
		return "?"
	}
}

// Transport is the egress half of a client's transport handle: the part
// that differs between netlink, vhost-user and the API socket. Ingress is
// handled uniformly by Registry.Ingress once a transport has decoded its
// wire format into an IngressFrame.
type Transport interface {
	// SendReception serializes a cloned reception of f, as heard by
	// receiver at effSignal dBm, out to the client.
	SendReception(receiver *medium.Station, f *medium.Frame, effSignal int) error

	// SendStatus serializes a transmit-status report for f back to the
	// client that originated it.
	SendStatus(f *medium.Frame) error

	// Close releases the transport's underlying handle.
	Close() error
}

// IngressFrame is the transport-agnostic shape every wire format decodes
// ingress messages into, per spec.md §4.F: "Accept 802.11 frame messages
// containing transmitter hwaddr, payload, flags, TX-info (MRR list),
// cookie, frequency."
type IngressFrame struct {
	TransmitterHW medium.MACAddr
	Payload       []byte
	Flags         medium.FrameFlags
	Rates         []medium.RateAttempt
	Cookie        uint64
	Freq          int // 0 means absent; defaultFreqMHz is substituted
}

const defaultFreqMHz = 2412

// Client is one registered transport endpoint, multiplexed over the shared
// station table of the *medium.Medium it was registered against.
type Client struct {
	ID         int
	Kind       Kind
	Transport  Transport
	registered bool // API-socket broadcast-set membership (spec.md §4.F)
}

// broadcastEligible reports whether c should receive unclaimed broadcast/
// multicast receptions. Netlink and vhost-user clients join the broadcast
// set unconditionally at connect time, matching the original wmediumd's
// ctx->clients semantics (wmediumd_vu_connected, and the netlink client
// added in main()); only API-socket clients are gated behind an explicit
// REGISTER message.
func (c *Client) broadcastEligible() bool {
	return c.Kind != KindAPISocket || c.registered
}

// Registry is the client table from spec.md §4.F, wired to a *medium.Medium
// via its OnDeliver/OnStatus hooks so the medium package never imports this
// one.
type Registry struct {
	medium   *medium.Medium
	log      *medium.Logger
	clients  map[int]*Client
	nextID   int
}

// NewRegistry builds a client registry bound to m, installing the egress
// hooks medium.Ingress's delivery engine (§4.E) calls into.
func NewRegistry(m *medium.Medium, log *medium.Logger) *Registry {
	r := &Registry{
		medium:  m,
		log:     log,
		clients: make(map[int]*Client),
	}
	m.OnDeliver = r.onDeliver
	m.OnStatus = r.onStatus
	return r
}

// Connect registers a new client of the given kind and transport handle.
// Netlink and vhost-user clients join the broadcast set immediately, since
// they have no REGISTER message of their own (spec.md §4.F, and the
// original wmediumd's unconditional ctx->clients insertion for both kinds);
// API-socket clients stay out of the broadcast set until Register is
// called.
func (r *Registry) Connect(kind Kind, t Transport) *Client {
	r.nextID++
	c := &Client{ID: r.nextID, Kind: kind, Transport: t}
	if kind != KindAPISocket {
		c.registered = true
	}
	r.clients[c.ID] = c
	return c
}

// Register adds c to the broadcast set (the API socket's REGISTER message,
// spec.md §4.F). Returns a *medium.ProtocolError if c is already registered.
func (r *Registry) Register(c *Client) error {
	if c.registered {
		return &medium.ProtocolError{Reason: "client already registered"}
	}
	c.registered = true
	return nil
}

// Unregister removes c from the broadcast set. Returns a
// *medium.ProtocolError if c was not registered.
func (r *Registry) Unregister(c *Client) error {
	if !c.registered {
		return &medium.ProtocolError{Reason: "client not registered"}
	}
	c.registered = false
	return nil
}

// Ingress implements spec.md §4.F's ingress rules: resolve the sender by
// its 802.11 addr2 against the station table, reject undersized frames,
// update the sender's reported hwaddr, claim the station for this client if
// unclaimed, and hand the assembled frame to the medium.
func (r *Registry) Ingress(c *Client, in IngressFrame) error {
	if len(in.Payload) < 16 {
		r.log.DropFrame("frame shorter than 16 bytes", in.Cookie)
		return &medium.ProtocolError{Reason: "frame shorter than 16 bytes"}
	}

	addr2 := extractAddr2(in.Payload)
	st, ok := r.medium.Stations.LookupByVirtualAddr(addr2)
	if !ok {
		r.log.DropFrame("unknown sender "+addr2.String(), in.Cookie)
		return &medium.LookupError{Reason: "unknown sender " + addr2.String()}
	}

	r.medium.Stations.SetHWAddr(st, in.TransmitterHW)
	if st.Client == nil {
		st.Client = c
	}

	freq := in.Freq
	if freq == 0 {
		freq = defaultFreqMHz
	}

	f := &medium.Frame{
		Payload:   in.Payload,
		Length:    len(in.Payload),
		Cookie:    in.Cookie,
		Src:       st,
		DstAddr:   extractAddr1(in.Payload),
		Rates:     in.Rates,
		Freq:      freq,
		Flags:     in.Flags,
		SrcClient: c,
	}
	r.medium.Ingress(f)
	return nil
}

// Disconnect implements spec.md §4.F's client-lifecycle cleanup: dissociate
// every station claimed by c, cancel and drop every frame c originated that
// is still pending in a queue, then drop the client record.
func (r *Registry) Disconnect(c *Client) {
	for _, st := range r.medium.Stations.Iter() {
		if st.Client == c {
			st.Client = nil
		}
		for ac := medium.ACVO; ac <= medium.ACBK; ac++ {
			drained := st.Queues[ac].DrainMatching(func(f *medium.Frame) bool {
				return f.SrcClient == c
			})
			for _, f := range drained {
				r.medium.Sched.Remove(f.Job())
			}
		}
	}
	delete(r.clients, c.ID)
}

// onDeliver is the medium's OnDeliver hook: route a cloned reception to the
// receiving station's claimed client, or — per spec.md §4.F — to every
// registered client if the station hasn't been claimed yet.
func (r *Registry) onDeliver(receiver *medium.Station, f *medium.Frame, effSignal int) {
	if c, ok := receiver.Client.(*Client); ok && c != nil {
		if err := c.Transport.SendReception(receiver, f, effSignal); err != nil {
			r.log.Logf(medium.SevError, "reception send failed", "client", c.ID, "err", err)
		}
		return
	}
	for _, c := range r.clients {
		if !c.broadcastEligible() {
			continue
		}
		if err := c.Transport.SendReception(receiver, f, effSignal); err != nil {
			r.log.Logf(medium.SevError, "reception send failed", "client", c.ID, "err", err)
		}
	}
}

// onStatus is the medium's OnStatus hook: report back to whichever client
// originated f.
func (r *Registry) onStatus(f *medium.Frame) {
	c, ok := f.SrcClient.(*Client)
	if !ok || c == nil {
		return
	}
	if err := c.Transport.SendStatus(f); err != nil {
		r.log.Logf(medium.SevError, "status send failed", "client", c.ID, "err", err)
	}
}

// extractAddr2 reads the 802.11 transmitter address (addr2), bytes 10..16
// of the frame header, used to resolve the sending station (spec.md §4.F).
func extractAddr2(payload []byte) medium.MACAddr {
	var addr medium.MACAddr
	copy(addr[:], payload[10:16])
	return addr
}

// extractAddr1 reads the 802.11 receiver address (addr1), bytes 4..10 of
// the frame header — the destination a frame's delivery target is matched
// against.
func extractAddr1(payload []byte) medium.MACAddr {
	var addr medium.MACAddr
	copy(addr[:], payload[4:10])
	return addr
}
