// Command wmediumd-sim runs the simulated wireless medium against the
// transports configured on its command line, per spec.md §6.
package main

import (
	"flag"
	"fmt"
	"math"
	"net"
	"os"

	"github.com/iti/evt/evtm"

	"github.com/iti/wmediumd-go/medium"
	"github.com/iti/wmediumd-go/transport"
)

const version = "wmediumd-go 0.1.0"

func main() {
	os.Exit(run())
}

// run mirrors Cizor's cmd/simulator/main.go flag-driven setup, adapted to
// spec.md §6's flag set instead of a fixed scenario.
func run() int {
	help := flag.Bool("h", false, "print usage and exit")
	ver := flag.Bool("V", false, "print version and exit")
	configPath := flag.String("c", "", "configuration file (required)")
	perPath := flag.String("x", "", "PER table file")
	logLevel := flag.Int("l", int(medium.SevInfo), "log level 0..7")
	timeSock := flag.String("t", "", "external time-control socket")
	vhostSock := flag.String("u", "", "vhost-user socket path")
	apiSock := flag.String("a", "", "API socket path")
	forceNetlink := flag.Bool("n", false, "force netlink even with vhost-user")
	flag.Parse()

	if *help {
		flag.Usage()
		return 0
	}
	if *ver {
		fmt.Println(version)
		return 0
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "wmediumd-sim: -c FILE is required")
		return 1
	}

	log := medium.NewLogger(medium.Severity(*logLevel))

	cfg, err := medium.LoadConfig(*configPath)
	if err != nil {
		log.Logf(medium.SevEmergency, "configuration load failed", "err", err)
		return 1
	}

	var per medium.PERTable
	if *perPath != "" {
		per, err = medium.LoadPERTable(*perPath)
		if err != nil {
			log.Logf(medium.SevEmergency, "PER table load failed", "err", err)
			return 1
		}
	}

	evtMgr := evtm.New()
	sched := medium.NewScheduler(evtMgr)

	m, err := medium.Build(cfg, per, sched, log)
	if err != nil {
		log.Logf(medium.SevEmergency, "building medium failed", "err", err)
		return 1
	}

	reg := transport.NewRegistry(m, log)

	useNetlink := *vhostSock == "" || *forceNetlink
	if useNetlink {
		nl, err := transport.DialNetlink()
		if err != nil {
			log.Logf(medium.SevEmergency, "netlink dial failed", "err", err)
			return 1
		}
		defer nl.Close()
		c := reg.Connect(transport.KindNetlink, nl)
		go runNetlinkIngress(reg, c, nl, log)
	}

	if *vhostSock != "" {
		vh := transport.NewVhostUserTransport()
		c := reg.Connect(transport.KindVhostUser, vh)
		go runVhostIngress(reg, c, vh, log)
	}

	if *apiSock != "" {
		ln, err := net.Listen("unix", *apiSock)
		if err != nil {
			log.Logf(medium.SevEmergency, "API socket listen failed", "err", err)
			return 1
		}
		defer ln.Close()
		go acceptAPIClients(reg, ln, log)
	}

	if *timeSock != "" {
		log.Logf(medium.SevNotice, "external time-control socket configured but driven out of process", "socket", *timeSock)
	}

	// The event manager advances simulated time as jobs are scheduled and
	// fired; this call blocks for the program's lifetime, per spec.md §5's
	// single-threaded, cooperatively-driven event loop.
	evtMgr.Run(math.MaxFloat64)
	return 0
}

func runNetlinkIngress(reg *transport.Registry, c *transport.Client, nl *transport.NetlinkTransport, log *medium.Logger) {
	for {
		in, err := nl.Receive()
		if err != nil {
			log.Logf(medium.SevError, "netlink receive failed", "err", err)
			reg.Disconnect(c)
			return
		}
		if err := reg.Ingress(c, in); err != nil {
			log.Logf(medium.SevInfo, "netlink ingress rejected", "err", err)
		}
	}
}

func runVhostIngress(reg *transport.Registry, c *transport.Client, vh *transport.VhostUserTransport, log *medium.Logger) {
	for {
		desc, ok := vh.PopIngress()
		if !ok {
			return
		}
		in, err := transport.DecodeVhostIngress(desc)
		if err != nil {
			log.Logf(medium.SevInfo, "vhost-user ingress decode failed", "err", err)
			continue
		}
		if err := reg.Ingress(c, in); err != nil {
			log.Logf(medium.SevInfo, "vhost-user ingress rejected", "err", err)
		}
	}
}

func acceptAPIClients(reg *transport.Registry, ln net.Listener, log *medium.Logger) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Logf(medium.SevError, "API socket accept failed", "err", err)
			return
		}
		go serveAPIClient(reg, conn, log)
	}
}

func serveAPIClient(reg *transport.Registry, conn net.Conn, log *medium.Logger) {
	t := transport.NewAPISocketTransport(conn)
	c := reg.Connect(transport.KindAPISocket, t)
	defer func() {
		reg.Disconnect(c)
		t.Close()
	}()

	for {
		msgType, payload, err := t.ReadMessage()
		if err != nil {
			log.Logf(medium.SevInfo, "API client disconnected", "err", err)
			return
		}
		if err := t.HandleRegistration(reg, c, msgType, payload); err != nil {
			log.Logf(medium.SevError, "API socket write failed", "err", err)
			return
		}
	}
}
