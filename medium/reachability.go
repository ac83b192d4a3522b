package medium

// reachability.go is a supplemental diagnostic from SPEC_FULL.md §4.G+: once
// a link model is built, walk it as a graph and flag any station that
// cannot hear, or be heard by, any other station. It is grounded on
// ITI-mrnes's routes.go, which builds the same kind of gonum graph from its
// own device-connectivity map (buildconnGraph) to run Dijkstra over it; here
// the edge predicate is "is the signal strong enough to be received" rather
// than "is there a cable", and the question asked is connectivity rather
// than shortest path, so graph/topo's connected-components algorithm
// replaces graph/path's Dijkstra.

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// CheckReachability builds an undirected graph over table's stations, with
// an edge between a and b whenever either direction's receive signal clears
// CCA_THRESHOLD, and returns the virtual addresses of every station whose
// connected component contains no one else. Called once after the link
// model is built (spec.md §4.G); config.Build logs whatever it returns.
func CheckReachability(table *Table, link LinkModel) []MACAddr {
	stations := table.Iter()
	if len(stations) < 2 {
		return nil
	}

	g := simple.NewUndirectedGraph()
	nodes := make(map[int]simple.Node, len(stations))
	for _, st := range stations {
		n := simple.Node(st.Index)
		nodes[st.Index] = n
		g.AddNode(n)
	}
	for _, a := range stations {
		for _, b := range stations {
			if a.Index >= b.Index {
				continue
			}
			if link.Signal(a, b) >= CCAThreshold || link.Signal(b, a) >= CCAThreshold {
				g.SetEdge(simple.Edge{F: nodes[a.Index], T: nodes[b.Index]})
			}
		}
	}

	var isolated []MACAddr
	for _, component := range topo.ConnectedComponents(g) {
		if len(component) == 1 {
			idx := int(component[0].ID())
			isolated = append(isolated, stations[idx].VirtualAddr)
		}
	}
	return isolated
}
