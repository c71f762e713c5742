// Package scenario describes small graphs in YAML and runs an A* query over
// them. It backs the astar command.
//
// YAML format:
//
//	name: five cities
//	directed: false
//	coordinates: geographic   # or planar
//	heuristic: haversine      # defaults by coordinate system
//	nodes:
//	  - {name: a, x: 30, y: 39}   # geographic: x = lon, y = lat
//	  - {name: b, x: 22, y: 19}
//	edges:
//	  - {from: a, to: b}          # cost defaults to the node distance
//	  - {from: b, to: a, cost: 12.5}
//	source: a
//	target: b
package scenario

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"geo_astar/pkg/geo"
	"geo_astar/pkg/graph"
	"geo_astar/pkg/logging"
	"geo_astar/pkg/routing"
)

// Coordinate systems.
const (
	Geographic = "geographic"
	Planar     = "planar"
)

// ErrUnknownNode is returned when an edge or endpoint names a node that the
// scenario does not declare.
var ErrUnknownNode = errors.New("unknown node")

// Waypoint is the node payload of a scenario graph.
type Waypoint struct {
	Name string
	At   orb.Point
}

// Point returns the waypoint position.
func (w Waypoint) Point() orb.Point { return w.At }

// Graph is the graph type scenarios build.
type Graph = graph.SparseGraph[Waypoint, struct{}]

// Scenario is a named graph plus one query.
type Scenario struct {
	Name        string    `yaml:"name"`
	Directed    bool      `yaml:"directed"`
	Coordinates string    `yaml:"coordinates"`
	Heuristic   string    `yaml:"heuristic"`
	Nodes       []NodeDef `yaml:"nodes"`
	Edges       []EdgeDef `yaml:"edges"`
	Source      string    `yaml:"source"`
	Target      string    `yaml:"target"`
}

// NodeDef declares a node. For geographic scenarios X is the longitude and
// Y the latitude in degrees.
type NodeDef struct {
	Name string  `yaml:"name"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// EdgeDef declares an edge. A nil Cost means the distance between the
// endpoints in the scenario's coordinate system.
type EdgeDef struct {
	From string   `yaml:"from"`
	To   string   `yaml:"to"`
	Cost *float64 `yaml:"cost"`
}

// Result is the outcome of running a scenario.
type Result struct {
	Scenario  string
	Heuristic string
	Path      []string
	Cost      float64
	Settled   int
	Reached   bool
}

// Load decodes a scenario from r. Unknown keys are rejected.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if s.Coordinates == "" {
		s.Coordinates = Geographic
	}
	if s.Heuristic == "" {
		s.Heuristic = defaultHeuristic(s.Coordinates)
	}
	return &s, nil
}

// LoadFile reads a scenario from path.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func defaultHeuristic(coords string) string {
	if coords == Planar {
		return "euclidean"
	}
	return "haversine"
}

// Build creates the scenario graph. It returns the graph and the index of
// every named node.
func (s *Scenario) Build() (*Graph, map[string]int, error) {
	var dist func(a, b orb.Point) float64
	switch s.Coordinates {
	case Geographic:
		dist = geo.Distance
	case Planar:
		dist = geo.Euclidean
	default:
		return nil, nil, fmt.Errorf("coordinates must be %q or %q, got %q", Geographic, Planar, s.Coordinates)
	}

	g := graph.NewSparseGraph[Waypoint, struct{}](s.Directed)
	index := make(map[string]int, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.Name == "" {
			return nil, nil, errors.New("node without a name")
		}
		if _, dup := index[n.Name]; dup {
			return nil, nil, fmt.Errorf("duplicate node %q", n.Name)
		}
		idx := g.NextFreeNodeIndex()
		g.AddNode(graph.Node[Waypoint]{Index: idx, Data: Waypoint{Name: n.Name, At: orb.Point{n.X, n.Y}}})
		index[n.Name] = idx
	}

	for i, e := range s.Edges {
		from, ok := index[e.From]
		if !ok {
			return nil, nil, fmt.Errorf("edge %d: %w %q", i, ErrUnknownNode, e.From)
		}
		to, ok := index[e.To]
		if !ok {
			return nil, nil, fmt.Errorf("edge %d: %w %q", i, ErrUnknownNode, e.To)
		}

		cost := dist(g.Node(from).Data.At, g.Node(to).Data.At)
		if e.Cost != nil {
			cost = *e.Cost
		}
		if cost < 0 || math.IsNaN(cost) {
			return nil, nil, fmt.Errorf("edge %d (%s -> %s): invalid cost %v", i, e.From, e.To, cost)
		}
		g.AddEdge(graph.Edge[struct{}]{From: from, To: to, Cost: cost})
	}

	return g, index, nil
}

// Run builds the scenario graph and searches it from Source to Target.
func (s *Scenario) Run(logger *slog.Logger) (*Result, error) {
	logger = logging.OrDiscard(logger)

	g, index, err := s.Build()
	if err != nil {
		return nil, err
	}
	source, ok := index[s.Source]
	if !ok {
		return nil, fmt.Errorf("source: %w %q", ErrUnknownNode, s.Source)
	}
	target, ok := index[s.Target]
	if !ok {
		return nil, fmt.Errorf("target: %w %q", ErrUnknownNode, s.Target)
	}
	h, err := routing.HeuristicByName[Waypoint, struct{}](s.Heuristic)
	if err != nil {
		return nil, err
	}

	logger.Debug("graph built",
		"scenario", s.Name,
		"nodes", g.NumNodes(),
		"edges", g.NumEdges(),
		"directed", g.IsDigraph(),
	)

	search := routing.NewAStarSearch(g, source, target, h)
	res := &Result{
		Scenario:  s.Name,
		Heuristic: s.Heuristic,
		Settled:   search.NodesSettled(),
		Reached:   search.Reached(),
	}
	if res.Reached {
		res.Cost = search.CostToTarget()
		for _, idx := range search.PathToTarget() {
			res.Path = append(res.Path, g.Node(idx).Data.Name)
		}
	}

	logger.Debug("search finished", "scenario", s.Name, "reached", res.Reached, "settled", res.Settled)
	return res, nil
}
