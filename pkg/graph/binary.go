package graph

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

const (
	magicBytes = "GEOASTAR"
	version    = uint32(1)
	maxNodes   = 10_000_000
	maxEdges   = 50_000_000
	maxNames   = 1 << 16

	flagDirected = uint32(1)
)

// ErrCorrupt is returned when a graph file fails validation.
var ErrCorrupt = errors.New("corrupt graph file")

type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	Flags    uint32
	NumNodes uint32
	NumEdges uint32
	NumNames uint32 // highway name table
}

type diskNode struct {
	OSMID  int64
	Lon    float64
	Lat    float64
	Active uint8
}

type diskEdge struct {
	From    uint32
	To      uint32
	Cost    float64
	WayID   int64
	Highway uint32 // index into the name table
}

// WriteBinary serializes a road graph, removed slots included, so that node
// indices survive a round trip. The file is written to a temp path and
// renamed into place.
func WriteBinary(path string, g *RoadGraph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // no-op after a successful rename
	}()

	bw := bufio.NewWriter(f)
	crc := crc32.NewIEEE()
	w := io.MultiWriter(bw, crc)

	names, nameIdx := highwayNames(g)
	nodes := make([]diskNode, g.NumNodes())
	for i := range nodes {
		n := g.Node(i)
		nodes[i] = diskNode{
			OSMID: int64(n.Data.OSMID),
			Lon:   n.Data.Loc.Lon(),
			Lat:   n.Data.Loc.Lat(),
		}
		if g.IsNodePresent(i) {
			nodes[i].Active = 1
		}
	}
	edges := make([]diskEdge, 0, g.NumEdges())
	for i := range nodes {
		for e := range g.Edges(i) {
			edges = append(edges, diskEdge{
				From:    uint32(e.From),
				To:      uint32(e.To),
				Cost:    e.Cost,
				WayID:   int64(e.Data.WayID),
				Highway: nameIdx[e.Data.Highway],
			})
		}
	}

	hdr := fileHeader{
		Version:  version,
		NumNodes: uint32(len(nodes)),
		NumEdges: uint32(len(edges)),
		NumNames: uint32(len(names)),
	}
	copy(hdr.Magic[:], magicBytes)
	if g.IsDigraph() {
		hdr.Flags |= flagDirected
	}

	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, name := range names {
		if err := writeString(w, name); err != nil {
			return fmt.Errorf("write name table: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, nodes); err != nil {
		return fmt.Errorf("write nodes: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, edges); err != nil {
		return fmt.Errorf("write edges: %w", err)
	}

	// CRC32 trailer, not itself checksummed.
	if err := binary.Write(bw, binary.LittleEndian, crc.Sum32()); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadBinary loads a road graph written by WriteBinary.
func ReadBinary(path string) (*RoadGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	crc := crc32.NewIEEE()
	r := io.TeeReader(br, crc)

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("%w: invalid magic bytes %q", ErrCorrupt, hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes || hdr.NumEdges > maxEdges || hdr.NumNames > maxNames {
		return nil, fmt.Errorf("%w: header counts exceed limits", ErrCorrupt)
	}

	names := make([]string, hdr.NumNames)
	for i := range names {
		if names[i], err = readString(r); err != nil {
			return nil, fmt.Errorf("read name table: %w", err)
		}
	}
	nodes := make([]diskNode, hdr.NumNodes)
	if err := binary.Read(r, binary.LittleEndian, nodes); err != nil {
		return nil, fmt.Errorf("read nodes: %w", err)
	}
	edges := make([]diskEdge, hdr.NumEdges)
	if err := binary.Read(r, binary.LittleEndian, edges); err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}

	expected := crc.Sum32()
	var stored uint32
	if err := binary.Read(br, binary.LittleEndian, &stored); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if stored != expected {
		return nil, fmt.Errorf("%w: CRC32 mismatch: stored=%08x computed=%08x", ErrCorrupt, stored, expected)
	}

	return assemble(hdr, names, nodes, edges)
}

// assemble rebuilds the graph: every slot is added active, edges are
// inserted, then the removed slots are removed again.
func assemble(hdr fileHeader, names []string, nodes []diskNode, edges []diskEdge) (*RoadGraph, error) {
	g := NewSparseGraph[RoadNode, RoadInfo](hdr.Flags&flagDirected != 0)

	var removed []int
	for i, n := range nodes {
		g.AddNode(Node[RoadNode]{
			Index: i,
			Data:  RoadNode{OSMID: osm.NodeID(n.OSMID), Loc: orb.Point{n.Lon, n.Lat}},
		})
		if n.Active == 0 {
			removed = append(removed, i)
		}
	}

	for i, e := range edges {
		if e.From >= hdr.NumNodes || e.To >= hdr.NumNodes {
			return nil, fmt.Errorf("%w: edge %d endpoint out of range", ErrCorrupt, i)
		}
		if e.Highway >= uint32(len(names)) {
			return nil, fmt.Errorf("%w: edge %d name index out of range", ErrCorrupt, i)
		}
		if e.Cost < 0 || math.IsNaN(e.Cost) {
			return nil, fmt.Errorf("%w: edge %d has invalid cost %v", ErrCorrupt, i, e.Cost)
		}
		g.AddEdge(Edge[RoadInfo]{
			From: int(e.From),
			To:   int(e.To),
			Cost: e.Cost,
			Data: RoadInfo{WayID: osm.WayID(e.WayID), Highway: names[e.Highway]},
		})
	}

	if len(removed) > 0 {
		g.RemoveNodes(removed...)
	}
	return g, nil
}

// highwayNames collects the distinct highway values in first-seen order.
// Index 0 is always the empty string.
func highwayNames(g *RoadGraph) ([]string, map[string]uint32) {
	names := []string{""}
	idx := map[string]uint32{"": 0}
	for n := range g.Nodes() {
		for e := range g.Edges(n.Index) {
			if _, ok := idx[e.Data.Highway]; !ok {
				idx[e.Data.Highway] = uint32(len(names))
				names = append(names, e.Data.Highway)
			}
		}
	}
	return names, idx
}

func writeString(w io.Writer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("string too long: %d bytes", len(s))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
