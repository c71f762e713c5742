package osm

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"geo_astar/pkg/geo"
	"geo_astar/pkg/logging"
)

// RawEdge is one directed road segment between two consecutive way nodes.
type RawEdge struct {
	FromNodeID osm.NodeID
	ToNodeID   osm.NodeID
	Meters     float64 // great-circle length
	WayID      osm.WayID
	Highway    string
}

// ParseResult holds the output of parsing an OSM PBF file.
type ParseResult struct {
	Edges   []RawEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isCarAccessible reports whether a way with these tags is drivable.
func isCarAccessible(tags osm.Tags) bool {
	if !carHighways[tags.Find("highway")] {
		return false
	}
	// Pedestrian plazas are mapped as highway areas.
	if tags.Find("area") == "yes" {
		return false
	}
	switch tags.Find("access") {
	case "no", "private":
		return false
	}
	return tags.Find("motor_vehicle") != "no"
}

// directionFlags returns whether the way may be driven along (forward) and
// against (backward) its node order.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	forward, backward = true, true

	hw := tags.Find("highway")
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	case "reversible":
		// Direction depends on time of day.
		forward, backward = false, false
	}
	return forward, backward
}

type wayInfo struct {
	ID       osm.WayID
	Highway  string
	NodeIDs  []osm.NodeID
	Forward  bool
	Backward bool
}

// BBox is a geographic bounding box. The zero value means no filtering.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero reports whether the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains reports whether the point lies inside the box, edges included.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures Parse.
type ParseOptions struct {
	BBox   BBox         // keep only edges with both endpoints inside
	Logger *slog.Logger // progress logging; nil discards
}

// Parse reads an OSM PBF stream in two passes (ways, then the nodes they
// reference) and returns directed car-routable edges. rs is rewound between
// passes.
func Parse(ctx context.Context, rs io.ReadSeeker, opt ParseOptions) (*ParseResult, error) {
	logger := logging.OrDiscard(opt.Logger)

	ways, referenced, err := scanWays(ctx, rs)
	if err != nil {
		return nil, err
	}
	logger.Info("scanned ways", "ways", len(ways), "referenced_nodes", len(referenced))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for node pass: %w", err)
	}
	nodeLat, nodeLon, err := scanNodes(ctx, rs, referenced)
	if err != nil {
		return nil, err
	}
	logger.Info("scanned nodes", "coordinates", len(nodeLat))

	edges, missing, outside := buildEdges(ways, nodeLat, nodeLon, opt.BBox)
	if missing > 0 {
		logger.Warn("skipped edges with missing node coordinates", "count", missing)
	}
	if outside > 0 {
		logger.Info("filtered edges outside bounding box", "count", outside)
	}
	logger.Info("built directed edges", "count", len(edges))

	return &ParseResult{Edges: edges, NodeLat: nodeLat, NodeLon: nodeLon}, nil
}

func scanWays(ctx context.Context, r io.Reader) ([]wayInfo, map[osm.NodeID]struct{}, error) {
	scanner := osmpbf.New(ctx, r, 1)
	defer scanner.Close()
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	referenced := make(map[osm.NodeID]struct{})
	var ways []wayInfo
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || len(w.Nodes) < 2 || !isCarAccessible(w.Tags) {
			continue
		}
		fwd, bwd := directionFlags(w.Tags)
		if !fwd && !bwd {
			continue
		}

		ids := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			ids[i] = wn.ID
			referenced[wn.ID] = struct{}{}
		}
		ways = append(ways, wayInfo{
			ID:       w.ID,
			Highway:  w.Tags.Find("highway"),
			NodeIDs:  ids,
			Forward:  fwd,
			Backward: bwd,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("way pass: %w", err)
	}
	return ways, referenced, nil
}

func scanNodes(ctx context.Context, r io.Reader, wanted map[osm.NodeID]struct{}) (lat, lon map[osm.NodeID]float64, err error) {
	scanner := osmpbf.New(ctx, r, 1)
	defer scanner.Close()
	scanner.SkipWays = true
	scanner.SkipRelations = true

	lat = make(map[osm.NodeID]float64, len(wanted))
	lon = make(map[osm.NodeID]float64, len(wanted))
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := wanted[n.ID]; !needed {
			continue
		}
		lat[n.ID] = n.Lat
		lon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("node pass: %w", err)
	}
	return lat, lon, nil
}

// buildEdges splits ways into directed segments. It returns the edges plus
// the number of segments dropped for missing coordinates and for falling
// outside bbox.
func buildEdges(ways []wayInfo, nodeLat, nodeLon map[osm.NodeID]float64, bbox BBox) (edges []RawEdge, missing, outside int) {
	useBBox := !bbox.IsZero()
	for _, w := range ways {
		for i := 0; i+1 < len(w.NodeIDs); i++ {
			from, to := w.NodeIDs[i], w.NodeIDs[i+1]
			fromLat, fromOK := nodeLat[from]
			toLat, toOK := nodeLat[to]
			if !fromOK || !toOK {
				missing++
				continue
			}
			fromLon, toLon := nodeLon[from], nodeLon[to]
			if useBBox && (!bbox.Contains(fromLat, fromLon) || !bbox.Contains(toLat, toLon)) {
				outside++
				continue
			}

			meters := geo.Haversine(fromLat, fromLon, toLat, toLon)
			if w.Forward {
				edges = append(edges, RawEdge{FromNodeID: from, ToNodeID: to, Meters: meters, WayID: w.ID, Highway: w.Highway})
			}
			if w.Backward {
				edges = append(edges, RawEdge{FromNodeID: to, ToNodeID: from, Meters: meters, WayID: w.ID, Highway: w.Highway})
			}
		}
	}
	return edges, missing, outside
}
