package api

// RouteRequest is the JSON body for POST /api/v1/route.
type RouteRequest struct {
	Start LatLngJSON `json:"start"`
	End   LatLngJSON `json:"end"`
}

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	TotalDistanceMeters float64       `json:"total_distance_meters"`
	SettledNodes        int           `json:"settled_nodes"`
	Segments            []SegmentJSON `json:"segments"`
}

// SegmentJSON is a run of the route along a single OSM way.
type SegmentJSON struct {
	WayID          int64        `json:"way_id,omitempty"`
	Highway        string       `json:"highway,omitempty"`
	DistanceMeters float64      `json:"distance_meters"`
	Geometry       []LatLngJSON `json:"geometry"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes       int    `json:"num_nodes"`
	NumActiveNodes int    `json:"num_active_nodes"`
	NumEdges       int    `json:"num_edges"`
	Heuristic      string `json:"heuristic,omitempty"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
