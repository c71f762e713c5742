package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"mime"
	"net/http"

	"geo_astar/pkg/logging"
	"geo_astar/pkg/routing"
)

// maxRequestBytes bounds the body of a route request.
const maxRequestBytes = 1024

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router routing.Router
	stats  StatsResponse
	logger *slog.Logger
}

// NewHandlers creates handlers with the given router. A nil logger discards.
func NewHandlers(router routing.Router, stats StatsResponse, logger *slog.Logger) *Handlers {
	return &Handlers{
		router: router,
		stats:  stats,
		logger: logging.OrDiscard(logger),
	}
}

// errorMapping pairs a routing error with its HTTP status and error code.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{routing.ErrPointTooFar, http.StatusUnprocessableEntity, "point_too_far_from_road"},
	{routing.ErrEmptyGraph, http.StatusUnprocessableEntity, "point_too_far_from_road"},
	{routing.ErrNoRoute, http.StatusNotFound, "no_route_found"},
	{context.Canceled, http.StatusServiceUnavailable, "request_timeout"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, "request_timeout"},
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	req, field, ok := decodeRouteRequest(w, r)
	if !ok {
		code := "invalid_request"
		if field != "" {
			code = "invalid_coordinates"
		}
		writeError(w, http.StatusBadRequest, code, field)
		return
	}

	result, err := h.router.Route(r.Context(), req.Start.toLatLng(), req.End.toLatLng())
	if err != nil {
		h.writeRouteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newRouteResponse(result))
}

// decodeRouteRequest parses and validates the body. On failure it returns
// the offending coordinate field, if any.
func decodeRouteRequest(w http.ResponseWriter, r *http.Request) (RouteRequest, string, bool) {
	var req RouteRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return req, "", false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		return req, "", false
	}
	if !req.Start.valid() {
		return req, "start", false
	}
	if !req.End.valid() {
		return req, "end", false
	}
	return req, "", true
}

func (h *Handlers) writeRouteError(w http.ResponseWriter, err error) {
	var field string
	var epErr *routing.EndpointError
	if errors.As(err, &epErr) {
		field = epErr.Endpoint
	}

	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, field)
			return
		}
	}

	h.logger.Error("route failed", "err", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "")
}

func newRouteResponse(result *routing.RouteResult) RouteResponse {
	resp := RouteResponse{
		TotalDistanceMeters: result.TotalDistanceMeters,
		SettledNodes:        result.Settled,
		Segments:            make([]SegmentJSON, 0, len(result.Segments)),
	}
	for _, seg := range result.Segments {
		geom := make([]LatLngJSON, len(seg.Geometry))
		for i, ll := range seg.Geometry {
			geom[i] = LatLngJSON{Lat: ll.Lat, Lng: ll.Lng}
		}
		resp.Segments = append(resp.Segments, SegmentJSON{
			WayID:          seg.WayID,
			Highway:        seg.Highway,
			DistanceMeters: seg.DistanceMeters,
			Geometry:       geom,
		})
	}
	return resp
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats)
}

func (ll LatLngJSON) valid() bool {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return false
	}
	return ll.Lat >= -90 && ll.Lat <= 90 && ll.Lng >= -180 && ll.Lng <= 180
}

func (ll LatLngJSON) toLatLng() routing.LatLng {
	return routing.LatLng{Lat: ll.Lat, Lng: ll.Lng}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	writeJSON(w, status, ErrorResponse{Error: code, Field: field})
}
