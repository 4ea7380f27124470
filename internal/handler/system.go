package handler

import (
	"net/http"
	"time"
)

const (
	// Version is reported by the root route.
	Version = "1.0.0"

	MsgWelcome       = "Welcome to UsersAPI"
	MsgHealthy       = "API is running"
	MsgRouteNotFound = "Route not found"
)

// SystemHandler serves the routes that never touch the store.
type SystemHandler struct {
	apiPrefix string
	now       func() time.Time
}

// NewSystemHandler creates a SystemHandler. apiPrefix is used to advertise
// the endpoint paths on the root route.
func NewSystemHandler(apiPrefix string) *SystemHandler {
	return &SystemHandler{apiPrefix: apiPrefix, now: time.Now}
}

type rootResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type healthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// HandleRoot describes the API.
//
// HTTP: GET /
func (h *SystemHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Success: true,
		Message: MsgWelcome,
		Version: Version,
		Endpoints: map[string]string{
			"health": h.apiPrefix + "/health",
			"users":  h.apiPrefix + "/users",
		},
	})
}

// HandleHealth reports liveness. It does not ping the store, so it answers
// 200 even while the database is unreachable.
//
// HTTP: GET {prefix}/health
func (h *SystemHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Success:   true,
		Message:   MsgHealthy,
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
	})
}

// HandleNotFound answers every unmatched route, including a known path with
// an unsupported method.
func (h *SystemHandler) HandleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeFailure(w, http.StatusNotFound, MsgRouteNotFound)
}
