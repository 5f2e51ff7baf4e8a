package handler

import "net/http"

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health reports process liveness. Dependency health is observable through
// /metrics; this endpoint stays dependency-free so orchestrators can restart
// the process without cascading backend failures into liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: "catalog",
	})
}
