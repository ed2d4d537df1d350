package health

import (
	"encoding/json"
	"net/http"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// HealthResponse is the JSON body of /health/live and /health/ready.
type HealthResponse struct {
	Status  string                 `json:"status"` // "healthy" | "unhealthy"
	Checks  map[string]CheckStatus `json:"checks,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// CheckStatus is one entry of HealthResponse.Checks.
type CheckStatus struct {
	Status  string `json:"status"` // "ok" | "error"
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// LivenessHandler answers 200 while the process is alive, 503 otherwise.
func (h *HealthChecker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := h.CheckLiveness(r.Context())
		h.writeHealthResponse(w, status, err)
	}
}

// ReadinessHandler answers 200 when the upstream model API is reachable, 503 otherwise.
func (h *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := h.CheckReadiness(r.Context())
		h.writeHealthResponse(w, status, err)
	}
}

func (h *HealthChecker) writeHealthResponse(w http.ResponseWriter, status *HealthStatus, err error) {
	response := HealthResponse{Status: "healthy", Checks: make(map[string]CheckStatus, len(status.Checks))}
	code := http.StatusOK
	if !status.Healthy {
		response.Status = "unhealthy"
		code = http.StatusServiceUnavailable
		if err != nil {
			response.Message = err.Error()
		}
	}

	for _, result := range status.Checks {
		cs := CheckStatus{Status: "ok", Latency: result.Latency.String()}
		if !result.Healthy {
			cs.Status = "error"
			cs.Error = result.Error
		}
		response.Checks[result.Name] = cs
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log().Error("Failed to encode health response", logger.ErrorField(err))
	}
}
