package api

import "net/http"

type healthResponse struct {
	Status   string `json:"status"`
	Modules  int    `json:"modules"`
	Database string `json:"database,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Modules: len(h.svc.Models())}
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			h.logger.Warn("health check: database unreachable", "error", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Database = "ok"
	}
	writeJSON(w, http.StatusOK, resp)
}
