package server

import "net/http"

// handleDiscovery lists the API surface for clients probing the root.
func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, map[string]any{
		"name":    "dagsim results API",
		"version": "v1",
		"endpoints": []string{
			"GET /api/v1/health",
			"GET /api/v1/runs",
			"GET /api/v1/runs/{id}",
			"DELETE /api/v1/runs/{id}",
		},
	})
}
