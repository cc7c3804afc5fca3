package api

import (
	"net/http"

	"tasteal/internal/metrics"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metrics.GetSysHealth(s.app.Config.DatabasePath, s.app.Config.ImageDir))
}

// handleAdminMetrics reports the daily LLM usage to the configured admin.
func (s *Server) handleAdminMetrics(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		s.writeError(w, r, errForbidden)
		return
	}
	days, err := queryInt(r, "days", 7)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	usage, err := s.app.Metrics.GetDailyUsage(r.Context(), days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

func (s *Server) isAdmin(r *http.Request) bool {
	admin := s.app.Config.AdminUID
	return admin != "" && callerUID(r) == admin
}
