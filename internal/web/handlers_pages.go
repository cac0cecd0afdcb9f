package web

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/employees/internal/web/templates"
)

func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	templ.Handler(templates.UploadPage(s.cfg.Upload.MaxFileSize)).ServeHTTP(w, r)
}

// handleHealth reports 200 when the store answers and 503 otherwise.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
