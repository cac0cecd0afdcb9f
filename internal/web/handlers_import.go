package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/employees/internal/core"
)

// importResponse is the body returned after a successful import.
type importResponse struct {
	Message           string `json:"message"`
	Rows              int    `json:"rows"`
	MissingBirthDates int    `json:"missingBirthDates"`
}

// importStatus is the status for a failed import. Every failure other than
// a full limiter is a server error.
func importStatus(err error) int {
	if errors.Is(err, core.ErrTooManyImports) {
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func newImportResponse(message string, result core.ImportResult) importResponse {
	return importResponse{
		Message:           message,
		Rows:              result.Rows,
		MissingBirthDates: result.MissingBirthDates,
	}
}

// handleImportFromResources imports the configured resource. A malformed
// file is reported as a server error.
func (s *Server) handleImportFromResources(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.ImportBundled(r.Context())
	if err != nil {
		respondError(w, r, err, importStatus(err))
		return
	}
	writeJSON(w, r, http.StatusCreated, newImportResponse("File uploaded successfully", result))
}

// handleUploadFromFile imports a CSV sent as the multipart field "file".
func (s *Server) handleUploadFromFile(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "no file provided: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if header.Size == 0 {
		writeError(w, r, http.StatusBadRequest, "File is empty")
		return
	}
	if header.Size > maxSize {
		writeError(w, r, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	result, err := s.service.ImportUpload(r.Context(), header.Filename, file)
	if err != nil {
		respondError(w, r, err, importStatus(err))
		return
	}
	writeJSON(w, r, http.StatusCreated, newImportResponse("File uploaded successfully", result))
}
