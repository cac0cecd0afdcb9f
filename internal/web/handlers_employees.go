package web

import (
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/employees/internal/core"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	page, err := s.service.List(r.Context(), q)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	e, err := s.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, e)
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	e, err := s.service.Create(r.Context(), in)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusCreated, e)
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	e, err := s.service.Update(r.Context(), id, in)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, e)
}

func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	if err := s.service.Delete(r.Context(), id); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeInput reads an EmployeeInput body. On failure it writes a 400 and
// returns false.
func decodeInput(w http.ResponseWriter, r *http.Request) (core.EmployeeInput, bool) {
	var in core.EmployeeInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		respondError(w, r, core.NewValidationError("body", "invalid JSON: "+err.Error()), http.StatusBadRequest)
		return core.EmployeeInput{}, false
	}
	return in, true
}
