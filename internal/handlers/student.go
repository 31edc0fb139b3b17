package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// POST /api/courses/{id}/enroll
func (h *Handler) EnrollAPI(w http.ResponseWriter, r *http.Request) {
	enrollment, err := h.Engine.Enroll(r.Context(), h.Actor(r), mux.Vars(r)["id"])
	if err != nil {
		h.WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, enrollment)
}

// GET /api/enrollments
func (h *Handler) ListEnrollmentsAPI(w http.ResponseWriter, r *http.Request) {
	list, err := h.Engine.ListEnrollments(r.Context(), h.Actor(r))
	if err != nil {
		h.WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// POST /api/courses/{id}/sections/{index}
// Тело: {"completed": true, "total_sections": 5}; total_sections можно не передавать.
func (h *Handler) ToggleSectionAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		jsonError(w, "Invalid section index", http.StatusBadRequest)
		return
	}

	var req struct {
		Completed     bool `json:"completed"`
		TotalSections int  `json:"total_sections"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	enrollment, err := h.Engine.ToggleSection(r.Context(), h.Actor(r), vars["id"], index, req.Completed, req.TotalSections)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, enrollment)
}
