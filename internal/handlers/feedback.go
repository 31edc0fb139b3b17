package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/s/coursehub/internal/domain"
)

// --- ОТЗЫВЫ ---

// POST /api/courses/{id}/reviews
func (h *Handler) AddReviewAPI(w http.ResponseWriter, r *http.Request) {
	var sub domain.ReviewSubmission
	if !DecodeJSON(w, r, &sub) {
		return
	}
	review, err := h.Engine.CreateReview(r.Context(), h.Actor(r), mux.Vars(r)["id"], sub)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, review)
}

// --- СООБЩЕНИЯ ---

// GET /api/messages
func (h *Handler) ListMessagesAPI(w http.ResponseWriter, r *http.Request) {
	messages, err := h.Engine.ListMessages(r.Context(), h.Actor(r))
	if err != nil {
		h.WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, messages)
}

// POST /api/messages
func (h *Handler) SendMessageAPI(w http.ResponseWriter, r *http.Request) {
	var sub domain.MessageSubmission
	if !DecodeJSON(w, r, &sub) {
		return
	}
	msg, err := h.Engine.SendMessage(r.Context(), h.Actor(r), sub)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, msg)
}

// POST /api/messages/{id}/read
func (h *Handler) MarkMessageReadAPI(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.MarkMessageRead(r.Context(), h.Actor(r), mux.Vars(r)["id"]); err != nil {
		h.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
