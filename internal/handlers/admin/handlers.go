// Package admin serves the moderation desk.
package admin

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/handlers"
)

type Service struct {
	*handlers.Handler
}

// GET /api/admin/moderation: очередь курсов на проверку
func (serv Service) ModerationQueueAPI(w http.ResponseWriter, r *http.Request) {
	queue, err := serv.Engine.ModerationQueue(r.Context(), serv.Actor(r))
	if err != nil {
		serv.WriteError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, queue)
}

// POST /api/admin/moderation/{id}
// Тело: {"decision": "approved" | "rejected", "reason": "..."}
func (serv Service) ModerateAPI(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Decision domain.Decision `json:"decision"`
		Reason   string          `json:"reason"`
	}
	if !handlers.DecodeJSON(w, r, &req) {
		return
	}

	decision, err := serv.Engine.Moderate(r.Context(), serv.Actor(r), mux.Vars(r)["id"], req.Decision, req.Reason)
	if err != nil {
		serv.WriteError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, decision)
}

// GET /api/admin/moderation/{id}/history
func (serv Service) ModerationHistoryAPI(w http.ResponseWriter, r *http.Request) {
	history, err := serv.Engine.ModerationHistory(r.Context(), serv.Actor(r), mux.Vars(r)["id"])
	if err != nil {
		serv.WriteError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, history)
}

// PUT /api/admin/enrollments/{courseId}/{studentId}: подтверждение оплаченной заявки
func (serv Service) ActivateEnrollmentAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	enrollment, err := serv.Engine.ActivateEnrollment(r.Context(), serv.Actor(r), vars["courseId"], vars["studentId"])
	if err != nil {
		serv.WriteError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, enrollment)
}
