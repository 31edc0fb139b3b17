package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/s/coursehub/internal/domain"
)

// ==========================================
// GET /api/courses (Список)
// ==========================================
func (h *Handler) ListCoursesAPI(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Engine.ListVisibleCourses(r.Context(), h.Actor(r))
	if err != nil {
		h.WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, courses)
}

// ==========================================
// GET /api/courses/{id} (Детали)
// ==========================================
func (h *Handler) GetCourseAPI(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Engine.GetCourseDetail(r.Context(), mux.Vars(r)["id"], h.Actor(r))
	if err != nil {
		h.WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, detail)
}

// GET /api/courses/{id}/rating
func (h *Handler) GetCourseRatingAPI(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Engine.GetCourseRating(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// ==========================================
// POST /api/courses (Создание)
// ==========================================
func (h *Handler) CreateCourseAPI(w http.ResponseWriter, r *http.Request) {
	var sub domain.CourseSubmission
	if !DecodeJSON(w, r, &sub) {
		return
	}
	course, err := h.Engine.CreateCourse(r.Context(), h.Actor(r), sub)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, course)
}

// ==========================================
// PUT /api/courses/{id} (Обновление)
// ==========================================
func (h *Handler) UpdateCourseAPI(w http.ResponseWriter, r *http.Request) {
	var edit domain.CourseEdit
	if !DecodeJSON(w, r, &edit) {
		return
	}
	course, err := h.Engine.UpdateCourse(r.Context(), h.Actor(r), mux.Vars(r)["id"], edit)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, course)
}

// ==========================================
// DELETE /api/courses/{id} (Удаление)
// ==========================================
func (h *Handler) DeleteCourseAPI(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.DeleteCourse(r.Context(), h.Actor(r), mux.Vars(r)["id"]); err != nil {
		h.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/courses/{id}/instructor: преподаватель берет курс себе
func (h *Handler) AssignInstructorAPI(w http.ResponseWriter, r *http.Request) {
	assignment, err := h.Engine.AssignInstructor(r.Context(), h.Actor(r), mux.Vars(r)["id"])
	if err != nil {
		h.WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, assignment)
}
