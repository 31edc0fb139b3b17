// Package personal serves a teacher's own cabinet.
package personal

import (
	"net/http"

	"github.com/s/coursehub/internal/handlers"
	"github.com/s/coursehub/internal/moderation"
)

type Service struct {
	*handlers.Handler
}

// GET /api/teacher/courses: свои курсы со статусом модерации
func (s *Service) TeacherCoursesAPI(w http.ResponseWriter, r *http.Request) {
	actor := s.Actor(r)
	courses, err := s.Engine.TeacherCourses(r.Context(), actor)
	if err != nil {
		s.WriteError(w, err)
		return
	}

	type courseView struct {
		ID              string `json:"id"`
		Title           string `json:"title"`
		Status          string `json:"status"`
		Presentation    string `json:"presentation"`
		RejectionReason string `json:"rejection_reason,omitempty"`
		TotalSections   int    `json:"total_sections"`
	}

	views := make([]courseView, 0, len(courses))
	for _, c := range courses {
		views = append(views, courseView{
			ID:              c.ID,
			Title:           c.Title,
			Status:          string(c.EffectiveStatus()),
			Presentation:    string(moderation.Visibility(c, actor)),
			RejectionReason: c.RejectionReason,
			TotalSections:   c.TotalSections(),
		})
	}
	handlers.WriteJSON(w, http.StatusOK, views)
}
