// Package server assembles the HTTP routes.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/handlers"
	adminhandlers "github.com/s/coursehub/internal/handlers/admin"
	"github.com/s/coursehub/internal/handlers/personal"
	"github.com/s/coursehub/internal/middleware"
)

// NewRouter wires every route onto a gorilla router wrapped in CORS and the
// access log.
func NewRouter(h *handlers.Handler, logger *slog.Logger) http.Handler {
	adminService := adminhandlers.Service{Handler: h}
	personalService := &personal.Service{Handler: h}

	// Middleware для проверки ролей
	adminOnly := middleware.RequiredRole(h, domain.RoleAdmin)
	teacherOnly := middleware.RequiredRole(h, domain.RoleTeacher)
	studentOnly := middleware.RequiredRole(h, domain.RoleStudent)
	authors := middleware.RequiredRole(h, domain.RoleTeacher, domain.RoleAdmin)
	chat := middleware.RequiredRole(h, domain.RoleStudent, domain.RoleTeacher)

	r := mux.NewRouter()

	// --- Вход ---
	r.HandleFunc("/auth/google/login", h.HandleGoogleLogin).Methods("GET")
	r.HandleFunc("/auth/google/callback", h.HandleGoogleCallback).Methods("GET")
	r.HandleFunc("/logout", h.HandleLogout).Methods("GET", "POST")
	r.HandleFunc("/auth/token", h.IssueTokenAPI).Methods("POST")
	r.HandleFunc("/api/me", h.MeAPI).Methods("GET")

	// --- Каталог ---
	r.HandleFunc("/api/courses", h.ListCoursesAPI).Methods("GET")
	r.HandleFunc("/api/courses", authors(h.CreateCourseAPI)).Methods("POST")
	r.HandleFunc("/api/courses/{id}", h.GetCourseAPI).Methods("GET")
	r.HandleFunc("/api/courses/{id}", authors(h.UpdateCourseAPI)).Methods("PUT")
	r.HandleFunc("/api/courses/{id}", authors(h.DeleteCourseAPI)).Methods("DELETE")
	r.HandleFunc("/api/courses/{id}/rating", h.GetCourseRatingAPI).Methods("GET")
	r.HandleFunc("/api/courses/{id}/instructor", teacherOnly(h.AssignInstructorAPI)).Methods("POST")

	// --- Студент ---
	r.HandleFunc("/api/courses/{id}/enroll", studentOnly(h.EnrollAPI)).Methods("POST")
	r.HandleFunc("/api/courses/{id}/sections/{index}", studentOnly(h.ToggleSectionAPI)).Methods("POST")
	r.HandleFunc("/api/courses/{id}/reviews", studentOnly(h.AddReviewAPI)).Methods("POST")
	r.HandleFunc("/api/enrollments", studentOnly(h.ListEnrollmentsAPI)).Methods("GET")

	// --- Сообщения ---
	r.HandleFunc("/api/messages", chat(h.ListMessagesAPI)).Methods("GET")
	r.HandleFunc("/api/messages", chat(h.SendMessageAPI)).Methods("POST")
	r.HandleFunc("/api/messages/{id}/read", chat(h.MarkMessageReadAPI)).Methods("POST")

	// --- Кабинет преподавателя ---
	r.HandleFunc("/api/teacher/courses", teacherOnly(personalService.TeacherCoursesAPI)).Methods("GET")

	// --- АДМИН API ---
	r.HandleFunc("/api/admin/moderation", adminOnly(adminService.ModerationQueueAPI)).Methods("GET")
	r.HandleFunc("/api/admin/moderation/{id}", adminOnly(adminService.ModerateAPI)).Methods("POST")
	r.HandleFunc("/api/admin/moderation/{id}/history", authors(adminService.ModerationHistoryAPI)).Methods("GET")
	r.HandleFunc("/api/admin/enrollments/{courseId}/{studentId}", adminOnly(adminService.ActivateEnrollmentAPI)).Methods("PUT")

	return middleware.AccessLog(logger)(middleware.CORS(r))
}
