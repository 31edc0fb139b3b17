package middleware

import (
	"net/http"

	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/handlers"
)

// RequiredRole создает Middleware, пропускающее только указанные роли.
// Найденный актор кладется в контекст запроса.
func RequiredRole(h *handlers.Handler, roles ...domain.Role) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			// 1. Проверка Аутентификации
			actor := h.Actor(r)
			if actor.Role == domain.RolePublic || actor.ID == "" {
				handlers.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
				return
			}

			// 2. Проверка Роли
			allowed := false
			for _, role := range roles {
				if actor.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				handlers.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "Access Denied: Insufficient permissions"})
				return
			}

			// 3. Все проверки пройдены
			next.ServeHTTP(w, r.WithContext(handlers.WithActor(r.Context(), actor)))
		}
	}
}
