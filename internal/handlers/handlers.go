package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/auth"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/engine"
	"github.com/s/coursehub/internal/models"
)

const (
	sessionName = "session"
	stateKey    = "oauth_state"
)

// UserStore is the slice of storage the login flow needs.
type UserStore interface {
	SaveUser(ctx context.Context, userInfo models.User) (models.User, error)
	ActorForUser(ctx context.Context, userID uint) (domain.Actor, error)
}

type Handler struct {
	Engine *engine.Service
	Users  UserStore
	Store  *sessions.CookieStore
	Config *oauth2.Config
	Tokens *auth.Tokens
	Logger *slog.Logger
	MaxAge int
}

func NewHandler(svc *engine.Service, users UserStore, store *sessions.CookieStore, config *oauth2.Config, tokens *auth.Tokens, logger *slog.Logger) *Handler {
	return &Handler{
		Engine: svc,
		Users:  users,
		Store:  store,
		Config: config,
		Tokens: tokens,
		Logger: logger,
		MaxAge: 86400 * 7,
	}
}

type actorKey struct{}

// WithActor stores the resolved caller on ctx.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func (h *Handler) GetAuthenticatedUserID(r *http.Request) (uint, bool) {
	if h.Store == nil {
		return 0, false
	}
	session, _ := h.Store.Get(r, sessionName)

	userIDValue := session.Values["user_id"]
	userID, ok := userIDValue.(uint)

	return userID, ok && userID != 0
}

// Actor resolves the caller: an actor already on the context, then a bearer
// token, then the session user. Anyone else is the public actor.
func (h *Handler) Actor(r *http.Request) domain.Actor {
	if actor, ok := r.Context().Value(actorKey{}).(domain.Actor); ok {
		return actor
	}

	if raw, ok := bearerToken(r); ok {
		actor, err := h.Tokens.Parse(raw)
		if err == nil {
			return actor
		}
		h.debug("bearer token rejected", "error", err)
		return domain.Public
	}

	userID, ok := h.GetAuthenticatedUserID(r)
	if !ok || h.Users == nil {
		return domain.Public
	}
	actor, err := h.Users.ActorForUser(r.Context(), userID)
	if err != nil {
		h.warn("session user not loaded", "user_id", userID, "error", err)
		return domain.Public
	}
	return actor
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// ==========================================
// Google OAuth
// ==========================================

func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Config == nil {
		jsonError(w, "Google login is not configured", http.StatusNotFound)
		return
	}
	state := uuid.NewString()
	session, _ := h.Store.Get(r, sessionName)
	session.Values[stateKey] = state
	if err := session.Save(r, w); err != nil {
		jsonError(w, "Session error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.Config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.Config == nil {
		jsonError(w, "Google login is not configured", http.StatusNotFound)
		return
	}
	session, _ := h.Store.Get(r, sessionName)
	expected, _ := session.Values[stateKey].(string)
	if expected == "" || r.URL.Query().Get("state") != expected {
		jsonError(w, "Invalid state", http.StatusUnauthorized)
		return
	}
	delete(session.Values, stateKey)

	code := r.URL.Query().Get("code")
	token, err := h.Config.Exchange(r.Context(), code)
	if err != nil {
		jsonError(w, "Token exchange error", http.StatusBadRequest)
		return
	}

	client := h.Config.Client(r.Context(), token)
	resp, err := client.Get(auth.UserInfoURL)
	if err != nil {
		jsonError(w, "Google API error", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	var userInfo models.User
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		jsonError(w, "JSON decode error", http.StatusBadGateway)
		return
	}

	user, err := h.Users.SaveUser(r.Context(), userInfo)
	if err != nil {
		h.warn("save user failed", "error", err)
		jsonError(w, "DB save error", http.StatusInternalServerError)
		return
	}

	session.Values["user_id"] = user.ID
	session.Values["email"] = user.Email
	session.Values["name"] = user.Name
	session.Values["picture_url"] = user.Picture
	session.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   h.MaxAge,
	}
	if err := session.Save(r, w); err != nil {
		jsonError(w, "Session error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Store.Get(r, sessionName)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		jsonError(w, "Session error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// POST /auth/token выдает bearer-токен текущему пользователю
func (h *Handler) IssueTokenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	actor := h.Actor(r)
	if actor.Role == domain.RolePublic {
		jsonError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !h.Tokens.Enabled() {
		jsonError(w, "API tokens are disabled", http.StatusNotFound)
		return
	}
	token, err := h.Tokens.Issue(actor)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// GET /api/me
func (h *Handler) MeAPI(w http.ResponseWriter, r *http.Request) {
	actor := h.Actor(r)
	WriteJSON(w, http.StatusOK, map[string]string{
		"id":   actor.ID,
		"name": actor.Name,
		"role": string(actor.Role),
	})
}

// -------------------------------------------------------------------------
// Ответы
// -------------------------------------------------------------------------

func jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps an engine error onto a JSON response. The message is the
// reason reported by the failing collaborator when there is one.
func (h *Handler) WriteError(w http.ResponseWriter, err error) {
	code := apperror.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		h.warn("request failed", "status", code, "error", err)
	}
	body := map[string]interface{}{"error": apperror.Message(err)}
	if fields := apperror.FieldErrors(err); len(fields) > 0 {
		body["fields"] = fields
	}
	WriteJSON(w, code, body)
}

// DecodeJSON reads the request body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) warn(msg string, args ...any) {
	if h.Logger != nil {
		h.Logger.Warn(msg, args...)
	}
}

func (h *Handler) debug(msg string, args ...any) {
	if h.Logger != nil {
		h.Logger.Debug(msg, args...)
	}
}
