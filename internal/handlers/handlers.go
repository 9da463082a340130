package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"

	"github.com/s/investorAcademy/internal/apperr"
	"github.com/s/investorAcademy/internal/auth"
	"github.com/s/investorAcademy/internal/learning"
	"github.com/s/investorAcademy/internal/logger"
	"github.com/s/investorAcademy/internal/storage"
)

const sessionName = "session"

type ctxKey int

const userIDKey ctxKey = iota

type Handler struct {
	Learning *learning.Service
	Repo     *storage.Store
	Store    *sessions.CookieStore
	Config   *oauth2.Config
	Log      *logger.Logger
	Validate *validator.Validate

	// UserInfoURL is where the OAuth callback fetches the Google profile.
	UserInfoURL string
}

func NewHandler(svc *learning.Service, repo *storage.Store, store *sessions.CookieStore, config *oauth2.Config, baseLog *logger.Logger) *Handler {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Handler{
		Learning:    svc,
		Repo:        repo,
		Store:       store,
		Config:      config,
		Log:         baseLog.With("component", "http"),
		Validate:    validator.New(),
		UserInfoURL: auth.UserInfoURL,
	}
}

// WithUserID stores an already resolved user id on the request context.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetAuthenticatedUserID prefers the id placed on the context by the role
// middleware and falls back to the session cookie.
func (h *Handler) GetAuthenticatedUserID(r *http.Request) (uint, bool) {
	if id, ok := r.Context().Value(userIDKey).(uint); ok && id != 0 {
		return id, true
	}
	session, _ := h.Store.Get(r, sessionName)
	userID := sessionUserID(session.Values["user_id"])
	return userID, userID != 0
}

// sessionUserID accepts the numeric types a decoded cookie may hold.
func sessionUserID(v interface{}) uint {
	switch id := v.(type) {
	case uint:
		return id
	case int:
		if id > 0 {
			return uint(id)
		}
	case float64:
		if id > 0 {
			return uint(id)
		}
	}
	return 0
}

func (h *Handler) UserID(r *http.Request) uint {
	id, _ := h.GetAuthenticatedUserID(r)
	return id
}

// DecodeJSON reads the body into dst and runs the struct's validate tags.
func (h *Handler) DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.New(apperr.KindInvalid, "http.decode", errors.New("invalid JSON payload"))
	}
	if err := h.Validate.Struct(dst); err != nil {
		return apperr.New(apperr.KindInvalid, "http.validate", err)
	}
	return nil
}

func PathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Newf(apperr.KindInvalid, "http.path", "invalid %s %q", name, raw)
	}
	return uint(id), nil
}

func WriteJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func JSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, map[string]string{"error": message})
}

// WriteError maps err onto a status code. Server-side failures are logged and
// their details kept out of the response.
func (h *Handler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		h.Log.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", code, "error", err)
		WriteJSON(w, code, map[string]string{
			"error": http.StatusText(code),
			"kind":  apperr.KindOf(err).String(),
		})
		return
	}
	h.Log.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", code, "error", err)
	WriteJSON(w, code, map[string]string{
		"error": err.Error(),
		"kind":  apperr.KindOf(err).String(),
	})
}
