package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/s/investorAcademy/internal/apperr"
	"github.com/s/investorAcademy/internal/auth"
	"github.com/s/investorAcademy/internal/models"
)

const sessionMaxAge = 86400 * 7

func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		h.WriteError(w, r, err)
		return
	}
	state := hex.EncodeToString(buf)

	session, _ := h.Store.Get(r, sessionName)
	session.Values["oauth_state"] = state
	if err := session.Save(r, w); err != nil {
		h.WriteError(w, r, err)
		return
	}
	http.Redirect(w, r, h.Config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Store.Get(r, sessionName)
	want, _ := session.Values["oauth_state"].(string)
	if want == "" || r.URL.Query().Get("state") != want {
		JSONError(w, "Invalid state", http.StatusUnauthorized)
		return
	}
	delete(session.Values, "oauth_state")

	token, err := h.Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.Log.Warn("oauth token exchange failed", "error", err)
		JSONError(w, "Token exchange error", http.StatusBadRequest)
		return
	}

	resp, err := h.Config.Client(r.Context(), token).Get(h.UserInfoURL)
	if err != nil {
		h.Log.Warn("google userinfo request failed", "error", err)
		JSONError(w, "Google API error", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		h.Log.Warn("google userinfo rejected", "status", resp.StatusCode)
		JSONError(w, "Google API error", http.StatusBadGateway)
		return
	}

	var info auth.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.ID == "" {
		JSONError(w, "Google API error", http.StatusBadGateway)
		return
	}

	user, err := h.Repo.Users.Save(r.Context(), nil, models.User{
		GoogleID: info.ID,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
	})
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	session.Values["user_id"] = user.ID
	session.Values["name"] = user.Name
	session.Values["picture_url"] = user.Picture
	session.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   sessionMaxAge,
		Secure:   h.Store.Options != nil && h.Store.Options.Secure,
	}
	if err := session.Save(r, w); err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.Log.Info("user signed in", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Store.Get(r, sessionName)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleMe returns the signed-in user, or 401.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.GetAuthenticatedUserID(r)
	if !ok {
		h.WriteError(w, r, apperr.ErrUnauthenticated)
		return
	}
	user, err := h.Repo.Users.GetByID(r.Context(), nil, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			err = apperr.Newf(apperr.KindUnauthenticated, "http.me", "session user %d no longer exists", userID)
		}
		h.WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}
