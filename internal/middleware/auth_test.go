package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s/investorAcademy/internal/handlers"
	"github.com/s/investorAcademy/internal/models"
	"github.com/s/investorAcademy/internal/storage"
	"github.com/s/investorAcademy/internal/storage/storagetest"
)

func TestRequiredRole(t *testing.T) {
	db := storagetest.Open(t)
	h := handlers.NewHandler(nil, storage.New(db, nil), sessions.NewCookieStore([]byte("middleware-test-key")), nil, nil)
	admin := storagetest.CreateUser(t, db, "root", models.RoleAdmin)
	learner := storagetest.CreateUser(t, db, "ann", models.RoleUser)

	var seen uint
	next := func(w http.ResponseWriter, r *http.Request) {
		seen = h.UserID(r)
		w.WriteHeader(http.StatusNoContent)
	}
	adminOnly := RequiredRole(h, models.RoleAdmin)(next)

	withSession := func(userID uint) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
		rec := httptest.NewRecorder()
		session, _ := h.Store.Get(req, "session")
		session.Values["user_id"] = userID
		require.NoError(t, session.Save(req, rec))
		out := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
		for _, c := range rec.Result().Cookies() {
			out.AddCookie(c)
		}
		return out
	}

	cases := []struct {
		name string
		req  *http.Request
		code int
		seen uint
	}{
		{"no session", httptest.NewRequest(http.MethodGet, "/api/courses", nil), http.StatusUnauthorized, 0},
		{"unknown user", withSession(9999), http.StatusUnauthorized, 0},
		{"wrong role", withSession(learner.ID), http.StatusForbidden, 0},
		{"admin", withSession(admin.ID), http.StatusNoContent, admin.ID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = 0
			rec := httptest.NewRecorder()
			adminOnly(rec, tc.req)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.seen, seen)
		})
	}

	// several roles may be allowed at once
	rec := httptest.NewRecorder()
	RequiredRole(h, models.RoleUser, models.RoleAdmin)(next)(rec, withSession(learner.ID))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, learner.ID, seen)
}
