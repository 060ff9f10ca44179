package policy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func middlewareFixture() Middleware {
	return Middleware{Gate: NewGate(NewStore(newMemoryOverrides()), nil, nil)}
}

func requireProblem(t *testing.T, rec *httptest.ResponseRecorder, status int, title string) {
	t.Helper()
	require.Equal(t, status, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body struct {
		Title  string `json:"title"`
		Status int    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, title, body.Title)
	require.Equal(t, status, body.Status)
}

func TestRequireRendersProblems(t *testing.T) {
	mw := middlewareFixture()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := mw.Require(ResourcePayment, ActionEdit)(next)

	// No actor claims at all.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments/1/status", nil))
	requireProblem(t, rec, http.StatusUnauthorized, "Unauthorized")

	// Staff holds payment:view only.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/1/status", nil)
	req = req.WithContext(ContextWithActor(req.Context(), Actor{ID: 3, Role: RoleStaff}))
	handler.ServeHTTP(rec, req)
	requireProblem(t, rec, http.StatusForbidden, "Forbidden")

	// Admin passes through untouched.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/payments/1/status", nil)
	req = req.WithContext(ContextWithActor(req.Context(), Actor{ID: 2, Role: RoleAdmin}))
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireSuperAdminRendersProblems(t *testing.T) {
	mw := middlewareFixture()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := mw.RequireSuperAdmin()(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/permissions", nil))
	requireProblem(t, rec, http.StatusUnauthorized, "Unauthorized")

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/permissions", nil)
	req = req.WithContext(ContextWithActor(req.Context(), Actor{ID: 2, Role: RoleAdmin}))
	handler.ServeHTTP(rec, req)
	requireProblem(t, rec, http.StatusForbidden, "Forbidden")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/permissions", nil)
	req = req.WithContext(ContextWithActor(req.Context(), Actor{ID: 1, Role: RoleSuperAdmin}))
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
