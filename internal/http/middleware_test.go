package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dieKrake/life-leveler-sub000/internal/auth"
)

func callAdminOnly(a *API, userID string) *httptest.ResponseRecorder {
	handler := a.adminOnly(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	r := httptest.NewRequest(http.MethodPut, "/streak-tiers", nil)
	if userID != "" {
		r = r.WithContext(auth.WithUserID(r.Context(), userID))
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestAdminOnly(t *testing.T) {
	a := &API{AdminUserIDs: []string{"admin-1", "admin-2"}}

	assert.Equal(t, http.StatusNoContent, callAdminOnly(a, "admin-2").Code)
	assert.Equal(t, http.StatusForbidden, callAdminOnly(a, "user-1").Code)
	assert.Equal(t, http.StatusUnauthorized, callAdminOnly(a, "").Code)
}

func TestAdminOnlyDisabledWithoutAdmins(t *testing.T) {
	a := &API{}
	assert.Equal(t, http.StatusForbidden, callAdminOnly(a, "user-1").Code)
}
