package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seamerkado_buyer/internal/session"
)

func withCookies(t *testing.T, method, path string, body any, from *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if from != nil {
		for _, c := range from.Result().Cookies() {
			req.AddCookie(c)
		}
	}
	return req
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t, newRemote(t))

	login := httptest.NewRecorder()
	env.router.ServeHTTP(login, withCookies(t, http.MethodPost, "/api/session",
		map[string]string{"customer_id": "42", "buyerName": "Ana", "buyerEmail": "ana@example.com"}, nil))
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())

	current := httptest.NewRecorder()
	env.router.ServeHTTP(current, withCookies(t, http.MethodGet, "/api/session", nil, login))
	require.Equal(t, http.StatusOK, current.Code)
	buyer := decode[session.Buyer](t, current)
	assert.Equal(t, "42", buyer.CustomerID)
	assert.Equal(t, "Ana", buyer.Name)

	logout := httptest.NewRecorder()
	env.router.ServeHTTP(logout, withCookies(t, http.MethodDelete, "/api/session", nil, login))
	require.Equal(t, http.StatusOK, logout.Code)

	after := httptest.NewRecorder()
	env.router.ServeHTTP(after, withCookies(t, http.MethodGet, "/api/session", nil, logout))
	assert.Equal(t, http.StatusUnauthorized, after.Code)
	assert.Equal(t, session.ErrNoSession.Message, decode[map[string]string](t, after)["error"])
}

func TestEstablishSession_RequiresCustomerID(t *testing.T) {
	env := newTestEnv(t, newRemote(t))
	rec := env.do(t, http.MethodPost, "/api/session", map[string]string{"buyerName": "Ana"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
