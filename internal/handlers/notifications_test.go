package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seamerkado_buyer/internal/notifications"
)

func notificationsRemote(t *testing.T, ackStatus int) *remote {
	rm := newRemote(t)
	rm.json("GET /api/buyer/42/notifications", http.StatusOK, map[string]any{
		"notifications": []map[string]any{
			{"id": 1, "shop_name": "Reyes Catch", "message": "Your order shipped", "is_read": false, "created_at": "2024-01-01T00:00:00Z"},
			{"id": 2, "shop_name": "Reyes Catch", "message": "Order confirmed", "is_read": true, "created_at": "2025-12-31T00:00:00Z"},
		},
		"count": 1,
	})
	rm.json("PUT /api/buyer/notifications/1/read", ackStatus, map[string]string{})
	rm.json("PUT /api/buyer/42/notifications/read-all", ackStatus, map[string]string{})
	return rm
}

func TestNotifications_RefreshAndMarkRead(t *testing.T) {
	env := newTestEnv(t, notificationsRemote(t, http.StatusOK))

	view := decode[notifications.View](t, env.do(t, http.MethodGet, "/api/notifications", nil))
	require.Len(t, view.Notifications, 2)
	assert.Equal(t, 1, view.Count)
	assert.True(t, view.Loaded)
	assert.Equal(t, "1/1/2024", view.Notifications[0].TimeAgo)

	view = decode[notifications.View](t, env.do(t, http.MethodPut, "/api/notifications/1/read", nil))
	assert.Zero(t, view.Count)
	assert.True(t, view.Notifications[0].IsRead)
}

func TestNotifications_FailedAckIsNotRolledBack(t *testing.T) {
	env := newTestEnv(t, notificationsRemote(t, http.StatusInternalServerError))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/notifications", nil).Code)

	view := decode[notifications.View](t, env.do(t, http.MethodPut, "/api/notifications/read-all", nil))
	assert.Zero(t, view.Count)
	for _, n := range view.Notifications {
		assert.True(t, n.IsRead)
	}
}

func TestNotifications_ServiceDown(t *testing.T) {
	rm := newRemote(t)
	rm.json("GET /api/buyer/42/notifications", http.StatusServiceUnavailable, map[string]string{})
	env := newTestEnv(t, rm)

	view := decode[notifications.View](t, env.do(t, http.MethodGet, "/api/notifications", nil))
	assert.Equal(t, notifications.MsgServiceUnavailable, view.Error)
	assert.Empty(t, view.Notifications)
}

func TestMarkNotificationRead_BadID(t *testing.T) {
	env := newTestEnv(t, newRemote(t))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/notifications/abc/read", nil).Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, newRemote(t))
	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotifications_SocketReleasesFeedOnClose(t *testing.T) {
	env := newTestEnv(t, notificationsRemote(t, http.StatusOK))
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/notifications/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	var view notifications.View
	require.NoError(t, conn.ReadJSON(&view))
	assert.Len(t, view.Notifications, 2)
	assert.Equal(t, 1, env.handler.notifications.Feeds())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return env.handler.notifications.Feeds() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
