package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/notifications"
)

const pingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Les origines sont déjà filtrées par le middleware CORS
		return true
	},
}

// 🔌 GET /api/cart/ws
// Pousse l'état du panier à chaque changement (autre onglet, checkout...).
func (h *Handler) CartSocket(c *gin.Context) {
	id := customerID(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Error("❌ Erreur upgrade WebSocket")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go drain(conn, cancel)

	events, err := h.cart.Subscribe(ctx, id)
	if err != nil {
		log.WithError(err).WithField("customer_id", id).Error("❌ Abonnement panier impossible")
		return
	}

	if err := conn.WriteJSON(gin.H{"type": "connected", "message": "Synchronisation panier activée"}); err != nil {
		return
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.WithError(err).Warn("❌ Erreur envoi WebSocket")
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drain lit jusqu'à la fermeture pour traiter les trames de contrôle.
func drain(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

type notificationAction struct {
	Action string `json:"action"`
	ID     int64  `json:"id"`
}

// 🔌 GET /api/notifications/ws
// Tient le polling tant que la page est ouverte ; le client peut marquer comme lu.
func (h *Handler) NotificationsSocket(c *gin.Context) {
	id := customerID(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Error("❌ Erreur upgrade WebSocket")
		return
	}
	defer conn.Close()

	release := h.notifications.Watch(id)
	defer release()
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	views := make(chan notifications.View, 4)
	push := func(v notifications.View) {
		select {
		case views <- v:
		case <-ctx.Done():
		}
	}

	polling := make(chan struct{})
	go func() {
		defer close(polling)
		_ = h.poller.Run(ctx, id, push)
	}()
	// Le poller doit être arrêté avant la libération du miroir
	defer func() {
		cancel()
		<-polling
	}()
	go func() {
		defer cancel()
		for {
			var msg notificationAction
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			switch msg.Action {
			case "mark_read":
				push(h.notifications.MarkRead(ctx, id, msg.ID))
			case "mark_all_read":
				push(h.notifications.MarkAllRead(ctx, id))
			default:
				log.WithField("action", msg.Action).Debug("🤷 Action WebSocket inconnue")
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case view := <-views:
			if err := conn.WriteJSON(view); err != nil {
				log.WithError(err).Warn("❌ Erreur envoi WebSocket")
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
