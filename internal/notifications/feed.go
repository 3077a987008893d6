// Package notifications tient le miroir local des notifications de l'acheteur
// et le rafraîchit par polling.
package notifications

import (
	"sync"
	"time"

	"seamerkado_buyer/internal/models"
)

// MsgServiceUnavailable est affiché quand le service de notifications ne répond pas.
const MsgServiceUnavailable = "Could not connect to the notification service. Check server status."

// Item est une notification prête à afficher.
type Item struct {
	models.Notification
	TimeAgo string `json:"time_ago"`
}

// View est l'état rendu de la page notifications.
type View struct {
	Notifications []Item `json:"notifications"`
	Count         int    `json:"count"`
	Error         string `json:"error,omitempty"`
	Loaded        bool   `json:"loaded"`
}

// Feed est le miroir d'un acheteur. Chaque polling remplace la liste entière.
type Feed struct {
	mu     sync.RWMutex
	items  []models.Notification
	unread int
	err    string
	loaded bool
}

func NewFeed() *Feed {
	return &Feed{}
}

// Replace installe le dernier instantané complet et efface l'erreur.
func (f *Feed) Replace(snap models.NotificationSnapshot) {
	items := append([]models.Notification(nil), snap.Notifications...)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
	f.unread = max(snap.Count, 0)
	f.err = ""
	f.loaded = true
}

// Fail garde la liste précédente mais affiche le message d'erreur.
func (f *Feed) Fail(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = message
	f.loaded = true
}

// MarkRead passe une notification en lue ; false si elle l'était déjà ou n'existe pas.
func (f *Feed) MarkRead(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID != id {
			continue
		}
		if f.items[i].IsRead {
			return false
		}
		f.items[i].IsRead = true
		f.unread = max(f.unread-1, 0)
		return true
	}
	return false
}

// MarkAllRead passe tout en lu et remet le compteur à zéro.
func (f *Feed) MarkAllRead() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		f.items[i].IsRead = true
	}
	f.unread = 0
}

// Snapshot copie l'état courant pour l'affichage.
func (f *Feed) Snapshot(now time.Time) View {
	f.mu.RLock()
	defer f.mu.RUnlock()

	items := make([]Item, 0, len(f.items))
	for _, n := range f.items {
		items = append(items, Item{Notification: n, TimeAgo: FormatTimeAgo(n.CreatedAt, now)})
	}
	return View{
		Notifications: items,
		Count:         f.unread,
		Error:         f.err,
		Loaded:        f.loaded,
	}
}
