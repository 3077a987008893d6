package notifications

import (
	"context"
	"sync"

	"seamerkado_buyer/internal/models"
)

type fakeSource struct {
	mu       sync.Mutex
	snap     models.NotificationSnapshot
	fetchErr error
	ackErr   error
	fetches  int
	acked    []int64
	allAcked int
}

func (f *fakeSource) Notifications(context.Context, string) (models.NotificationSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return models.NotificationSnapshot{}, f.fetchErr
	}
	return f.snap, nil
}

func (f *fakeSource) MarkNotificationRead(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, id)
	return f.ackErr
}

func (f *fakeSource) MarkAllNotificationsRead(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allAcked++
	return f.ackErr
}

func (f *fakeSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeSource) setSnapshot(snap models.NotificationSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
}

func sampleSnapshot() models.NotificationSnapshot {
	return models.NotificationSnapshot{
		Notifications: []models.Notification{
			{ID: 1, ShopName: "Isda ni Mang Ben", Message: "Your order has shipped", CreatedAt: "2026-03-01T10:00:00Z"},
			{ID: 2, ShopName: "Isda ni Mang Ben", Message: "Order delivered", IsRead: true, CreatedAt: "2026-03-01T09:00:00Z"},
			{ID: 3, ShopName: "Palengke Fresh", Message: "New promo", CreatedAt: "2026-02-20T09:00:00Z"},
		},
		Count: 2,
	}
}
