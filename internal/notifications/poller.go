package notifications

import (
	"context"
	"time"
)

// DefaultInterval est la période de polling de la page notifications.
const DefaultInterval = 10 * time.Second

// Poller rafraîchit le miroir tant que la vue est ouverte.
type Poller struct {
	svc      *Service
	interval time.Duration
}

func NewPoller(svc *Service, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{svc: svc, interval: interval}
}

// Run récupère immédiatement puis à chaque tick, et remet chaque vue à onView.
// Il s'arrête à l'annulation de ctx et renvoie ctx.Err().
func (p *Poller) Run(ctx context.Context, buyerID string, onView func(View)) error {
	onView(p.svc.Refresh(ctx, buyerID))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			view := p.svc.Refresh(ctx, buyerID)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			onView(view)
		}
	}
}
