package notifications

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/metrics"
	"seamerkado_buyer/internal/models"
)

// Source est le service acheteur distant.
type Source interface {
	Notifications(ctx context.Context, buyerID string) (models.NotificationSnapshot, error)
	MarkNotificationRead(ctx context.Context, buyerID string, notificationID int64) error
	MarkAllNotificationsRead(ctx context.Context, buyerID string) error
}

// Service garde un Feed par acheteur.
//
// Les lectures sont optimistes : le miroir change tout de suite, puis le
// service distant est prévenu. Un échec d'acquittement est journalisé et
// compté mais jamais annulé ; le polling suivant rétablit la vérité du serveur.
type Service struct {
	source  Source
	metrics *metrics.BuyerMetrics
	now     func() time.Time

	mu    sync.Mutex
	feeds map[string]*feedEntry
}

// idleFeedTTL : un miroir sans socket ouverte et non consulté depuis ce délai
// est libéré à la prochaine création de miroir.
const idleFeedTTL = 30 * time.Minute

type feedEntry struct {
	feed     *Feed
	watchers int
	touched  time.Time
}

func NewService(source Source, m *metrics.BuyerMetrics) *Service {
	return &Service{
		source:  source,
		metrics: m,
		now:     time.Now,
		feeds:   make(map[string]*feedEntry),
	}
}

func (s *Service) feed(buyerID string) *Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entryLocked(buyerID).feed
}

// entryLocked suppose s.mu détenu.
func (s *Service) entryLocked(buyerID string) *feedEntry {
	now := s.now()
	e, ok := s.feeds[buyerID]
	if !ok {
		s.sweepLocked(now)
		e = &feedEntry{feed: NewFeed()}
		s.feeds[buyerID] = e
	}
	e.touched = now
	return e
}

func (s *Service) sweepLocked(now time.Time) {
	for id, e := range s.feeds {
		if e.watchers == 0 && now.Sub(e.touched) > idleFeedTTL {
			delete(s.feeds, id)
		}
	}
}

// Watch marque le miroir comme suivi par une socket. La fonction renvoyée le
// libère ; le miroir disparaît quand plus personne ne le suit.
func (s *Service) Watch(buyerID string) (release func()) {
	s.mu.Lock()
	e := s.entryLocked(buyerID)
	e.watchers++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			e.watchers--
			if e.watchers <= 0 && s.feeds[buyerID] == e {
				delete(s.feeds, buyerID)
			}
		})
	}
}

// Feeds renvoie le nombre de miroirs gardés en mémoire.
func (s *Service) Feeds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feeds)
}

// Forget libère le miroir d'un acheteur (déconnexion).
func (s *Service) Forget(buyerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.feeds, buyerID)
}

// View renvoie l'état courant sans appel distant.
func (s *Service) View(buyerID string) View {
	return s.feed(buyerID).Snapshot(s.now())
}

// Refresh récupère l'instantané complet. En cas d'échec la vue garde la liste
// précédente et porte le message d'erreur.
func (s *Service) Refresh(ctx context.Context, buyerID string) View {
	f := s.feed(buyerID)
	snap, err := s.source.Notifications(ctx, buyerID)
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).WithField("buyer_id", buyerID).Warn("⚠️ Récupération des notifications impossible")
			s.metrics.RecordNotificationPoll(false)
			f.Fail(MsgServiceUnavailable)
		}
		return f.Snapshot(s.now())
	}
	s.metrics.RecordNotificationPoll(true)
	f.Replace(snap)
	return f.Snapshot(s.now())
}

func (s *Service) MarkRead(ctx context.Context, buyerID string, notificationID int64) View {
	f := s.feed(buyerID)
	f.MarkRead(notificationID)
	if err := s.source.MarkNotificationRead(ctx, buyerID, notificationID); err != nil {
		s.ackFailed(err, buyerID, log.Fields{"notification_id": notificationID})
	}
	return f.Snapshot(s.now())
}

func (s *Service) MarkAllRead(ctx context.Context, buyerID string) View {
	f := s.feed(buyerID)
	f.MarkAllRead()
	if err := s.source.MarkAllNotificationsRead(ctx, buyerID); err != nil {
		s.ackFailed(err, buyerID, log.Fields{"all": true})
	}
	return f.Snapshot(s.now())
}

func (s *Service) ackFailed(err error, buyerID string, fields log.Fields) {
	s.metrics.RecordReadAckFailure()
	log.WithError(err).WithField("buyer_id", buyerID).WithFields(fields).
		Error("❌ Acquittement de lecture refusé, état local conservé")
}
