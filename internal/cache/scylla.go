package cache

import (
	"context"
	"errors"
	"time"

	"github.com/gocql/gocql"
)

const scyllaTable = "buyer_state"

// ScyllaStore stocke l'état acheteur dans ScyllaDB. Les notifications de
// changement restent locales à l'instance (pas de pub/sub côté Scylla).
type ScyllaStore struct {
	session *gocql.Session
	broker  *Broker
}

func NewScyllaStore(session *gocql.Session) *ScyllaStore {
	return &ScyllaStore{session: session, broker: NewBroker()}
}

// EnsureSchema crée la table clé/valeur si besoin.
func (s *ScyllaStore) EnsureSchema(ctx context.Context) error {
	return s.session.Query(`CREATE TABLE IF NOT EXISTS ` + scyllaTable + ` (key text PRIMARY KEY, value blob)`).
		WithContext(ctx).Exec()
}

func (s *ScyllaStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.session.Query(`SELECT value FROM `+scyllaTable+` WHERE key = ?`, key).
		WithContext(ctx).Scan(&value)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

func (s *ScyllaStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl > 0 {
		return s.session.Query(`INSERT INTO `+scyllaTable+` (key, value) VALUES (?, ?) USING TTL ?`,
			key, value, int(ttl.Seconds())).WithContext(ctx).Exec()
	}
	return s.session.Query(`INSERT INTO `+scyllaTable+` (key, value) VALUES (?, ?)`, key, value).
		WithContext(ctx).Exec()
}

func (s *ScyllaStore) Delete(ctx context.Context, key string) error {
	return s.session.Query(`DELETE FROM `+scyllaTable+` WHERE key = ?`, key).WithContext(ctx).Exec()
}

func (s *ScyllaStore) Publish(_ context.Context, channel, payload string) error {
	s.broker.Publish(channel, payload)
	return nil
}

func (s *ScyllaStore) Subscribe(ctx context.Context, channel string) (<-chan string, error) {
	return s.broker.Subscribe(ctx, channel), nil
}

func (s *ScyllaStore) Ping(ctx context.Context) error {
	return s.session.Query("SELECT now() FROM system.local").WithContext(ctx).Exec()
}

// SetNX passe par une transaction légère (IF NOT EXISTS).
func (s *ScyllaStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	q := s.session.Query(`INSERT INTO `+scyllaTable+` (key, value) VALUES (?, ?) IF NOT EXISTS`, key, value)
	if ttl > 0 {
		q = s.session.Query(`INSERT INTO `+scyllaTable+` (key, value) VALUES (?, ?) IF NOT EXISTS USING TTL ?`,
			key, value, int(ttl.Seconds()))
	}
	return q.WithContext(ctx).MapScanCAS(map[string]interface{}{})
}
