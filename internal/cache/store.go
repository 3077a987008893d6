package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound signale une clé absente (ou expirée).
	ErrNotFound = errors.New("cache: clé introuvable")
	// ErrCorrupt signale une valeur persistée illisible.
	ErrCorrupt = errors.New("cache: valeur corrompue")
)

// Store remplace le stockage navigateur : valeurs clé/JSON plus un canal de
// notification par sujet pour prévenir les autres vues d'un changement.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Publish(ctx context.Context, channel, payload string) error
	// Subscribe renvoie un canal fermé à l'annulation de ctx.
	Subscribe(ctx context.Context, channel string) (<-chan string, error)
	Ping(ctx context.Context) error
}

// Counter sert au rate limiting (fenêtre glissante, comme INCR + EXPIRE).
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Locker pose une clé seulement si elle est absente (SET NX) ; sert de
// verrou court entre instances.
type Locker interface {
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}

// GetJSON décode la valeur de key dans v.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

// SetJSON encode v et l'écrit sous key.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encodage %s: %w", key, err)
	}
	return s.Set(ctx, key, data, ttl)
}
