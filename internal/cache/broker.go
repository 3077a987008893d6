package cache

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

// Broker est un pub/sub en mémoire, local au processus.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan string]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan string]struct{})}
}

// Publish ne bloque jamais : un abonné trop lent perd le message.
func (b *Broker) Publish(channel, payload string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
		}
	}
}

func (b *Broker) Subscribe(ctx context.Context, channel string) <-chan string {
	ch := make(chan string, subscriberBuffer)

	b.mu.Lock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[chan string]struct{})
	}
	b.subs[channel][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[channel], ch)
		if len(b.subs[channel]) == 0 {
			delete(b.subs, channel)
		}
		close(ch)
		b.mu.Unlock()
	}()

	return ch
}

func (b *Broker) subscribers(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[channel])
}
