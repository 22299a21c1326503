package cache

import (
	"context"
	"sync"
	"time"

	"github.com/channelsync/backend/internal/application/webhook"
)

type dedupEntry struct {
	expiresAt time.Time
}

// InMemoryDeliveryDeduplicator implements DeliveryDeduplicator using an
// in-memory map. Suitable for single-instance deployments and testing.
type InMemoryDeliveryDeduplicator struct {
	mu        sync.RWMutex
	entries   map[string]dedupEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryDeliveryDeduplicator creates an in-memory delivery deduplicator.
// A background goroutine reaps expired entries until Close is called.
func NewInMemoryDeliveryDeduplicator() *InMemoryDeliveryDeduplicator {
	store := &InMemoryDeliveryDeduplicator{
		entries:  make(map[string]dedupEntry),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// MarkProcessed marks a delivery as seen with a TTL. Returns true if the
// delivery is fresh, false if it was already seen within the window.
func (s *InMemoryDeliveryDeduplicator) MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[deliveryID]; exists {
		if time.Now().Before(e.expiresAt) {
			return false, nil
		}
	}

	s.entries[deliveryID] = dedupEntry{
		expiresAt: time.Now().Add(ttl),
	}
	return true, nil
}

// Close stops the cleanup goroutine
func (s *InMemoryDeliveryDeduplicator) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryDeliveryDeduplicator) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *InMemoryDeliveryDeduplicator) removeExpired() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

// Ensure InMemoryDeliveryDeduplicator implements DeliveryDeduplicator
var _ webhook.DeliveryDeduplicator = (*InMemoryDeliveryDeduplicator)(nil)
