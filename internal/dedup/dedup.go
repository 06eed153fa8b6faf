package dedup

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Filter suppresses duplicate update deliveries. Seen reports whether the
// id was marked within the retention window.
type Filter interface {
	Seen(ctx context.Context, id string) bool
	Mark(ctx context.Context, id string)
}

type memoryEntry struct {
	id      string
	addedAt time.Time
}

// Memory is the in-process filter: entries expire after TTL, and when the
// population exceeds the cap the oldest entries are evicted first.
type Memory struct {
	ttl        time.Duration
	maxEntries int

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
}

func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	return &Memory{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

func (m *Memory) Seen(_ context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.entries[id]
	if !ok {
		return false
	}
	if time.Since(el.Value.(memoryEntry).addedAt) >= m.ttl {
		m.removeLocked(el)
		return false
	}
	return true
}

func (m *Memory) Mark(_ context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.entries[id]; ok {
		m.removeLocked(el)
	}
	m.entries[id] = m.order.PushBack(memoryEntry{id: id, addedAt: time.Now()})
	for len(m.entries) > m.maxEntries {
		m.removeLocked(m.order.Front())
	}
}

func (m *Memory) removeLocked(el *list.Element) {
	delete(m.entries, el.Value.(memoryEntry).id)
	m.order.Remove(el)
}

// sweep drops every expired entry.
func (m *Memory) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for el := m.order.Front(); el != nil; {
		next := el.Next()
		if time.Since(el.Value.(memoryEntry).addedAt) >= m.ttl {
			m.removeLocked(el)
		}
		el = next
	}
}

// StartJanitor periodically sweeps expired entries until ctx is cancelled.
func (m *Memory) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}
