package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nexusfind/backend/internal/models"
)

// MemoryItemStore is an in-process ItemStore. Items keep insertion order.
type MemoryItemStore struct {
	mu       sync.RWMutex
	order    []string
	items    map[string]*models.Item
	watchers map[*memoryWatcher]struct{}
	newID    func() string
}

type memoryWatcher struct {
	notify chan struct{}
}

func NewMemoryItemStore() *MemoryItemStore {
	return &MemoryItemStore{
		items:    make(map[string]*models.Item),
		watchers: make(map[*memoryWatcher]struct{}),
		newID:    uuid.NewString,
	}
}

func (s *MemoryItemStore) Watch(ctx context.Context) (<-chan Snapshot, error) {
	w := &memoryWatcher{notify: make(chan struct{}, 1)}
	w.notify <- struct{}{} // initial snapshot

	s.mu.Lock()
	s.watchers[w] = struct{}{}
	s.mu.Unlock()

	out := make(chan Snapshot)
	go func() {
		defer close(out)
		defer func() {
			s.mu.Lock()
			delete(s.watchers, w)
			s.mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-w.notify:
			}

			select {
			case out <- Snapshot{Items: s.snapshot()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *MemoryItemStore) List(_ context.Context) ([]models.Item, error) {
	return s.snapshot(), nil
}

func (s *MemoryItemStore) Create(_ context.Context, item models.Item) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = s.newID()
	s.items[item.ID] = &item
	s.order = append(s.order, item.ID)
	s.notifyLocked()
	return item.ID, nil
}

func (s *MemoryItemStore) SetResolved(_ context.Context, id string, resolved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return ErrItemNotFound
	}
	item.Resolved = resolved
	s.notifyLocked()
	return nil
}

func (s *MemoryItemStore) Close(_ context.Context) error {
	return nil
}

func (s *MemoryItemStore) snapshot() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

// notifyLocked wakes every watcher. A watcher that has not consumed its last
// wake-up already has one pending and will read the latest state.
func (s *MemoryItemStore) notifyLocked() {
	for w := range s.watchers {
		select {
		case w.notify <- struct{}{}:
		default:
		}
	}
}
