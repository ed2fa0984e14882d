package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nexusfind/backend/internal/models"
)

// ItemCache mirrors the remote item collection in memory. A single drain
// goroutine replaces the whole slice on every snapshot; readers get copies.
//
// Writes go straight to the store and become visible only once the
// subscription reflects them back.
type ItemCache struct {
	store    ItemStore
	identity *IdentityState
	logger   *zap.Logger

	mu        sync.RWMutex
	items     []models.Item
	degraded  bool
	watchers  map[*cacheWatcher]struct{}
	ready     chan struct{}
	readyOnce sync.Once

	lifeMu  sync.Mutex
	cancel  context.CancelFunc
	drained chan struct{}
	closing chan struct{}
	closed  bool
	wg      sync.WaitGroup
}

type cacheWatcher struct {
	ch chan []models.Item
}

func NewItemCache(store ItemStore, identity *IdentityState, logger *zap.Logger) *ItemCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemCache{
		store:    store,
		identity: identity,
		logger:   logger.Named("cache"),
		items:    []models.Item{},
		watchers: make(map[*cacheWatcher]struct{}),
		ready:    make(chan struct{}),
		closing:  make(chan struct{}),
	}
}

// Subscribe opens the live subscription and then seeds an empty store with the
// demo set. The subscription lives until ctx ends or Close is called.
//
// If the subscription cannot be opened the cache serves the demo set, reports
// itself degraded and returns the error.
func (c *ItemCache) Subscribe(ctx context.Context) error {
	c.lifeMu.Lock()
	if c.closed {
		c.lifeMu.Unlock()
		return ErrCacheClosed
	}
	if c.cancel != nil {
		c.lifeMu.Unlock()
		return ErrAlreadySubscribed
	}

	subCtx, cancel := context.WithCancel(ctx)
	snapshots, err := c.store.Watch(subCtx)
	if err != nil {
		cancel()
		c.lifeMu.Unlock()
		c.logger.Error("open item subscription failed, serving demo items", zap.Error(err))
		c.replace(models.DemoItems(), true)
		return fmt.Errorf("subscribe: %w", err)
	}

	c.cancel = cancel
	c.drained = make(chan struct{})
	go c.drain(subCtx, snapshots, c.drained)
	c.lifeMu.Unlock()

	if n, err := c.SeedIfEmpty(ctx); err != nil {
		c.logger.Warn("seed check failed", zap.Error(err))
	} else if n > 0 {
		c.logger.Info("seeded demo items", zap.Int("count", n))
	}
	return nil
}

func (c *ItemCache) drain(ctx context.Context, snapshots <-chan Snapshot, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if snap.Err != nil {
				c.logger.Error("item subscription failed, serving demo items", zap.Error(snap.Err))
				c.replace(models.DemoItems(), true)
				continue
			}
			c.logger.Debug("snapshot received", zap.Int("items", len(snap.Items)))
			c.replace(snap.Items, false)
		}
	}
}

func (c *ItemCache) replace(items []models.Item, degraded bool) {
	next := make([]models.Item, len(items))
	copy(next, items)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = next
	c.degraded = degraded
	c.readyOnce.Do(func() { close(c.ready) })
	for w := range c.watchers {
		w.offer(c.copyLocked())
	}
}

// Close tears down the subscription and every Watch stream, waiting for their
// goroutines to exit. Calling Close more than once is fine.
func (c *ItemCache) Close() {
	c.lifeMu.Lock()
	if c.closed {
		c.lifeMu.Unlock()
		return
	}
	c.closed = true
	close(c.closing)
	cancel, drained := c.cancel, c.drained
	c.lifeMu.Unlock()

	if cancel != nil {
		cancel()
		<-drained
	}
	c.wg.Wait()
}

// SeedIfEmpty writes the demo set when the store holds no items. Each write is
// independent: failures are logged and skipped. It returns how many items were
// written. Two clients seeding at once can both see an empty store.
func (c *ItemCache) SeedIfEmpty(ctx context.Context) (int, error) {
	existing, err := c.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("read items: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	demo := models.DemoItems()
	c.logger.Info("no items found, seeding demo items", zap.Int("count", len(demo)))

	var (
		g       errgroup.Group
		written atomic.Int32
	)
	for _, item := range demo {
		item.ID = ""
		g.Go(func() error {
			if _, err := c.store.Create(ctx, item); err != nil {
				c.logger.Warn("seed write failed", zap.String("name", item.Name), zap.Error(err))
				return nil
			}
			written.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(written.Load()), nil
}

// AddItem validates draft, stamps it with the local user id and resolved=false,
// and creates it in the store. It returns once the create call finishes.
func (c *ItemCache) AddItem(ctx context.Context, draft models.ItemDraft) (string, error) {
	if errs := draft.Validate(); len(errs) > 0 {
		return "", &ValidationError{Fields: errs}
	}

	userID, err := c.identity.UserID(ctx)
	if err != nil {
		return "", fmt.Errorf("add item: %w", err)
	}

	id, err := c.store.Create(ctx, draft.ToItem(userID))
	if err != nil {
		c.logger.Error("add item failed", zap.String("name", draft.Name), zap.Error(err))
		return "", fmt.Errorf("add item: %w", err)
	}

	c.logger.Info("item added", zap.String("id", id), zap.String("userId", userID))
	return id, nil
}

// ToggleResolved flips the resolved flag of an item in the current snapshot
// and returns the value written. Unknown ids are ignored and report false.
// Ownership is not checked here.
func (c *ItemCache) ToggleResolved(ctx context.Context, id string) (bool, error) {
	item, ok := c.Lookup(id)
	if !ok {
		c.logger.Debug("toggle ignored, item not in snapshot", zap.String("id", id))
		return false, nil
	}

	resolved := !item.Resolved
	if err := c.store.SetResolved(ctx, id, resolved); err != nil {
		c.logger.Error("toggle resolved failed", zap.String("id", id), zap.Error(err))
		return false, fmt.Errorf("toggle resolved: %w", err)
	}
	return resolved, nil
}

// Items returns a copy of the current snapshot in store order.
func (c *ItemCache) Items() []models.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyLocked()
}

// Lookup finds an item in the current snapshot.
func (c *ItemCache) Lookup(id string) (models.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.Item{}, false
}

// Ready is closed once the cache holds its first snapshot, live or fallback.
func (c *ItemCache) Ready() <-chan struct{} {
	return c.ready
}

// Degraded reports whether the cache is serving the fallback demo set.
func (c *ItemCache) Degraded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.degraded
}

func (c *ItemCache) copyLocked() []models.Item {
	out := make([]models.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Watch streams snapshots: the current one right away, then each replacement.
// A slow reader skips intermediate snapshots but always receives the latest.
// The channel closes when ctx ends or the cache closes.
func (c *ItemCache) Watch(ctx context.Context) <-chan []models.Item {
	w := &cacheWatcher{ch: make(chan []models.Item, 1)}

	c.lifeMu.Lock()
	if c.closed {
		c.lifeMu.Unlock()
		close(w.ch)
		return w.ch
	}
	c.wg.Add(1)
	c.lifeMu.Unlock()

	c.mu.Lock()
	w.offer(c.copyLocked())
	c.watchers[w] = struct{}{}
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		select {
		case <-ctx.Done():
		case <-c.closing:
		}
		c.mu.Lock()
		delete(c.watchers, w)
		close(w.ch)
		c.mu.Unlock()
	}()
	return w.ch
}

// offer replaces any unread snapshot with items. Only the cache sends on ch,
// always while holding c.mu.
func (w *cacheWatcher) offer(items []models.Item) {
	select {
	case w.ch <- items:
		return
	default:
	}
	select {
	case <-w.ch:
	default:
	}
	select {
	case w.ch <- items:
	default:
	}
}
