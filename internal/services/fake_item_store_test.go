package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/nexusfind/backend/internal/models"
)

type resolvedCall struct {
	id       string
	resolved bool
}

// fakeItemStore lets tests drive the subscription by hand and records every
// mutation call.
type fakeItemStore struct {
	feed chan Snapshot

	mu             sync.Mutex
	listItems      []models.Item
	listErr        error
	watchErr       error
	createErr      func(item models.Item) error
	setResolvedErr error
	created        []models.Item
	resolvedCalls  []resolvedCall
	nextID         int
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{feed: make(chan Snapshot)}
}

func (f *fakeItemStore) Watch(ctx context.Context) (<-chan Snapshot, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	out := make(chan Snapshot)
	go func() {
		defer close(out)
		for {
			var snap Snapshot
			select {
			case <-ctx.Done():
				return
			case snap = <-f.feed:
			}
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
			if snap.Err != nil {
				return
			}
		}
	}()
	return out, nil
}

func (f *fakeItemStore) List(context.Context) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Item, len(f.listItems))
	copy(out, f.listItems)
	return out, nil
}

func (f *fakeItemStore) Create(_ context.Context, item models.Item) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, item)
	if f.createErr != nil {
		if err := f.createErr(item); err != nil {
			return "", err
		}
	}
	f.nextID++
	return fmt.Sprintf("doc-%d", f.nextID), nil
}

func (f *fakeItemStore) SetResolved(_ context.Context, id string, resolved bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolvedCalls = append(f.resolvedCalls, resolvedCall{id: id, resolved: resolved})
	return f.setResolvedErr
}

func (f *fakeItemStore) Close(context.Context) error { return nil }

func (f *fakeItemStore) createdItems() []models.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Item, len(f.created))
	copy(out, f.created)
	return out
}

func (f *fakeItemStore) toggles() []resolvedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]resolvedCall, len(f.resolvedCalls))
	copy(out, f.resolvedCalls)
	return out
}
