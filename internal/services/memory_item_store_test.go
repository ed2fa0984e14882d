package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nexusfind/backend/internal/models"
)

func TestMemoryItemStore_CreateAndList(t *testing.T) {
	store := NewMemoryItemStore()
	ctx := context.Background()

	a, err := store.Create(ctx, models.Item{ID: "ignored", Name: "First"})
	require.NoError(t, err)
	b, err := store.Create(ctx, models.Item{Name: "Second"})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", a)
	assert.NotEqual(t, a, b)

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "First", items[0].Name)
	assert.Equal(t, a, items[0].ID)
	assert.Equal(t, "Second", items[1].Name)
}

func TestMemoryItemStore_SetResolved(t *testing.T) {
	store := NewMemoryItemStore()
	ctx := context.Background()

	id, err := store.Create(ctx, models.Item{Name: "Keys"})
	require.NoError(t, err)
	require.NoError(t, store.SetResolved(ctx, id, true))

	items, _ := store.List(ctx)
	assert.True(t, items[0].Resolved)

	assert.ErrorIs(t, store.SetResolved(ctx, "nope", true), ErrItemNotFound)
}

func TestMemoryItemStore_Watch(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := NewMemoryItemStore()
	ctx, cancel := context.WithCancel(context.Background())

	snaps, err := store.Watch(ctx)
	require.NoError(t, err)

	initial := <-snaps
	require.NoError(t, initial.Err)
	assert.Empty(t, initial.Items)

	id, err := store.Create(context.Background(), models.Item{Name: "Wallet"})
	require.NoError(t, err)

	next := <-snaps
	require.Len(t, next.Items, 1)
	assert.Equal(t, id, next.Items[0].ID)

	cancel()
	for range snaps {
	}
}

func TestMemoryItemStore_ListReturnsCopies(t *testing.T) {
	store := NewMemoryItemStore()
	ctx := context.Background()
	_, err := store.Create(ctx, models.Item{Name: "Laptop"})
	require.NoError(t, err)

	items, _ := store.List(ctx)
	items[0].Name = "changed"

	again, _ := store.List(ctx)
	assert.Equal(t, "Laptop", again[0].Name)
}
