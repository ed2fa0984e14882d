package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/nexusfind/backend/internal/models"
)

func sampleItem() models.Item {
	return models.Item{
		ID:          "abc",
		Name:        "Red Umbrella",
		Description: "Left in room 3",
		ImageURL:    models.PlaceholderImageURL,
		ImageHint:   "red umbrella",
		Status:      models.StatusFound,
		Resolved:    true,
		Institution: models.InstitutionIIITB,
		Category:    "Accessories",
		UserID:      "user_1_abcdefg",
	}
}

func TestFirestoreDocConversion(t *testing.T) {
	item := sampleItem()
	doc := itemToFirestoreDoc(item)
	assert.Equal(t, "found", doc.Status)
	assert.Equal(t, "IIITB", doc.Institution)
	assert.Equal(t, item, firestoreDocToItem("abc", doc))
}

func TestMongoDocConversion(t *testing.T) {
	item := sampleItem()
	doc := itemToMongoDoc(item)
	assert.Equal(t, "abc", doc.ID)
	assert.Equal(t, item, mongoDocToItem(doc))
}

func TestMongoDocFieldNames(t *testing.T) {
	raw, err := bson.Marshal(itemToMongoDoc(sampleItem()))
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))

	for _, key := range []string{"_id", "name", "description", "imageUrl", "imageHint", "status", "resolved", "institution", "category", "userId", "createdAt"} {
		assert.Contains(t, doc, key)
	}
	for _, key := range []string{"image_url", "image_hint", "user_id", "created_at"} {
		assert.NotContains(t, doc, key)
	}
	assert.Equal(t, "user_1_abcdefg", doc["userId"])
}

// exerciseItemStore runs the shared store contract against a live backend.
func exerciseItemStore(t *testing.T, store ItemStore) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snaps, err := store.Watch(ctx)
	require.NoError(t, err)

	initial := <-snaps
	require.NoError(t, initial.Err)

	item := sampleItem()
	item.Resolved = false
	id, err := store.Create(ctx, item)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	seen := func(want bool) {
		t.Helper()
		for snap := range snaps {
			require.NoError(t, snap.Err)
			for _, it := range snap.Items {
				if it.ID == id && it.Resolved == want {
					return
				}
			}
		}
		t.Fatalf("item %s never reached resolved=%v", id, want)
	}
	seen(false)

	require.NoError(t, store.SetResolved(ctx, id, true))
	seen(true)

	assert.ErrorIs(t, store.SetResolved(ctx, "does-not-exist", true), ErrItemNotFound)

	listed, err := store.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, listed)
}

func TestFirestoreItemStore_Emulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	store, err := NewFirestoreItemStore(context.Background(), "nexusfind-test", "", nil)
	require.NoError(t, err)
	defer store.Close(context.Background())

	exerciseItemStore(t, store)
}

func TestMongoItemStore_Live(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	store, err := NewMongoItemStore(context.Background(), uri, "nexusfind_test", nil)
	require.NoError(t, err)
	defer store.Close(context.Background())

	exerciseItemStore(t, store)
}

func TestMemoryItemStore_Contract(t *testing.T) {
	exerciseItemStore(t, NewMemoryItemStore())
}
