package services

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nexusfind/backend/internal/models"
)

// FirestoreItemStore keeps items in the Firestore "items" collection. The
// document id is the item id and is not stored in the document body.
type FirestoreItemStore struct {
	client *firestore.Client
	items  *firestore.CollectionRef
	logger *zap.Logger
}

type firestoreItemDoc struct {
	Name        string `firestore:"name"`
	Description string `firestore:"description"`
	ImageURL    string `firestore:"imageUrl"`
	ImageHint   string `firestore:"imageHint"`
	Status      string `firestore:"status"`
	Resolved    bool   `firestore:"resolved"`
	Institution string `firestore:"institution"`
	Category    string `firestore:"category"`
	UserID      string `firestore:"userId"`
}

// NewFirestoreItemStore connects through the Firebase Admin SDK. With empty
// credentialsJSON it uses Application Default Credentials; FIRESTORE_EMULATOR_HOST
// is honored by the client.
func NewFirestoreItemStore(ctx context.Context, projectID, credentialsJSON string, logger *zap.Logger) (*FirestoreItemStore, error) {
	var opts []option.ClientOption
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}

	var fbCfg *firebase.Config
	if projectID != "" {
		fbCfg = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return NewFirestoreItemStoreWithClient(client, logger), nil
}

func NewFirestoreItemStoreWithClient(client *firestore.Client, logger *zap.Logger) *FirestoreItemStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FirestoreItemStore{
		client: client,
		items:  client.Collection(ItemsCollection),
		logger: logger.Named("firestore"),
	}
}

func (s *FirestoreItemStore) Watch(ctx context.Context) (<-chan Snapshot, error) {
	it := s.items.Snapshots(ctx)

	out := make(chan Snapshot)
	go func() {
		defer close(out)
		defer it.Stop()

		for {
			qs, err := it.Next()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
					return
				}
				select {
				case out <- Snapshot{Err: fmt.Errorf("items snapshot: %w", err)}:
				case <-ctx.Done():
				}
				return
			}

			docs, err := qs.Documents.GetAll()
			if err != nil {
				select {
				case out <- Snapshot{Err: fmt.Errorf("items snapshot documents: %w", err)}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case out <- Snapshot{Items: s.toItems(docs)}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *FirestoreItemStore) List(ctx context.Context) ([]models.Item, error) {
	docs, err := s.items.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return s.toItems(docs), nil
}

func (s *FirestoreItemStore) Create(ctx context.Context, item models.Item) (string, error) {
	ref, _, err := s.items.Add(ctx, itemToFirestoreDoc(item))
	if err != nil {
		return "", fmt.Errorf("create item: %w", err)
	}
	return ref.ID, nil
}

func (s *FirestoreItemStore) SetResolved(ctx context.Context, id string, resolved bool) error {
	_, err := s.items.Doc(id).Update(ctx, []firestore.Update{
		{Path: "resolved", Value: resolved},
	})
	if status.Code(err) == codes.NotFound {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("update item %s: %w", id, err)
	}
	return nil
}

func (s *FirestoreItemStore) Close(_ context.Context) error {
	return s.client.Close()
}

// toItems converts documents, skipping any that do not decode.
func (s *FirestoreItemStore) toItems(docs []*firestore.DocumentSnapshot) []models.Item {
	items := make([]models.Item, 0, len(docs))
	for _, d := range docs {
		var doc firestoreItemDoc
		if err := d.DataTo(&doc); err != nil {
			s.logger.Warn("skipping malformed item document", zap.String("id", d.Ref.ID), zap.Error(err))
			continue
		}
		items = append(items, firestoreDocToItem(d.Ref.ID, doc))
	}
	return items
}

func firestoreDocToItem(id string, d firestoreItemDoc) models.Item {
	return models.Item{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		ImageHint:   d.ImageHint,
		Status:      models.ItemStatus(d.Status),
		Resolved:    d.Resolved,
		Institution: models.Institution(d.Institution),
		Category:    d.Category,
		UserID:      d.UserID,
	}
}

func itemToFirestoreDoc(item models.Item) firestoreItemDoc {
	return firestoreItemDoc{
		Name:        item.Name,
		Description: item.Description,
		ImageURL:    item.ImageURL,
		ImageHint:   item.ImageHint,
		Status:      string(item.Status),
		Resolved:    item.Resolved,
		Institution: string(item.Institution),
		Category:    item.Category,
		UserID:      item.UserID,
	}
}
