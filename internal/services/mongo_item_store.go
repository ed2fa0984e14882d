package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/nexusfind/backend/internal/models"
)

// MongoItemStore keeps items in a MongoDB collection. Watch needs a replica set
// or Atlas cluster, since it is built on change streams.
type MongoItemStore struct {
	client *mongo.Client
	items  *mongo.Collection
	logger *zap.Logger
	newID  func() string
	now    func() time.Time
}

type mongoItemDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	ImageURL    string    `bson:"imageUrl"`
	ImageHint   string    `bson:"imageHint"`
	Status      string    `bson:"status"`
	Resolved    bool      `bson:"resolved"`
	Institution string    `bson:"institution"`
	Category    string    `bson:"category"`
	UserID      string    `bson:"userId"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func NewMongoItemStore(ctx context.Context, mongoURI, dbName string, logger *zap.Logger) (*MongoItemStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := options.Client().ApplyURI(mongoURI)
	// Atlas occasionally fails TLS negotiation unless TLS 1.2 is forced.
	if strings.HasPrefix(mongoURI, "mongodb+srv://") {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS12,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	items := client.Database(dbName).Collection(ItemsCollection)

	// Best-effort indexes.
	_, _ = items.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "institution", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})

	logger = logger.Named("mongo")
	logger.Info("MongoDB connected", zap.String("db", dbName))

	return &MongoItemStore{
		client: client,
		items:  items,
		logger: logger,
		newID:  uuid.NewString,
		now:    time.Now,
	}, nil
}

// Watch sends the collection, then re-reads it after every change event.
func (s *MongoItemStore) Watch(ctx context.Context) (<-chan Snapshot, error) {
	stream, err := s.items.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("open change stream: %w", err)
	}

	out := make(chan Snapshot)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		send := func(snap Snapshot) bool {
			select {
			case out <- snap:
				return snap.Err == nil
			case <-ctx.Done():
				return false
			}
		}
		emit := func() bool {
			items, err := s.List(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				return send(Snapshot{Err: err})
			}
			return send(Snapshot{Items: items})
		}

		if !emit() {
			return
		}
		for stream.Next(ctx) {
			// Drain whatever else is already available so a burst of writes
			// yields one snapshot.
			for stream.TryNext(ctx) {
			}
			if stream.Err() != nil {
				break
			}
			if !emit() {
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			send(Snapshot{Err: fmt.Errorf("change stream: %w", err)})
		}
	}()
	return out, nil
}

func (s *MongoItemStore) List(ctx context.Context) ([]models.Item, error) {
	cur, err := s.items.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoItemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}

	items := make([]models.Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, mongoDocToItem(d))
	}
	return items, nil
}

func (s *MongoItemStore) Create(ctx context.Context, item models.Item) (string, error) {
	doc := itemToMongoDoc(item)
	doc.ID = s.newID()
	doc.CreatedAt = s.now().UTC()

	if _, err := s.items.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("create item: %w", err)
	}
	return doc.ID, nil
}

func (s *MongoItemStore) SetResolved(ctx context.Context, id string, resolved bool) error {
	res, err := s.items.UpdateByID(ctx, id, bson.M{"$set": bson.M{"resolved": resolved}})
	if err != nil {
		return fmt.Errorf("update item %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *MongoItemStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func mongoDocToItem(d mongoItemDoc) models.Item {
	return models.Item{
		ID:          d.ID,
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

func itemToMongoDoc(item models.Item) mongoItemDoc {
	return mongoItemDoc{
		ID:          item.ID,
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
