// Package mongostore implements storage.Store on a MongoDB collection.
//
// Documents are stored with the map ID as _id. An index on updated_at backs
// the List ordering.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	errs "github.com/matzehuels/metromap/pkg/errors"
	"github.com/matzehuels/metromap/pkg/storage"
)

const (
	DefaultDatabase   = "metromap"
	DefaultCollection = "maps"

	connectTimeout = 10 * time.Second
)

// Config configures [New].
type Config struct {
	URI        string
	Database   string
	Collection string
}

// Store is a MongoDB-backed map store.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// New connects to MongoDB, pings the primary and ensures the listing index.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errs.Backend(err, "connect mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Backend(err, "ping mongodb")
	}

	s := &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		now:    time.Now,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: -1}},
	})
	if err != nil {
		return errs.Backend(err, "create index")
	}
	return nil
}

func (s *Store) Save(ctx context.Context, doc storage.Document) (storage.Document, error) {
	var existing *storage.Document
	if doc.ID != "" {
		prev, err := s.Get(ctx, doc.ID)
		switch {
		case err == nil:
			existing = &prev
		case !errors.Is(err, storage.ErrNotFound):
			return storage.Document{}, err
		}
	}
	doc, err := storage.Prepare(doc, existing, s.now())
	if err != nil {
		return storage.Document{}, err
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return storage.Document{}, errs.Backend(err, "save map %s", doc.ID)
	}
	return doc, nil
}

func (s *Store) Get(ctx context.Context, id string) (storage.Document, error) {
	if err := errs.ValidateMapID(id); err != nil {
		return storage.Document{}, err
	}
	var doc storage.Document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.Document{}, storage.NotFound(id)
	}
	if err != nil {
		return storage.Document{}, errs.Backend(err, "get map %s", id)
	}
	return doc, nil
}

func (s *Store) List(ctx context.Context) ([]storage.Document, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "updated_at", Value: -1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errs.Backend(err, "list maps")
	}
	var docs []storage.Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Backend(err, "decode maps")
	}
	return docs, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := errs.ValidateMapID(id); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errs.Backend(err, "delete map %s", id)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
