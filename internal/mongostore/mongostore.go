// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mongostore keeps seeded occurrence records in MongoDB, one
// collection per dataset.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"

	"github.com/pdiddy/occurrence-etl/pkg/types"
)

const (
	DefaultURI      = "mongodb://127.0.0.1:27017"
	DefaultDatabase = "sih"

	pingTimeout = 10 * time.Second
)

// Store is a MongoDB-backed record store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client for cfg.MongoURI and checks the server answers.
// The database is cfg.MongoDatabase, else the one named in the URI path,
// else DefaultDatabase.
func Connect(ctx context.Context, cfg types.StoreConfig) (*Store, error) {
	uri := cfg.MongoURI
	if uri == "" {
		uri = DefaultURI
	}
	dbName, err := databaseName(uri, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ReplaceRecords empties the dataset's collection and inserts docs in
// order. Documents may use MongoDB Extended JSON.
func (s *Store) ReplaceRecords(ctx context.Context, dataset string, docs []types.Document) (int, error) {
	parsed, err := decodeDocuments(docs)
	if err != nil {
		return 0, fmt.Errorf("decoding %s: %w", dataset, err)
	}

	coll := s.db.Collection(dataset)
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return 0, fmt.Errorf("clearing %s: %w", dataset, err)
	}
	if len(parsed) == 0 {
		return 0, nil
	}

	res, err := coll.InsertMany(ctx, parsed)
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", dataset, err)
	}
	return len(res.InsertedIDs), nil
}

// Datasets lists every non-empty collection with its document count.
func (s *Store) Datasets(ctx context.Context) ([]types.DatasetCount, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	sort.Strings(names)

	var out []types.DatasetCount
	for _, name := range names {
		n, err := s.db.Collection(name).CountDocuments(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", name, err)
		}
		if n == 0 {
			continue
		}
		out = append(out, types.DatasetCount{Name: name, Records: int(n)})
	}
	return out, nil
}

// Records returns up to limit documents of dataset in insertion order.
// A limit of zero or less returns all of them.
func (s *Store) Records(ctx context.Context, dataset string, limit int) ([]types.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetProjection(bson.M{"_id": 0})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.db.Collection(dataset).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", dataset, err)
	}
	defer cursor.Close(ctx)

	out := []types.Document{}
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding %s record: %w", dataset, err)
		}
		raw, err := encodeDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", dataset, err)
	}
	return out, nil
}

// Record returns the first document of dataset whose id field equals id,
// matching numeric ids by value.
func (s *Store) Record(ctx context.Context, dataset, id string) (types.Document, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}}).SetProjection(bson.M{"_id": 0})

	var doc bson.D
	err := s.db.Collection(dataset).FindOne(ctx, recordIDFilter(id), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("record %s in %s: %w", id, dataset, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying record %s: %w", id, err)
	}
	return encodeDocument(doc)
}

func databaseName(uri, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("parsing mongo uri: %w", err)
	}
	if cs.Database != "" {
		return cs.Database, nil
	}
	return DefaultDatabase, nil
}

func recordIDFilter(id string) bson.M {
	if n, err := cast.ToInt64E(id); err == nil && cast.ToString(n) == id {
		return bson.M{types.RecordIDField: bson.M{"$in": bson.A{n, id}}}
	}
	return bson.M{types.RecordIDField: id}
}

func decodeDocuments(docs []types.Document) ([]any, error) {
	out := make([]any, len(docs))
	for i, raw := range docs {
		var doc bson.D
		if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = doc
	}
	return out, nil
}

func encodeDocument(doc bson.D) (types.Document, error) {
	raw, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return types.Document(raw), nil
}
