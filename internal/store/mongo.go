package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/address-registry/app/models"
)

const (
	addressCollection  = "addresses"
	mergeLogCollection = "merge_log"
)

// MongoStore is the production Store over a MongoDB collection. Alias and
// description appends use field-level atomic updates, never
// read-modify-write, so concurrent request handlers cannot lose writes.
type MongoStore struct {
	addresses *mongo.Collection
	mergeLog  *mongo.Collection
	logger    *zap.Logger
}

// NewMongoStore wraps the given database and bootstraps indexes. Index
// creation failure is logged, not fatal: queries still work, just slower.
func NewMongoStore(db *mongo.Database, logger *zap.Logger) *MongoStore {
	s := &MongoStore{
		addresses: db.Collection(addressCollection),
		mergeLog:  db.Collection(mergeLogCollection),
		logger:    logger,
	}

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{bson.E{Key: "formatted_address", Value: 1}}},
		{Keys: bson.D{bson.E{Key: "aliases.raw_text", Value: 1}}},
		{Keys: bson.D{bson.E{Key: "geohash", Value: 1}}},
		{Keys: bson.D{bson.E{Key: "updated_at", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.addresses.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("could not create address indexes", zap.Error(err))
	}

	return s
}

// GetByID implements Store.
func (s *MongoStore) GetByID(ctx context.Context, id string) (*models.CanonicalAddress, error) {
	var addr models.CanonicalAddress
	err := s.addresses.FindOne(ctx, bson.M{"_id": id}).Decode(&addr)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get address %s: %w", id, err)
	}
	return &addr, nil
}

// FindByFormatted implements Store.
func (s *MongoStore) FindByFormatted(ctx context.Context, formatted string) (*models.CanonicalAddress, error) {
	var addr models.CanonicalAddress
	err := s.addresses.FindOne(ctx, bson.M{"formatted_address": formatted}).Decode(&addr)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find by formatted address: %w", err)
	}
	return &addr, nil
}

// FindByAlias implements Store.
func (s *MongoStore) FindByAlias(ctx context.Context, rawText string) (*models.CanonicalAddress, error) {
	var addr models.CanonicalAddress
	err := s.addresses.FindOne(ctx, bson.M{"aliases.raw_text": rawText}).Decode(&addr)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find by alias: %w", err)
	}
	return &addr, nil
}

// All implements Store.
func (s *MongoStore) All(ctx context.Context) ([]models.CanonicalAddress, error) {
	cursor, err := s.addresses.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("scan addresses: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.CanonicalAddress
	for cursor.Next(ctx) {
		var addr models.CanonicalAddress
		if err := cursor.Decode(&addr); err != nil {
			s.logger.Warn("skipping undecodable address document", zap.Error(err))
			continue
		}
		out = append(out, addr)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("scan addresses: %w", err)
	}
	return out, nil
}

// Insert implements Store.
func (s *MongoStore) Insert(ctx context.Context, addr *models.CanonicalAddress) error {
	if _, err := s.addresses.InsertOne(ctx, addr); err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

// AddAlias implements Store. The filter excludes documents that already
// carry the raw text, which makes the push idempotent without a
// read-modify-write cycle.
func (s *MongoStore) AddAlias(ctx context.Context, id string, alias models.Alias) error {
	filter := bson.M{
		"_id":              id,
		"aliases.raw_text": bson.M{"$ne": alias.RawText},
	}
	update := bson.M{
		"$push": bson.M{"aliases": alias},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := s.addresses.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("add alias: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the id is gone or the alias is already present.
		n, err := s.addresses.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("add alias: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// AddDescription implements Store.
func (s *MongoStore) AddDescription(ctx context.Context, id string, d models.Description) error {
	update := bson.M{
		"$push": bson.M{"descriptions": d},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := s.addresses.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("add description: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceMerged implements Store.
func (s *MongoStore) ReplaceMerged(ctx context.Context, addr *models.CanonicalAddress) error {
	res, err := s.addresses.ReplaceOne(ctx, bson.M{"_id": addr.ID}, addr)
	if err != nil {
		return fmt.Errorf("replace merged address %s: %w", addr.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete implements Store. Missing ids are a no-op.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.addresses.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete address %s: %w", id, err)
	}
	return nil
}

// AppendMergeLog implements Store.
func (s *MongoStore) AppendMergeLog(ctx context.Context, entry models.MergeLogEntry) error {
	if _, err := s.mergeLog.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("append merge log: %w", err)
	}
	return nil
}

// Count implements Store.
func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	n, err := s.addresses.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count addresses: %w", err)
	}
	return n, nil
}
