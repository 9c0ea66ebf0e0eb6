// Package mongodb provides a MongoDB-backed point store.
//
// Each point set is written to its own data collection and then registered
// in the point_sets collection. Readers only see registered sets, so a set
// is visible complete or not at all. Single points share one collection per
// namespace. Point documents look like {_id, x, y, position}.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
	"github.com/custodia-labs/playground/internal/logger"
)

// DefaultDatabase is the database used when none is configured.
const DefaultDatabase = "points"

// pointSetsCollection registers complete point sets.
const pointSetsCollection = "point_sets"

// Ensure PointStore implements the interface.
var _ driven.PointStore = (*PointStore)(nil)

// pointDoc is the stored form of a point.
type pointDoc struct {
	ID       string  `bson:"_id"`
	X        float64 `bson:"x"`
	Y        float64 `bson:"y"`
	Position int     `bson:"position"`
}

func (d pointDoc) point() domain.Point {
	return domain.Point{ID: d.ID, X: d.X, Y: d.Y}
}

// pointSetDoc registers a point set and names the collection holding it.
type pointSetDoc struct {
	Name       string    `bson:"_id"`
	Collection string    `bson:"collection"`
	Count      int       `bson:"count"`
	CreatedAt  time.Time `bson:"created_at"`
}

// PointStore implements driven.PointStore on MongoDB.
type PointStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client for uri and returns a store on database.
// ctx bounds the connection and the initial ping.
func Connect(ctx context.Context, uri, database string) (*PointStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: mongo uri is required", domain.ErrInvalidInput)
	}
	if database == "" {
		database = DefaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	return &PointStore{client: client, db: client.Database(database)}, nil
}

// HasCollection reports whether a point set exists.
func (s *PointStore) HasCollection(ctx context.Context, name string) (bool, error) {
	_, err := s.pointSet(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertPoints creates a point set. The points go to a fresh data collection
// first; the set becomes visible only when its registration is written.
// A second writer loses on the registration key and gets ErrAlreadyExists.
func (s *PointStore) InsertPoints(ctx context.Context, name string, points []domain.Point) error {
	exists, err := s.HasCollection(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("point set %s: %w", name, domain.ErrAlreadyExists)
	}

	data := dataCollectionName(name)
	if len(points) > 0 {
		docs := make([]any, len(points))
		for i, p := range points {
			docs[i] = pointDoc{ID: p.ID, X: p.X, Y: p.Y, Position: i}
		}
		if _, err := s.db.Collection(data).InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
			s.dropQuietly(data)
			return fmt.Errorf("inserting points: %w", err)
		}
	}

	_, err = s.db.Collection(pointSetsCollection).InsertOne(ctx, pointSetDoc{
		Name:       name,
		Collection: data,
		Count:      len(points),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		s.dropQuietly(data)
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("point set %s: %w", name, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("registering point set: %w", err)
	}
	return nil
}

// GetPoints returns a point set in insertion order.
func (s *PointStore) GetPoints(ctx context.Context, name string) ([]domain.Point, error) {
	set, err := s.pointSet(ctx, name)
	if err != nil {
		return nil, err
	}
	if set.Count == 0 {
		return []domain.Point{}, nil
	}

	cursor, err := s.db.Collection(set.Collection).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("finding points: %w", err)
	}

	var docs []pointDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding points: %w", err)
	}
	if len(docs) != set.Count {
		return nil, fmt.Errorf("point set %s: expected %d points, found %d", name, set.Count, len(docs))
	}

	points := make([]domain.Point, len(docs))
	for i, d := range docs {
		points[i] = d.point()
	}
	return points, nil
}

// DeleteCollection removes a point set. Unregistering comes first so
// readers stop seeing the set before its data is dropped.
func (s *PointStore) DeleteCollection(ctx context.Context, name string) error {
	var set pointSetDoc
	err := s.db.Collection(pointSetsCollection).
		FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: name}}).
		Decode(&set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("unregistering point set: %w", err)
	}
	if set.Collection == "" {
		return nil
	}
	if err := s.db.Collection(set.Collection).Drop(ctx); err != nil {
		return fmt.Errorf("dropping collection: %w", err)
	}
	return nil
}

// UpsertPoint stores a single point under a namespace.
func (s *PointStore) UpsertPoint(ctx context.Context, namespace string, p domain.Point) error {
	_, err := s.db.Collection(namespace).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: p.ID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "x", Value: p.X}, {Key: "y", Value: p.Y}}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upserting point: %w", err)
	}
	return nil
}

// GetPoint retrieves a single point.
func (s *PointStore) GetPoint(ctx context.Context, namespace, id string) (*domain.Point, error) {
	var d pointDoc
	err := s.db.Collection(namespace).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding point: %w", err)
	}
	p := d.point()
	return &p, nil
}

// DeletePoint removes a single point.
func (s *PointStore) DeletePoint(ctx context.Context, namespace, id string) error {
	if _, err := s.db.Collection(namespace).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *PointStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *PointStore) pointSet(ctx context.Context, name string) (*pointSetDoc, error) {
	var set pointSetDoc
	err := s.db.Collection(pointSetsCollection).FindOne(ctx, bson.D{{Key: "_id", Value: name}}).Decode(&set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("point set %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding point set: %w", err)
	}
	return &set, nil
}

// dropQuietly removes an unregistered data collection. Failures only leave
// an orphan that no reader can reach.
func (s *PointStore) dropQuietly(collection string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.db.Collection(collection).Drop(ctx); err != nil {
		logger.Warn("dropping orphan point collection %s: %v", collection, err)
	}
}

// dataCollectionName returns a collection name unique to one write attempt.
func dataCollectionName(set string) string {
	return "set_" + set + "_" + uuid.NewString()
}
