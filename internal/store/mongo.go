package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/someoxygen/chat-app/internal/apperrors"
	"github.com/someoxygen/chat-app/internal/domain"
)

// MongoStore persists messages in a single collection. Edit and delete
// rely on Mongo's per-document atomicity (FindOneAndUpdate /
// DeleteOne), so the loser of a concurrent edit+delete race observes
// ErrNotFound rather than corrupting state.
type MongoStore struct {
	coll *mongo.Collection
	seq  atomic.Int64
}

// NewMongoClient dials the server with a bounded timeout.
func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return client, nil
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	ix := mongo.IndexModel{
		Keys:    bson.D{{Key: "sender", Value: 1}, {Key: "receiver", Value: 1}, {Key: "timestamp", Value: 1}},
		Options: options.Index().SetName("pair_ts_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), ix)
	s := &MongoStore{coll: coll}
	s.seq.Store(time.Now().UnixNano())
	return s
}

func (s *MongoStore) Append(ctx context.Context, sender, receiver, text string) (*domain.Message, error) {
	m := &domain.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Receiver:  receiver,
		Text:      text,
		Timestamp: time.Now().UTC(),
		Seq:       s.seq.Add(1),
	}
	if _, err := s.coll.InsertOne(ctx, m); err != nil {
		return nil, wrapStoreErr(err)
	}
	return m, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*domain.Message, error) {
	var m domain.Message
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, wrapStoreErr(err)
	}
	return &m, nil
}

func (s *MongoStore) Edit(ctx context.Context, id, newText string) (*domain.Message, error) {
	update := bson.M{"$set": bson.M{"text": newText, "edited": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m domain.Message
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, wrapStoreErr(err)
	}
	return &m, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapStoreErr(err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteConversation(ctx context.Context, userA, userB string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, pairFilter(userA, userB))
	if err != nil {
		return 0, wrapStoreErr(err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) ListConversation(ctx context.Context, userA, userB string) ([]*domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "seq", Value: 1}})
	cur, err := s.coll.Find(ctx, pairFilter(userA, userB), opts)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	defer cur.Close(ctx)
	out := []*domain.Message{}
	for cur.Next(ctx) {
		var m domain.Message
		if err := cur.Decode(&m); err != nil {
			return nil, wrapStoreErr(err)
		}
		out = append(out, &m)
	}
	if err := cur.Err(); err != nil {
		return nil, wrapStoreErr(err)
	}
	return out, nil
}

// pairFilter matches both directions of the pair, mirroring the $or
// query the read API is defined by.
func pairFilter(userA, userB string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender": userA, "receiver": userB},
		bson.M{"sender": userB, "receiver": userA},
	}}
}

func wrapStoreErr(err error) error {
	return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
}
