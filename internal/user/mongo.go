package user

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/someoxygen/chat-app/internal/domain"
)

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	ix := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), ix)
	return &MongoRepository{coll: coll}
}

func (r *MongoRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		var we mongo.WriteException
		if errors.As(err, &we) {
			for _, e := range we.WriteErrors {
				if e.Code == 11000 {
					return ErrAlreadyExists
				}
			}
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *MongoRepository) Update(ctx context.Context, u *domain.User) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) ListUsernames(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"username": 1}).
		SetSort(bson.D{{Key: "username", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)
	out := []string{}
	for cur.Next(ctx) {
		var u domain.User
		if err := cur.Decode(&u); err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		out = append(out, u.Username)
	}
	return out, cur.Err()
}
