package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	BootcampsCollection = "bootcamps"
	CoursesCollection   = "courses"
	ReviewsCollection   = "reviews"
	UsersCollection     = "users"
)

// Connect opens a client, verifies it with a ping and returns the
// database handle. The caller owns the lifecycle; use Disconnect on
// shutdown.
func Connect(uri, name string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}
	return client.Database(name), nil
}

// Disconnect closes the underlying client.
func Disconnect(database *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return database.Client().Disconnect(ctx)
}

// EnsureIndexes creates the indexes the queries depend on: the geo
// index for radius search, the unique email on users, and the unique
// (bootcamp, user) pair on reviews.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(BootcampsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: "2dsphere"}},
	})
	if err != nil {
		return fmt.Errorf("bootcamps location index: %w", err)
	}

	_, err = database.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	_, err = database.Collection(ReviewsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "bootcamp", Value: 1}, {Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("reviews bootcamp+user index: %w", err)
	}
	return nil
}
