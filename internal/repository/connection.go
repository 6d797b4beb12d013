package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

// EnsureIndexes creates the unique indexes the repositories rely on. Run it
// once at startup before serving traffic.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexed := []interface {
		CreateIndexes(ctx context.Context) error
	}{
		&mongoCartRepository{collection: db.Collection("carts")},
		&mongoUserRepository{collection: db.Collection("users")},
	}

	for _, repo := range indexed {
		if err := repo.CreateIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}
