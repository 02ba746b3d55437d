package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PoolOptions sizes the driver connection pool. Zero values fall back to the
// defaults below.
type PoolOptions struct {
	MaxPoolSize            uint64
	MinPoolSize            uint64
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
}

func (o PoolOptions) withDefaults() PoolOptions {
	if o.MaxPoolSize == 0 {
		o.MaxPoolSize = 100
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	if o.ServerSelectionTimeout == 0 {
		o.ServerSelectionTimeout = 5 * time.Second
	}
	return o
}

func clientOptions(uri string, pool PoolOptions) *options.ClientOptions {
	pool = pool.withDefaults()
	return options.Client().
		ApplyURI(uri).
		SetConnectTimeout(pool.ConnectTimeout).
		SetServerSelectionTimeout(pool.ServerSelectionTimeout).
		SetMaxPoolSize(pool.MaxPoolSize).
		SetMinPoolSize(pool.MinPoolSize)
}

func ConnectMongoDB(ctx context.Context, uri, database string, pool PoolOptions) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, clientOptions(uri, pool))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

// EnsureIndexes creates the indexes every collection relies on. It is safe to
// call on each startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := &userRepository{collection: db.Collection(usersCollection)}
	return users.createIndexes(ctx)
}
