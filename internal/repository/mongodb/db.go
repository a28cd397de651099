package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Khadka1996/everestnews-server/internal/config"
)

// Collection names.
const (
	collArticles   = "articles"
	collEnglish    = "englisharticles"
	collCategories = "categories"
	collTags       = "tags"
	collAuthors    = "authors"
)

// DB holds the shared client and database handle. It is created once at
// process start and reused by every request.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

// New connects to MongoDB and verifies the connection with a ping
// bounded by the configured connect timeout.
func New(cfg config.MongoConfig) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &DB{
		client:   client,
		database: client.Database(cfg.Database),
	}, nil
}

// Close disconnects the shared client.
func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// Ping verifies connectivity, used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

func (db *DB) collection(name string) *mongo.Collection {
	return db.database.Collection(name)
}
