// Package database owns the process-wide MongoDB connection.
//
// Connect is called once at startup and Close once at shutdown; everything
// in between receives the *mongo.Database handle through constructor
// injection rather than reaching for a global.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/motomart/config"
)

var client *mongo.Client

const connectTimeout = 10 * time.Second

// Connect opens the MongoDB client, verifies the connection, and ensures
// the indexes the application relies on. Returns an error instead of
// calling log.Fatal so the caller can shut down gracefully.
func Connect(ctx context.Context) (*mongo.Database, error) {
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var err error
	client, err = mongo.Connect(cctx, options.Client().ApplyURI(config.MongoURI()))
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	// Verify connection is live.
	if err := client.Ping(cctx, nil); err != nil {
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	db := client.Database(config.MongoDB())

	if err := ensureIndexes(cctx, db); err != nil {
		return nil, err
	}

	return db, nil
}

// ensureIndexes creates the unique email index on users and the owner index
// on orders. Idempotent; Mongo ignores an existing identical index.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("database: users email index: %w", err)
	}

	_, err = db.Collection("orders").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("database: orders user index: %w", err)
	}

	return nil
}

// Ping checks the server is still reachable. Used by the readiness probe.
func Ping(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("database: not connected")
	}
	return client.Ping(ctx, nil)
}

// Close disconnects the client. Safe to call when Connect never succeeded.
func Close(ctx context.Context) error {
	if client == nil {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return client.Disconnect(cctx)
}
