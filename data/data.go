// Package data manages the MongoDB connection and owns the
// repositories built on top of it.
package data

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smartbuspass/backend/config"
	"github.com/smartbuspass/backend/data/repository"
	"github.com/smartbuspass/backend/logging/logger"
)

// Data encapsulates all data layer dependencies.
type Data struct {
	client *mongo.Client
	db     *mongo.Database

	PrincipalRepo    repository.PrincipalRepository
	BusRepo          repository.BusRepository
	VerificationRepo repository.VerificationRepository
}

// New connects to MongoDB and initializes the repositories.
func New(conf *config.MongoDB, log *logger.Logger) (*Data, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info(ctx, "Connected to MongoDB", "database", conf.Database)

	db := client.Database(conf.Database)

	return &Data{
		client:           client,
		db:               db,
		PrincipalRepo:    repository.NewPrincipalRepository(db, log),
		BusRepo:          repository.NewBusRepository(db, log),
		VerificationRepo: repository.NewVerificationRepository(db, log),
	}, nil
}

// Close closes the MongoDB connection.
func (d *Data) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}

// DB returns the MongoDB database instance.
func (d *Data) DB() *mongo.Database {
	return d.db
}
