package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/smartbuspass/backend/logging/logger"
	"github.com/smartbuspass/backend/structs"
)

// BusRepository resolves bus references to route records.
type BusRepository interface {
	Resolve(ctx context.Context, ref string) (*structs.Bus, error)
}

type busRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewBusRepository creates a new bus repository instance.
func NewBusRepository(db *mongo.Database, log *logger.Logger) BusRepository {
	return &busRepository{
		collection: db.Collection("buses"),
		logger:     log,
	}
}

// Resolve looks a bus up by document id first, then by bus number.
// Scanners send whichever they have.
func (r *busRepository) Resolve(ctx context.Context, ref string) (*structs.Bus, error) {
	if ref == "" {
		return nil, ErrNotFound
	}

	var filter bson.M
	if objectID, err := primitive.ObjectIDFromHex(ref); err == nil {
		filter = bson.M{"_id": objectID}
	} else {
		filter = bson.M{"bus_number": ref}
	}

	var bus structs.Bus
	err := r.collection.FindOne(ctx, filter).Decode(&bus)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		r.logger.Error(ctx, "failed to resolve bus", "ref", ref, "error", err)
		return nil, fmt.Errorf("failed to resolve bus: %w", err)
	}
	return &bus, nil
}
