package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smartbuspass/backend/logging/logger"
	"github.com/smartbuspass/backend/structs"
)

// VerificationRepository is the append-only ledger of pass-check
// attempts. There are no update or delete operations here on purpose.
type VerificationRepository interface {
	Append(ctx context.Context, record *structs.VerificationRecord) error
	ListByConductor(ctx context.Context, conductorID primitive.ObjectID, limit int64) ([]*structs.VerificationRecord, error)
	ListByBusAndDate(ctx context.Context, busRef, date string) ([]*structs.VerificationRecord, error)
}

type verificationRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewVerificationRepository creates the ledger repository and ensures
// the query indexes.
func NewVerificationRepository(db *mongo.Database, log *logger.Logger) VerificationRepository {
	collection := db.Collection("verifications")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "conductor_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "bus_ref", Value: 1}, {Key: "date", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn(ctx, "failed to create verification indexes", "error", err)
	}

	return &verificationRepository{
		collection: collection,
		logger:     log,
	}
}

// Append writes one immutable record.
func (r *verificationRepository) Append(ctx context.Context, record *structs.VerificationRecord) error {
	record.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		r.logger.Error(ctx, "failed to append verification record", "conductor", record.ConductorID.Hex(), "error", err)
		return fmt.Errorf("failed to append verification record: %w", err)
	}
	return nil
}

// ListByConductor returns a conductor's recent attempts, newest first.
func (r *verificationRepository) ListByConductor(ctx context.Context, conductorID primitive.ObjectID, limit int64) ([]*structs.VerificationRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"conductor_id": conductorID}, opts)
	if err != nil {
		r.logger.Error(ctx, "failed to list verifications", "conductor", conductorID.Hex(), "error", err)
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*structs.VerificationRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode verifications: %w", err)
	}
	return records, nil
}

// ListByBusAndDate returns all attempts for a bus on a calendar date,
// newest first.
func (r *verificationRepository) ListByBusAndDate(ctx context.Context, busRef, date string) ([]*structs.VerificationRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"bus_ref": busRef, "date": date}, opts)
	if err != nil {
		r.logger.Error(ctx, "failed to list verification history", "bus", busRef, "error", err)
		return nil, fmt.Errorf("failed to list verification history: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*structs.VerificationRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode verification history: %w", err)
	}
	return records, nil
}
