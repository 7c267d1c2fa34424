// Package repository provides MongoDB-backed persistence for
// principals, buses, and the verification ledger.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smartbuspass/backend/logging/logger"
	"github.com/smartbuspass/backend/structs"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("not found")

// PrincipalRepository is the store adapter over the two principal
// collections. Every mutation is a single atomic per-document update;
// no operation spans more than one record.
type PrincipalRepository interface {
	FindByToken(ctx context.Context, token string) (*structs.Principal, error)
	FindRiderByEmail(ctx context.Context, email string) (*structs.Rider, error)
	FindRiderByID(ctx context.Context, id string) (*structs.Rider, error)
	FindConductorByCode(ctx context.Context, code string) (*structs.Conductor, error)
	SetSession(ctx context.Context, id primitive.ObjectID, variant structs.PrincipalType, token string, expiry time.Time) error
	ClearSession(ctx context.Context, id primitive.ObjectID, variant structs.PrincipalType) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, variant structs.PrincipalType, hash string) error
	TouchLastLogin(ctx context.Context, id primitive.ObjectID, now time.Time) error
	ClearExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	ExpireActivePasses(ctx context.Context, now time.Time) (int64, error)
	ApprovePass(ctx context.Context, id primitive.ObjectID, passCode string, expiry time.Time, passwordHash string) error
	DeclinePass(ctx context.Context, id primitive.ObjectID, reason string) error
}

type principalRepository struct {
	riders     *mongo.Collection
	conductors *mongo.Collection
	logger     *logger.Logger
}

// NewPrincipalRepository creates the principal repository and ensures
// the session and expiry indexes both collections rely on.
func NewPrincipalRepository(db *mongo.Database, log *logger.Logger) PrincipalRepository {
	r := &principalRepository{
		riders:     db.Collection("riders"),
		conductors: db.Collection("conductors"),
		logger:     log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "token_expiry", Value: 1}},
		},
	}
	for _, coll := range []*mongo.Collection{r.riders, r.conductors} {
		if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
			log.Warn(ctx, "failed to create session indexes", "collection", coll.Name(), "error", err)
		}
	}

	return r
}

// FindByToken resolves a bearer token to a principal. Tokens are
// unique across both collections, so the first match is authoritative.
func (r *principalRepository) FindByToken(ctx context.Context, token string) (*structs.Principal, error) {
	var rider structs.Rider
	err := r.riders.FindOne(ctx, bson.M{"token": token}).Decode(&rider)
	if err == nil {
		return &structs.Principal{Type: structs.PrincipalRider, Rider: &rider}, nil
	}
	if err != mongo.ErrNoDocuments {
		r.logger.Error(ctx, "failed to look up token in riders", "error", err)
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	var conductor structs.Conductor
	err = r.conductors.FindOne(ctx, bson.M{"token": token}).Decode(&conductor)
	if err == nil {
		return &structs.Principal{Type: structs.PrincipalConductor, Conductor: &conductor}, nil
	}
	if err != mongo.ErrNoDocuments {
		r.logger.Error(ctx, "failed to look up token in conductors", "error", err)
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	return nil, ErrNotFound
}

// FindRiderByEmail retrieves a rider by its natural key.
func (r *principalRepository) FindRiderByEmail(ctx context.Context, email string) (*structs.Rider, error) {
	var rider structs.Rider
	err := r.riders.FindOne(ctx, bson.M{"email": email}).Decode(&rider)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		r.logger.Error(ctx, "failed to find rider by email", "error", err)
		return nil, fmt.Errorf("failed to find rider: %w", err)
	}
	return &rider, nil
}

// FindRiderByID retrieves a rider by document id.
func (r *principalRepository) FindRiderByID(ctx context.Context, id string) (*structs.Rider, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var rider structs.Rider
	err = r.riders.FindOne(ctx, bson.M{"_id": objectID}).Decode(&rider)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		r.logger.Error(ctx, "failed to find rider", "id", id, "error", err)
		return nil, fmt.Errorf("failed to find rider: %w", err)
	}
	return &rider, nil
}

// FindConductorByCode retrieves a conductor by its natural key.
func (r *principalRepository) FindConductorByCode(ctx context.Context, code string) (*structs.Conductor, error) {
	var conductor structs.Conductor
	err := r.conductors.FindOne(ctx, bson.M{"conductor_id": code}).Decode(&conductor)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		r.logger.Error(ctx, "failed to find conductor", "error", err)
		return nil, fmt.Errorf("failed to find conductor: %w", err)
	}
	return &conductor, nil
}

func (r *principalRepository) collection(variant structs.PrincipalType) *mongo.Collection {
	if variant == structs.PrincipalConductor {
		return r.conductors
	}
	return r.riders
}

// SetSession overwrites the session fields in one atomic update. Any
// previously issued token for the principal dies with this write.
func (r *principalRepository) SetSession(ctx context.Context, id primitive.ObjectID, variant structs.PrincipalType, token string, expiry time.Time) error {
	update := bson.M{"$set": bson.M{
		"token":        token,
		"token_expiry": expiry,
	}}
	result, err := r.collection(variant).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error(ctx, "failed to set session", "principal", id.Hex(), "variant", variant, "error", err)
		return fmt.Errorf("failed to set session: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearSession removes the session fields in one atomic update.
func (r *principalRepository) ClearSession(ctx context.Context, id primitive.ObjectID, variant structs.PrincipalType) error {
	update := bson.M{"$unset": bson.M{
		"token":        "",
		"token_expiry": "",
	}}
	if _, err := r.collection(variant).UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		r.logger.Error(ctx, "failed to clear session", "principal", id.Hex(), "variant", variant, "error", err)
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored credential hash.
func (r *principalRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, variant structs.PrincipalType, hash string) error {
	update := bson.M{"$set": bson.M{"password": hash}}
	if _, err := r.collection(variant).UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		r.logger.Error(ctx, "failed to update password", "principal", id.Hex(), "variant", variant, "error", err)
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// TouchLastLogin records a conductor login time.
func (r *principalRepository) TouchLastLogin(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	update := bson.M{"$set": bson.M{"last_login": now}}
	if _, err := r.conductors.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("failed to record login time: %w", err)
	}
	return nil
}

// ClearExpiredSessions unsets session fields on every record whose
// expiry has passed, in both collections. The filter and unset run as
// one server-side operation per collection, so it is safe alongside
// concurrent authentication and safe to run repeatedly.
func (r *principalRepository) ClearExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{"token_expiry": bson.M{"$lt": now}}
	update := bson.M{"$unset": bson.M{
		"token":        "",
		"token_expiry": "",
	}}

	var total int64
	for _, coll := range []*mongo.Collection{r.riders, r.conductors} {
		result, err := coll.UpdateMany(ctx, filter, update)
		if err != nil {
			r.logger.Error(ctx, "failed to clear expired sessions", "collection", coll.Name(), "error", err)
			return total, fmt.Errorf("failed to clear expired sessions: %w", err)
		}
		total += result.ModifiedCount
	}
	return total, nil
}

// ExpireActivePasses flips the pass status flag on riders whose pass
// expiry instant has passed. Only native datetime expiries can be
// compared server-side; string-dated legacy records are left for the
// verification path, which re-parses the expiry on every check anyway.
func (r *principalRepository) ExpireActivePasses(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"pass_status": true,
		"pass_expiry": bson.M{"$lt": now},
	}
	update := bson.M{"$set": bson.M{"pass_status": false}}

	result, err := r.riders.UpdateMany(ctx, filter, update)
	if err != nil {
		r.logger.Error(ctx, "failed to expire passes", "error", err)
		return 0, fmt.Errorf("failed to expire passes: %w", err)
	}
	return result.ModifiedCount, nil
}

// ApprovePass activates a rider's pass in one atomic update. A non-empty
// passwordHash also provisions the login credential, which covers riders
// approved before they ever signed in.
func (r *principalRepository) ApprovePass(ctx context.Context, id primitive.ObjectID, passCode string, expiry time.Time, passwordHash string) error {
	set := bson.M{
		"pass_status": true,
		"pass_code":   passCode,
		"pass_expiry": expiry,
		"declined":    false,
	}
	if passwordHash != "" {
		set["password"] = passwordHash
	}
	update := bson.M{
		"$set":   set,
		"$unset": bson.M{"rejection_reason": ""},
	}

	result, err := r.riders.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error(ctx, "failed to approve pass", "rider", id.Hex(), "error", err)
		return fmt.Errorf("failed to approve pass: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeclinePass marks an application as rejected with a reason.
func (r *principalRepository) DeclinePass(ctx context.Context, id primitive.ObjectID, reason string) error {
	update := bson.M{"$set": bson.M{
		"pass_status":      false,
		"declined":         true,
		"rejection_reason": reason,
	}}

	result, err := r.riders.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error(ctx, "failed to decline pass", "rider", id.Hex(), "error", err)
		return fmt.Errorf("failed to decline pass: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
