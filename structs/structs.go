// Package structs defines the domain models shared by the repositories,
// services, and handlers.
package structs

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrincipalType tags which collection a principal was resolved from.
type PrincipalType string

const (
	PrincipalRider     PrincipalType = "rider"
	PrincipalConductor PrincipalType = "conductor"
)

// Rider is a pass-holding passenger. The pass is embedded on the rider
// document. PassExpiry is deliberately untyped: legacy documents hold a
// mix of native datetimes and strings in several layouts, and only the
// dates package may interpret it.
type Rider struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password" json:"-"`
	UserType    string             `bson:"user_type,omitempty" json:"user_type,omitempty"`
	PassStatus  bool               `bson:"pass_status" json:"pass_status"`
	PassExpiry  any                `bson:"pass_expiry,omitempty" json:"-"`
	PassCode    string             `bson:"pass_code,omitempty" json:"pass_code,omitempty"`
	PassType    string             `bson:"pass_type,omitempty" json:"pass_type,omitempty"`
	From        string             `bson:"from,omitempty" json:"from,omitempty"`
	To          string             `bson:"to,omitempty" json:"to,omitempty"`
	Photo       string             `bson:"applicant_photo,omitempty" json:"photo,omitempty"`
	Declined    bool               `bson:"declined,omitempty" json:"declined,omitempty"`
	Reason      string             `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	Token       string             `bson:"token,omitempty" json:"-"`
	TokenExpiry *time.Time         `bson:"token_expiry,omitempty" json:"-"`
	CreatedAt   time.Time          `bson:"created_at,omitempty" json:"created_at"`
}

// Conductor checks passes on a bus.
type Conductor struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	ConductorID string              `bson:"conductor_id" json:"conductor_id"`
	Password    string              `bson:"password" json:"-"`
	Depot       *primitive.ObjectID `bson:"depot,omitempty" json:"depot,omitempty"`
	Contact     string              `bson:"contact,omitempty" json:"contact,omitempty"`
	Address     string              `bson:"address,omitempty" json:"address,omitempty"`
	Token       string              `bson:"token,omitempty" json:"-"`
	TokenExpiry *time.Time          `bson:"token_expiry,omitempty" json:"-"`
	LastLogin   *time.Time          `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt   time.Time           `bson:"created_at,omitempty" json:"created_at"`
}

// Principal is the tagged union returned by token resolution. Exactly
// one of Rider or Conductor is set, according to Type.
type Principal struct {
	Type      PrincipalType
	Rider     *Rider
	Conductor *Conductor
}

// ID returns the hex document id of whichever variant is set.
func (p *Principal) ID() string {
	switch p.Type {
	case PrincipalRider:
		return p.Rider.ID.Hex()
	case PrincipalConductor:
		return p.Conductor.ID.Hex()
	}
	return ""
}

// TokenExpiry returns the session expiry of whichever variant is set.
func (p *Principal) TokenExpiry() *time.Time {
	switch p.Type {
	case PrincipalRider:
		return p.Rider.TokenExpiry
	case PrincipalConductor:
		return p.Conductor.TokenExpiry
	}
	return nil
}

// Bus is a scheduled vehicle with a fixed route.
type Bus struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	BusNumber string              `bson:"bus_number" json:"bus_number"`
	From      string              `bson:"from" json:"from"`
	To        string              `bson:"to" json:"to"`
	Route     string              `bson:"route,omitempty" json:"route,omitempty"`
	Depot     *primitive.ObjectID `bson:"depot,omitempty" json:"depot,omitempty"`
	Conductor *primitive.ObjectID `bson:"conductor,omitempty" json:"conductor,omitempty"`
	CreatedAt time.Time           `bson:"created_at,omitempty" json:"created_at"`
}

// Verification statuses recorded in the ledger.
const (
	VerificationSuccess = "success"
	VerificationFailed  = "failed"
)

// VerificationRecord is one immutable ledger entry per pass-check
// attempt. Records are appended once and never updated or deleted.
type VerificationRecord struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ConductorID primitive.ObjectID  `bson:"conductor_id" json:"conductor_id"`
	BusRef      string              `bson:"bus_ref" json:"bus_ref"`
	BusNumber   string              `bson:"bus_number,omitempty" json:"bus_number,omitempty"`
	RiderID     *primitive.ObjectID `bson:"rider_id,omitempty" json:"rider_id,omitempty"`
	RiderName   string              `bson:"rider_name,omitempty" json:"rider_name,omitempty"`
	PassCode    string              `bson:"pass_code,omitempty" json:"pass_code,omitempty"`
	PassType    string              `bson:"pass_type,omitempty" json:"pass_type,omitempty"`
	Status      string              `bson:"status" json:"status"`
	RouteValid  bool                `bson:"route_valid" json:"route_valid"`
	Message     string              `bson:"message" json:"message"`
	Metadata    string              `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Date        string              `bson:"date" json:"date"`
	Timestamp   time.Time           `bson:"timestamp" json:"timestamp"`
}

// VerificationOutcome is what the validity engine hands back to the
// caller. Invalid passes and unknown riders are normal outcomes here,
// not errors.
type VerificationOutcome struct {
	Valid      bool           `json:"valid"`
	RouteValid bool           `json:"route_valid"`
	Message    string         `json:"message"`
	Rider      *RiderSnapshot `json:"user,omitempty"`
}

// RiderSnapshot is the read-only view of a rider returned with a
// successful verification.
type RiderSnapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Photo    string `json:"photo,omitempty"`
	PassCode string `json:"pass_code,omitempty"`
	PassType string `json:"pass_type,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Validity string `json:"validity,omitempty"`
}
