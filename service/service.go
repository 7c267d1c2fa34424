package service

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/smartbuspass/backend/structs"
)

func principalObjectID(p *structs.Principal) primitive.ObjectID {
	switch p.Type {
	case structs.PrincipalRider:
		return p.Rider.ID
	case structs.PrincipalConductor:
		return p.Conductor.ID
	}
	return primitive.NilObjectID
}

func riderObjectID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}
