package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smartbuspass/backend/config"
	"github.com/smartbuspass/backend/data/repository"
	"github.com/smartbuspass/backend/dates"
	"github.com/smartbuspass/backend/logging/logger"
	"github.com/smartbuspass/backend/structs"
)

// Outcome messages. Expiry/status problems and route mismatches are
// reported separately so the conductor can tell a dead pass from a
// rider on the wrong bus.
const (
	msgRiderNotFound = "User not found"
	msgPassInvalid   = "Pass is invalid or expired"
	msgPassValid     = "Pass is valid"
	msgWrongRoute    = "Pass is valid but route doesn't match bus route"
)

// VerifyService decides whether a rider's pass is usable for a route
// at the moment a conductor scans it. It reads principals and buses
// and writes only verification records.
type VerifyService struct {
	principals    repository.PrincipalRepository
	buses         repository.BusRepository
	verifications repository.VerificationRepository
	conf          *config.Verify
	logger        *logger.Logger
}

// NewVerifyService creates the pass validity engine.
func NewVerifyService(principals repository.PrincipalRepository, buses repository.BusRepository, verifications repository.VerificationRepository, conf *config.Verify, log *logger.Logger) *VerifyService {
	return &VerifyService{
		principals:    principals,
		buses:         buses,
		verifications: verifications,
		conf:          conf,
		logger:        log,
	}
}

// Verify evaluates a rider's pass against a bus route. Invalid passes
// and unknown riders are normal outcomes carried in the returned
// structure; an error is returned only when the store itself fails.
func (s *VerifyService) Verify(ctx context.Context, riderID, busRef string, now time.Time) (*structs.VerificationOutcome, error) {
	rider, err := s.principals.FindRiderByID(ctx, riderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &structs.VerificationOutcome{Valid: false, Message: msgRiderNotFound}, nil
		}
		return nil, err
	}

	// Expiry and status are evaluated independently of the route. A
	// nil parse means the expiry is unknown, which never validates.
	expiry := dates.Parse(rider.PassExpiry)
	valid := rider.PassStatus && expiry != nil && expiry.After(now)
	if !valid {
		return &structs.VerificationOutcome{Valid: false, Message: msgPassInvalid}, nil
	}

	routeFrom, routeTo := s.resolveRoute(ctx, busRef)
	routeValid := strings.EqualFold(rider.From, routeFrom) && strings.EqualFold(rider.To, routeTo)

	message := msgPassValid
	if !routeValid {
		message = msgWrongRoute
	}

	return &structs.VerificationOutcome{
		Valid:      true,
		RouteValid: routeValid,
		Message:    message,
		Rider: &structs.RiderSnapshot{
			ID:       rider.ID.Hex(),
			Name:     rider.Name,
			Photo:    rider.Photo,
			PassCode: rider.PassCode,
			PassType: rider.PassType,
			From:     rider.From,
			To:       rider.To,
			Validity: dates.Format(expiry),
		},
	}, nil
}

// resolveRoute resolves the bus reference to its route endpoints. When
// the reference does not resolve, the configured default route is used
// so the route check always runs.
func (s *VerifyService) resolveRoute(ctx context.Context, busRef string) (string, string) {
	bus, err := s.buses.Resolve(ctx, busRef)
	if err == nil {
		return bus.From, bus.To
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn(ctx, "bus lookup failed, using default route", "bus", busRef, "error", err)
	}
	return s.conf.DefaultRouteFrom, s.conf.DefaultRouteTo
}

// RecordAttempt appends the outcome to the verification ledger. The
// ledger is best-effort: a failed write is logged and swallowed so it
// can never fail the scan that produced it.
func (s *VerifyService) RecordAttempt(ctx context.Context, outcome *structs.VerificationOutcome, conductor *structs.Conductor, busRef string, now time.Time) {
	record := &structs.VerificationRecord{
		ConductorID: conductor.ID,
		BusRef:      busRef,
		Status:      structs.VerificationFailed,
		RouteValid:  outcome.RouteValid,
		Message:     outcome.Message,
		Date:        now.Format(dates.DisplayLayout),
		Timestamp:   now,
	}
	if outcome.Valid {
		record.Status = structs.VerificationSuccess
	}
	if outcome.Rider != nil {
		if id, err := riderObjectID(outcome.Rider.ID); err == nil {
			record.RiderID = &id
		}
		record.RiderName = outcome.Rider.Name
		record.PassCode = outcome.Rider.PassCode
		record.PassType = outcome.Rider.PassType
	}
	if bus, err := s.buses.Resolve(ctx, busRef); err == nil {
		record.BusNumber = bus.BusNumber
	}

	if err := s.verifications.Append(ctx, record); err != nil {
		s.logger.Error(ctx, "failed to record verification attempt", "conductor", conductor.ID.Hex(), "bus", busRef, "error", err)
	}
}

// History returns a conductor's recent verification attempts.
func (s *VerifyService) History(ctx context.Context, conductor *structs.Conductor, limit int64) ([]*structs.VerificationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.verifications.ListByConductor(ctx, conductor.ID, limit)
}

// BusHistory returns all verification attempts for a bus on a date.
func (s *VerifyService) BusHistory(ctx context.Context, busRef, date string) ([]*structs.VerificationRecord, error) {
	return s.verifications.ListByBusAndDate(ctx, busRef, date)
}

// ExpirePasses flips the status flag on riders whose pass expiry has
// passed. Runs daily from the jobs runner.
func (s *VerifyService) ExpirePasses(ctx context.Context, now time.Time) (int64, error) {
	flipped, err := s.principals.ExpireActivePasses(ctx, now)
	if err != nil {
		return 0, err
	}
	if flipped > 0 {
		s.logger.Info(ctx, "expired passes deactivated", "count", flipped)
	}
	return flipped, nil
}
