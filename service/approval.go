package service

import (
	"context"
	"fmt"
	"time"

	"github.com/smartbuspass/backend/config"
	"github.com/smartbuspass/backend/data/repository"
	"github.com/smartbuspass/backend/dates"
	"github.com/smartbuspass/backend/logging/logger"
	"github.com/smartbuspass/backend/structs"
	"github.com/smartbuspass/backend/util"
)

// ApprovalService decides pass applications. Approval activates the
// pass and assigns the pass code; decline records the reason. Both
// notify the rider by mail after the write commits.
type ApprovalService struct {
	principals repository.PrincipalRepository
	notifier   *Notifier
	conf       *config.Verify
	logger     *logger.Logger
	now        func() time.Time
}

func NewApprovalService(principals repository.PrincipalRepository, notifier *Notifier, conf *config.Verify, log *logger.Logger) *ApprovalService {
	return &ApprovalService{
		principals: principals,
		notifier:   notifier,
		conf:       conf,
		logger:     log,
		now:        time.Now,
	}
}

// Approve activates the rider's pass. The pass code is freshly
// generated, the expiry is the configured validity period from now,
// and riders without a credential get a generated password so they can
// sign in to see their pass.
func (s *ApprovalService) Approve(ctx context.Context, riderID string) (*structs.Rider, error) {
	rider, err := s.principals.FindRiderByID(ctx, riderID)
	if err != nil {
		return nil, err
	}

	passCode := util.GeneratePassCode()
	expiry := s.now().AddDate(0, 0, s.conf.PassValidityDays)

	var plainPassword, passwordHash string
	if rider.Password == "" {
		plainPassword = util.GeneratePassword(10)
		passwordHash, err = util.EncryptPassword(plainPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to provision password: %w", err)
		}
	}

	if err := s.principals.ApprovePass(ctx, rider.ID, passCode, expiry, passwordHash); err != nil {
		return nil, err
	}

	rider.PassStatus = true
	rider.PassCode = passCode
	rider.PassExpiry = expiry
	rider.Declined = false
	rider.Reason = ""

	s.logger.Info(ctx, "pass approved", "rider", rider.ID.Hex(), "pass_code", passCode)
	if s.notifier != nil {
		s.notifier.NotifyApproval(ctx, rider, passCode, dates.Format(expiry), plainPassword)
	}
	return rider, nil
}

// Decline rejects the rider's application with a reason.
func (s *ApprovalService) Decline(ctx context.Context, riderID, reason string) (*structs.Rider, error) {
	rider, err := s.principals.FindRiderByID(ctx, riderID)
	if err != nil {
		return nil, err
	}

	if err := s.principals.DeclinePass(ctx, rider.ID, reason); err != nil {
		return nil, err
	}

	rider.PassStatus = false
	rider.Declined = true
	rider.Reason = reason

	s.logger.Info(ctx, "pass declined", "rider", rider.ID.Hex())
	if s.notifier != nil {
		s.notifier.NotifyDecline(ctx, rider, reason)
	}
	return rider, nil
}
