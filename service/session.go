// Package service implements the session lifecycle, the pass validity
// engine, and the approval flow that feeds it.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smartbuspass/backend/data/repository"
	"github.com/smartbuspass/backend/logging/logger"
	"github.com/smartbuspass/backend/structs"
	"github.com/smartbuspass/backend/util"
)

// Authentication failures are expected outcomes, surfaced as typed
// errors so the transport layer can map them without string matching.
var (
	ErrTokenMissing       = errors.New("token is missing")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token has expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// SessionService issues, validates, refreshes, and sweeps opaque
// session tokens for both principal types. It is the only writer of
// the token fields on principal records.
type SessionService struct {
	principals repository.PrincipalRepository
	ttl        time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

// NewSessionService creates a session service with the given token
// lifetime.
func NewSessionService(principals repository.PrincipalRepository, ttl time.Duration, log *logger.Logger) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{
		principals: principals,
		ttl:        ttl,
		logger:     log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Issue generates a fresh opaque token for the principal and persists
// token and expiry in one atomic overwrite. Whatever token the
// principal held before is dead the moment this write lands, so there
// is at most one live session per principal.
func (s *SessionService) Issue(ctx context.Context, p *structs.Principal) (string, time.Time, error) {
	token := uuid.NewString()
	expiry := s.now().Add(s.ttl)

	id := principalObjectID(p)
	if err := s.principals.SetSession(ctx, id, p.Type, token, expiry); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to issue session: %w", err)
	}

	s.logger.Info(ctx, "session issued", "principal", p.ID(), "variant", p.Type, "expiry", expiry)
	return token, expiry, nil
}

// Authenticate resolves a bearer token to its principal. It returns
// ErrTokenMissing for an empty token, ErrTokenInvalid when no record
// holds the token, and ErrTokenExpired when the session has lapsed but
// the sweep has not cleared it yet.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*structs.Principal, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}

	p, err := s.principals.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	expiry := p.TokenExpiry()
	if expiry == nil || !expiry.After(s.now()) {
		return nil, ErrTokenExpired
	}

	return p, nil
}

// Refresh exchanges a live token for a new one under the same expiry
// policy. The old token is invalidated by the same atomic update that
// persists the new one.
func (s *SessionService) Refresh(ctx context.Context, token string) (string, time.Time, error) {
	p, err := s.Authenticate(ctx, token)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.Issue(ctx, p)
}

// Logout clears the session fields for whoever holds the token.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrTokenMissing
	}

	p, err := s.principals.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("failed to log out: %w", err)
	}

	if err := s.principals.ClearSession(ctx, principalObjectID(p), p.Type); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}

	s.logger.Info(ctx, "session cleared", "principal", p.ID(), "variant", p.Type)
	return nil
}

// Sweep clears session fields on every expired record in both
// collections. Idempotent: a second run right after the first clears
// nothing.
func (s *SessionService) Sweep(ctx context.Context, now time.Time) (int64, error) {
	cleared, err := s.principals.ClearExpiredSessions(ctx, now)
	if err != nil {
		return cleared, err
	}
	if cleared > 0 {
		s.logger.Info(ctx, "expired sessions cleared", "count", cleared)
	}
	return cleared, nil
}

// LoginRider verifies rider credentials and opens a session.
func (s *SessionService) LoginRider(ctx context.Context, email, password string) (*structs.Rider, string, time.Time, error) {
	rider, err := s.principals.FindRiderByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, fmt.Errorf("failed to log in: %w", err)
	}

	p := &structs.Principal{Type: structs.PrincipalRider, Rider: rider}
	if !s.verifyPassword(ctx, p, rider.Password, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiry, err := s.Issue(ctx, p)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return rider, token, expiry, nil
}

// LoginConductor verifies conductor credentials and opens a session.
func (s *SessionService) LoginConductor(ctx context.Context, code, password string) (*structs.Conductor, string, time.Time, error) {
	conductor, err := s.principals.FindConductorByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, fmt.Errorf("failed to log in: %w", err)
	}

	p := &structs.Principal{Type: structs.PrincipalConductor, Conductor: conductor}
	if !s.verifyPassword(ctx, p, conductor.Password, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiry, err := s.Issue(ctx, p)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	if err := s.principals.TouchLastLogin(ctx, conductor.ID, s.now()); err != nil {
		s.logger.Warn(ctx, "failed to record login time", "conductor", conductor.ID.Hex(), "error", err)
	}

	return conductor, token, expiry, nil
}

// verifyPassword compares the supplied password against the stored
// credential. Legacy records may still hold plaintext; a successful
// plaintext match is immediately re-hashed so the plaintext form never
// survives a login.
func (s *SessionService) verifyPassword(ctx context.Context, p *structs.Principal, stored, supplied string) bool {
	if stored == "" {
		return false
	}

	if util.IsHashedPassword(stored) {
		return util.ComparePassword(stored, supplied)
	}

	if stored != supplied {
		return false
	}

	hash, err := util.EncryptPassword(supplied)
	if err != nil {
		s.logger.Warn(ctx, "failed to hash legacy password", "principal", p.ID(), "error", err)
		return true
	}
	if err := s.principals.UpdatePassword(ctx, principalObjectID(p), p.Type, hash); err != nil {
		s.logger.Warn(ctx, "failed to migrate legacy password", "principal", p.ID(), "error", err)
	} else {
		s.logger.Info(ctx, "legacy plaintext password migrated", "principal", p.ID(), "variant", p.Type)
	}
	return true
}
