package service

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/smartbuspass/backend/data/repository"
	"github.com/smartbuspass/backend/structs"
)

// fakePrincipalRepo is an in-memory PrincipalRepository. It mirrors the
// real repository's update semantics closely enough to exercise the
// session and verification flows.
type fakePrincipalRepo struct {
	mu         sync.Mutex
	riders     map[primitive.ObjectID]*structs.Rider
	conductors map[primitive.ObjectID]*structs.Conductor
}

func newFakePrincipalRepo() *fakePrincipalRepo {
	return &fakePrincipalRepo{
		riders:     make(map[primitive.ObjectID]*structs.Rider),
		conductors: make(map[primitive.ObjectID]*structs.Conductor),
	}
}

func (f *fakePrincipalRepo) addRider(r *structs.Rider) *structs.Rider {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	f.riders[r.ID] = r
	return r
}

func (f *fakePrincipalRepo) addConductor(c *structs.Conductor) *structs.Conductor {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	f.conductors[c.ID] = c
	return c
}

func (f *fakePrincipalRepo) FindByToken(_ context.Context, token string) (*structs.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.riders {
		if r.Token != "" && r.Token == token {
			clone := *r
			return &structs.Principal{Type: structs.PrincipalRider, Rider: &clone}, nil
		}
	}
	for _, c := range f.conductors {
		if c.Token != "" && c.Token == token {
			clone := *c
			return &structs.Principal{Type: structs.PrincipalConductor, Conductor: &clone}, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePrincipalRepo) FindRiderByEmail(_ context.Context, email string) (*structs.Rider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.riders {
		if r.Email == email {
			clone := *r
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePrincipalRepo) FindRiderByID(_ context.Context, id string) (*structs.Rider, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.riders[objectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (f *fakePrincipalRepo) FindConductorByCode(_ context.Context, code string) (*structs.Conductor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conductors {
		if c.ConductorID == code {
			clone := *c
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePrincipalRepo) SetSession(_ context.Context, id primitive.ObjectID, variant structs.PrincipalType, token string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if variant == structs.PrincipalConductor {
		c, ok := f.conductors[id]
		if !ok {
			return repository.ErrNotFound
		}
		c.Token = token
		c.TokenExpiry = &expiry
		return nil
	}
	r, ok := f.riders[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Token = token
	r.TokenExpiry = &expiry
	return nil
}

func (f *fakePrincipalRepo) ClearSession(_ context.Context, id primitive.ObjectID, variant structs.PrincipalType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if variant == structs.PrincipalConductor {
		if c, ok := f.conductors[id]; ok {
			c.Token = ""
			c.TokenExpiry = nil
		}
		return nil
	}
	if r, ok := f.riders[id]; ok {
		r.Token = ""
		r.TokenExpiry = nil
	}
	return nil
}

func (f *fakePrincipalRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, variant structs.PrincipalType, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if variant == structs.PrincipalConductor {
		if c, ok := f.conductors[id]; ok {
			c.Password = hash
		}
		return nil
	}
	if r, ok := f.riders[id]; ok {
		r.Password = hash
	}
	return nil
}

func (f *fakePrincipalRepo) TouchLastLogin(_ context.Context, id primitive.ObjectID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.conductors[id]; ok {
		c.LastLogin = &now
	}
	return nil
}

func (f *fakePrincipalRepo) ClearExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var cleared int64
	for _, r := range f.riders {
		if r.TokenExpiry != nil && r.TokenExpiry.Before(now) {
			r.Token = ""
			r.TokenExpiry = nil
			cleared++
		}
	}
	for _, c := range f.conductors {
		if c.TokenExpiry != nil && c.TokenExpiry.Before(now) {
			c.Token = ""
			c.TokenExpiry = nil
			cleared++
		}
	}
	return cleared, nil
}

func (f *fakePrincipalRepo) ExpireActivePasses(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var flipped int64
	for _, r := range f.riders {
		expiry, ok := r.PassExpiry.(time.Time)
		if r.PassStatus && ok && expiry.Before(now) {
			r.PassStatus = false
			flipped++
		}
	}
	return flipped, nil
}

func (f *fakePrincipalRepo) ApprovePass(_ context.Context, id primitive.ObjectID, passCode string, expiry time.Time, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.riders[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.PassStatus = true
	r.PassCode = passCode
	r.PassExpiry = expiry
	r.Declined = false
	r.Reason = ""
	if passwordHash != "" {
		r.Password = passwordHash
	}
	return nil
}

func (f *fakePrincipalRepo) DeclinePass(_ context.Context, id primitive.ObjectID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.riders[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.PassStatus = false
	r.Declined = true
	r.Reason = reason
	return nil
}

// fakeBusRepo resolves buses from a static map keyed by id hex and bus
// number.
type fakeBusRepo struct {
	buses map[string]*structs.Bus
}

func newFakeBusRepo(buses ...*structs.Bus) *fakeBusRepo {
	f := &fakeBusRepo{buses: make(map[string]*structs.Bus)}
	for _, b := range buses {
		if b.ID.IsZero() {
			b.ID = primitive.NewObjectID()
		}
		f.buses[b.ID.Hex()] = b
		f.buses[b.BusNumber] = b
	}
	return f
}

func (f *fakeBusRepo) Resolve(_ context.Context, ref string) (*structs.Bus, error) {
	if b, ok := f.buses[ref]; ok {
		clone := *b
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

// fakeVerificationRepo appends records to a slice, newest last.
type fakeVerificationRepo struct {
	mu      sync.Mutex
	records []*structs.VerificationRecord
	err     error
}

func (f *fakeVerificationRepo) Append(_ context.Context, record *structs.VerificationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	record.ID = primitive.NewObjectID()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeVerificationRepo) ListByConductor(_ context.Context, conductorID primitive.ObjectID, limit int64) ([]*structs.VerificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*structs.VerificationRecord
	for i := len(f.records) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if f.records[i].ConductorID == conductorID {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}

func (f *fakeVerificationRepo) ListByBusAndDate(_ context.Context, busRef, date string) ([]*structs.VerificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*structs.VerificationRecord
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].BusRef == busRef && f.records[i].Date == date {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}
