package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/smartbuspass/backend/config"
	"github.com/smartbuspass/backend/data/repository"
	"github.com/smartbuspass/backend/logging/logger"
	"github.com/smartbuspass/backend/service"
	"github.com/smartbuspass/backend/structs"
	"github.com/smartbuspass/backend/util"
)

// fakeStore backs the full HTTP stack in tests. Only the methods the
// routes under test reach are implemented; the embedded interfaces
// panic on anything else.
type fakeStore struct {
	repository.PrincipalRepository
	riders     map[primitive.ObjectID]*structs.Rider
	conductors map[primitive.ObjectID]*structs.Conductor
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		riders:     make(map[primitive.ObjectID]*structs.Rider),
		conductors: make(map[primitive.ObjectID]*structs.Conductor),
	}
}

func (f *fakeStore) FindByToken(_ context.Context, token string) (*structs.Principal, error) {
	for _, r := range f.riders {
		if r.Token != "" && r.Token == token {
			return &structs.Principal{Type: structs.PrincipalRider, Rider: r}, nil
		}
	}
	for _, c := range f.conductors {
		if c.Token != "" && c.Token == token {
			return &structs.Principal{Type: structs.PrincipalConductor, Conductor: c}, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) FindRiderByEmail(_ context.Context, email string) (*structs.Rider, error) {
	for _, r := range f.riders {
		if r.Email == email {
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) FindRiderByID(_ context.Context, id string) (*structs.Rider, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	if r, ok := f.riders[objectID]; ok {
		return r, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) FindConductorByCode(_ context.Context, code string) (*structs.Conductor, error) {
	for _, c := range f.conductors {
		if c.ConductorID == code {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) SetSession(_ context.Context, id primitive.ObjectID, variant structs.PrincipalType, token string, expiry time.Time) error {
	if variant == structs.PrincipalConductor {
		f.conductors[id].Token = token
		f.conductors[id].TokenExpiry = &expiry
		return nil
	}
	f.riders[id].Token = token
	f.riders[id].TokenExpiry = &expiry
	return nil
}

func (f *fakeStore) ClearSession(_ context.Context, id primitive.ObjectID, variant structs.PrincipalType) error {
	if variant == structs.PrincipalConductor {
		f.conductors[id].Token = ""
		f.conductors[id].TokenExpiry = nil
		return nil
	}
	f.riders[id].Token = ""
	f.riders[id].TokenExpiry = nil
	return nil
}

func (f *fakeStore) TouchLastLogin(_ context.Context, id primitive.ObjectID, now time.Time) error {
	f.conductors[id].LastLogin = &now
	return nil
}

type fakeBuses struct {
	buses map[string]*structs.Bus
}

func (f *fakeBuses) Resolve(_ context.Context, ref string) (*structs.Bus, error) {
	if b, ok := f.buses[ref]; ok {
		return b, nil
	}
	return nil, repository.ErrNotFound
}

type fakeLedger struct {
	records []*structs.VerificationRecord
}

func (f *fakeLedger) Append(_ context.Context, record *structs.VerificationRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeLedger) ListByConductor(_ context.Context, conductorID primitive.ObjectID, limit int64) ([]*structs.VerificationRecord, error) {
	var out []*structs.VerificationRecord
	for i := len(f.records) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if f.records[i].ConductorID == conductorID {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}

func (f *fakeLedger) ListByBusAndDate(_ context.Context, busRef, date string) ([]*structs.VerificationRecord, error) {
	var out []*structs.VerificationRecord
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].BusRef == busRef && f.records[i].Date == date {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}

type testEnv struct {
	engine *gin.Engine
	store  *fakeStore
	ledger *fakeLedger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	buses := &fakeBuses{buses: map[string]*structs.Bus{
		"AP-39-1234": {BusNumber: "AP-39-1234", From: "Srikakulam", To: "Rajam"},
	}}
	ledger := &fakeLedger{}

	log := logger.StdLogger()
	sessions := service.NewSessionService(store, time.Hour, log)
	verify := service.NewVerifyService(store, buses, ledger, &config.Verify{
		DefaultRouteFrom: "Srikakulam",
		DefaultRouteTo:   "Rajam",
	}, log)

	engine := gin.New()
	New(sessions, verify, log).Register(engine)

	return &testEnv{engine: engine, store: store, ledger: ledger}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) addConductor(t *testing.T, code, password string) *structs.Conductor {
	t.Helper()
	hash, err := util.EncryptPassword(password)
	if err != nil {
		t.Fatalf("EncryptPassword() error = %v", err)
	}
	c := &structs.Conductor{ID: primitive.NewObjectID(), Name: "Kiran", ConductorID: code, Password: hash}
	e.store.conductors[c.ID] = c
	return c
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHealthRoute(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", w.Code)
	}
}

func TestRiderLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	hash, _ := util.EncryptPassword("secret")
	rider := &structs.Rider{ID: primitive.NewObjectID(), Name: "Asha", Email: "asha@example.com", Password: hash}
	env.store.riders[rider.ID] = rider

	w := env.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "asha@example.com",
		"password": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("POST /auth/login = %d, body %s", w.Code, w.Body.String())
	}

	data := decodeData(t, w)
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("login response has no token")
	}

	// The issued token authenticates.
	w = env.request(t, http.MethodGet, "/auth/verify-token", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /auth/verify-token = %d", w.Code)
	}
	verifyData := decodeData(t, w)
	if verifyData["type"] != "rider" {
		t.Errorf("verify-token type = %v, want rider", verifyData["type"])
	}

	// A rider cannot reach the conductor surface.
	w = env.request(t, http.MethodPost, "/api/conductor/verify-pass", token, map[string]string{"user_id": rider.ID.Hex()})
	if w.Code != http.StatusForbidden {
		t.Errorf("rider on conductor route = %d, want 403", w.Code)
	}
}

func TestRiderLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	hash, _ := util.EncryptPassword("secret")
	rider := &structs.Rider{ID: primitive.NewObjectID(), Email: "asha@example.com", Password: hash}
	env.store.riders[rider.ID] = rider

	w := env.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "asha@example.com",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password = %d, want 401", w.Code)
	}

	w = env.request(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "asha@example.com"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing password = %d, want 400", w.Code)
	}
}

func TestVerifyPassRoute(t *testing.T) {
	env := newTestEnv(t)
	conductor := env.addConductor(t, "C-100", "secret")

	w := env.request(t, http.MethodPost, "/auth/conductor/login", "", map[string]string{
		"conductor_id": "C-100",
		"password":     "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("conductor login = %d, body %s", w.Code, w.Body.String())
	}
	token := decodeData(t, w)["token"].(string)

	rider := &structs.Rider{
		ID:         primitive.NewObjectID(),
		Name:       "Asha",
		PassStatus: true,
		PassExpiry: time.Now().Add(24 * time.Hour),
		From:       "Srikakulam",
		To:         "Rajam",
	}
	env.store.riders[rider.ID] = rider

	w = env.request(t, http.MethodPost, "/api/conductor/verify-pass", token, map[string]string{
		"user_id": rider.ID.Hex(),
		"bus_id":  "AP-39-1234",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("verify-pass = %d, body %s", w.Code, w.Body.String())
	}
	outcome := decodeData(t, w)
	if outcome["valid"] != true {
		t.Errorf("verify-pass valid = %v, want true", outcome["valid"])
	}

	// The attempt landed in the ledger.
	if len(env.ledger.records) != 1 {
		t.Fatalf("ledger has %d records, want 1", len(env.ledger.records))
	}
	if env.ledger.records[0].ConductorID != conductor.ID {
		t.Errorf("ledger conductor = %v, want %v", env.ledger.records[0].ConductorID, conductor.ID)
	}

	// An unknown rider is still a 200 with valid=false.
	w = env.request(t, http.MethodPost, "/api/conductor/verify-pass", token, map[string]string{
		"user_id": primitive.NewObjectID().Hex(),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("verify-pass unknown rider = %d", w.Code)
	}
	outcome = decodeData(t, w)
	if outcome["valid"] != false {
		t.Errorf("unknown rider valid = %v, want false", outcome["valid"])
	}

	// And the conductor can read their history back.
	w = env.request(t, http.MethodGet, "/api/conductor/verifications", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("verifications = %d", w.Code)
	}
	history := decodeData(t, w)
	if history["count"].(float64) != 2 {
		t.Errorf("verifications count = %v, want 2", history["count"])
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/auth/verify-token", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}

	w = env.request(t, http.MethodGet, "/api/conductor/verifications", "bogus", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bogus token = %d, want 401", w.Code)
	}
}
