package service_test

import (
	"context"
	"testing"

	"github.com/avbelov/mini-ledger/backend/internal/account/store"
	"github.com/avbelov/mini-ledger/backend/internal/common/logger"
	"github.com/avbelov/mini-ledger/backend/internal/ledger/service"
	"github.com/avbelov/mini-ledger/backend/internal/persistence"
	"github.com/avbelov/mini-ledger/backend/internal/session"
)

type mockPersistStore struct {
	loadFunc func(ctx context.Context) (persistence.Snapshot, error)
	saveFunc func(ctx context.Context, snap persistence.Snapshot) error

	saveCalls int
	lastSaved persistence.Snapshot
}

func (m *mockPersistStore) Load(ctx context.Context) (persistence.Snapshot, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	return persistence.Snapshot{}, nil
}

func (m *mockPersistStore) Save(ctx context.Context, snap persistence.Snapshot) error {
	m.saveCalls++
	m.lastSaved = snap
	if m.saveFunc != nil {
		return m.saveFunc(ctx, snap)
	}
	return nil
}

func setupLedgerService(t *testing.T) (*service.LedgerService, *store.Store, *session.Manager, *mockPersistStore) {
	t.Helper()

	log, err := logger.New("", "ledger-test", "CRITICAL")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}

	accounts := store.New()
	sessions := session.NewManager()
	persist := &mockPersistStore{}

	svc := service.NewLedgerService(service.LedgerServiceDeps{
		Accounts:    accounts,
		Sessions:    sessions,
		Persistence: persist,
		Log:         log,
	}, service.LedgerServiceConfig{
		AdminUsername: "Admin",
	})

	return svc, accounts, sessions, persist
}

func registerUser(t *testing.T, svc *service.LedgerService, username, password, email string) {
	t.Helper()
	if err := svc.Register(context.Background(), service.RegisterInput{
		Username: username,
		Password: password,
		Email:    email,
	}); err != nil {
		t.Fatalf("failed to register %s: %v", username, err)
	}
}

func loginUser(t *testing.T, svc *service.LedgerService, username, password string) {
	t.Helper()
	if err := svc.Authenticate(context.Background(), service.LoginInput{
		Username: username,
		Password: password,
	}); err != nil {
		t.Fatalf("failed to login %s: %v", username, err)
	}
}
