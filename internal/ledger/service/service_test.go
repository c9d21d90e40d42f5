package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/avbelov/mini-ledger/backend/internal/ledger/service"
	"github.com/avbelov/mini-ledger/backend/internal/persistence"
)

func TestLedgerService_Register_Duplicate(t *testing.T) {
	svc, _, _, _ := setupLedgerService(t)

	registerUser(t, svc, "alice", "pass1", "alice@example.com")

	err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Password: "other",
		Email:    "other@example.com",
	})
	if !errors.Is(err, service.ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestLedgerService_Register_SavesSnapshot(t *testing.T) {
	svc, _, _, persist := setupLedgerService(t)

	registerUser(t, svc, "alice", "pass1", "alice@example.com")

	if persist.saveCalls != 1 {
		t.Errorf("expected 1 snapshot save, got %d", persist.saveCalls)
	}
	if len(persist.lastSaved.Accounts) != 1 || persist.lastSaved.Accounts[0].Username != "alice" {
		t.Errorf("unexpected saved snapshot: %+v", persist.lastSaved.Accounts)
	}
}

func TestLedgerService_Authenticate_Success(t *testing.T) {
	svc, _, sessions, persist := setupLedgerService(t)
	registerUser(t, svc, "alice", "pass1", "alice@example.com")

	loginUser(t, svc, "alice", "pass1")

	current, ok := sessions.Current()
	if !ok || current != "alice" {
		t.Errorf("expected alice session, got %q (ok=%v)", current, ok)
	}
	if persist.lastSaved.LoggedInUser != "alice" {
		t.Errorf("expected logged-in user persisted, got %q", persist.lastSaved.LoggedInUser)
	}
}

func TestLedgerService_Authenticate_WrongPassword(t *testing.T) {
	svc, _, sessions, _ := setupLedgerService(t)
	registerUser(t, svc, "alice", "pass1", "alice@example.com")

	err := svc.Authenticate(context.Background(), service.LoginInput{
		Username: "alice",
		Password: "wrong",
	})
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, ok := sessions.Current(); ok {
		t.Error("expected no session after failed login")
	}
}

func TestLedgerService_Authenticate_UnknownUser(t *testing.T) {
	svc, _, _, _ := setupLedgerService(t)

	err := svc.Authenticate(context.Background(), service.LoginInput{
		Username: "ghost",
		Password: "pass1",
	})
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLedgerService_ViewAccount_RequiresSession(t *testing.T) {
	svc, _, _, _ := setupLedgerService(t)

	_, err := svc.ViewAccount(context.Background())
	if !errors.Is(err, service.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestLedgerService_ViewAccount_Success(t *testing.T) {
	svc, accounts, _, _ := setupLedgerService(t)
	registerUser(t, svc, "alice", "pass1", "alice@example.com")
	loginUser(t, svc, "alice", "pass1")

	if err := accounts.Credit("alice", 100, "seed"); err != nil {
		t.Fatalf("failed to credit: %v", err)
	}

	view, err := svc.ViewAccount(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if view.Username != "alice" || view.Balance != 100 || view.Email != "alice@example.com" {
		t.Errorf("unexpected view: %+v", view)
	}
}

func TestLedgerService_Transfer_Success(t *testing.T) {
	svc, accounts, _, persist := setupLedgerService(t)
	registerUser(t, svc, "alice", "pass1", "alice@example.com")
	registerUser(t, svc, "bob", "pass2", "bob@example.com")
	if err := accounts.Credit("alice", 100, "seed"); err != nil {
		t.Fatalf("failed to credit: %v", err)
	}
	loginUser(t, svc, "alice", "pass1")

	savesBefore := persist.saveCalls
	err := svc.Transfer(context.Background(), service.TransferInput{
		Recipient: "bob",
		Amount:    40,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	alice, _ := accounts.Get("alice")
	bob, _ := accounts.Get("bob")
	if alice.Balance != 60 || bob.Balance != 40 {
		t.Errorf("expected balances 60/40, got %d/%d", alice.Balance, bob.Balance)
	}
	if persist.saveCalls != savesBefore+1 {
		t.Errorf("expected snapshot save after transfer")
	}
}

func TestLedgerService_Transfer_RequiresSession(t *testing.T) {
	svc, _, _, _ := setupLedgerService(t)

	err := svc.Transfer(context.Background(), service.TransferInput{Recipient: "bob", Amount: 10})
	if !errors.Is(err, service.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestLedgerService_Transfer_RecipientNotFound(t *testing.T) {
	svc, _, _, _ := setupLedgerService(t)
	registerUser(t, svc, "alice", "pass1", "alice@example.com")
	loginUser(t, svc, "alice", "pass1")

	err := svc.Transfer(context.Background(), service.TransferInput{Recipient: "ghost", Amount: 10})
	if !errors.Is(err, service.ErrRecipientNotFound) {
		t.Errorf("expected ErrRecipientNotFound, got %v", err)
	}
}

func TestLedgerService_Transfer_InsufficientFunds(t *testing.T) {
	svc, _, _, persist := setupLedgerService(t)
	registerUser(t, svc, "alice", "pass1", "alice@example.com")
	registerUser(t, svc, "bob", "pass2", "bob@example.com")
	loginUser(t, svc, "alice", "pass1")

	savesBefore := persist.saveCalls
	err := svc.Transfer(context.Background(), service.TransferInput{Recipient: "bob", Amount: 10})
	if !errors.Is(err, service.ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
	if persist.saveCalls != savesBefore {
		t.Errorf("expected no snapshot save after failed transfer")
	}
}

func TestLedgerService_Transfer_Self(t *testing.T) {
	svc, accounts, _, _ := setupLedgerService(t)
	registerUser(t, svc, "alice", "pass1", "alice@example.com")
	if err := accounts.Credit("alice", 100, "seed"); err != nil {
		t.Fatalf("failed to credit: %v", err)
	}
	loginUser(t, svc, "alice", "pass1")

	err := svc.Transfer(context.Background(), service.TransferInput{Recipient: "alice", Amount: 10})
	if !errors.Is(err, service.ErrSelfTransfer) {
		t.Errorf("expected ErrSelfTransfer, got %v", err)
	}
}

func TestLedgerService_Transfer_StaleSessionSenderMissing(t *testing.T) {
	svc, accounts, sessions, _ := setupLedgerService(t)
	registerUser(t, svc, "bob", "pass2", "bob@example.com")

	// A restored snapshot can carry a logged-in username whose account is gone.
	sessions.SetCurrent("ghost")

	err := svc.Transfer(context.Background(), service.TransferInput{Recipient: "bob", Amount: 10})
	if !errors.Is(err, service.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
	if current, ok := sessions.Current(); ok {
		t.Errorf("expected stale session cleared, got %q", current)
	}

	bob, _ := accounts.Get("bob")
	if bob.Balance != 0 {
		t.Errorf("expected recipient untouched, got balance %d", bob.Balance)
	}
}

func TestLedgerService_Transfer_ToDeletedUser(t *testing.T) {
	svc, accounts, _, _ := setupLedgerService(t)
	registerUser(t, svc, "Admin", "adminpass", "admin@example.com")
	registerUser(t, svc, "alice", "pass1", "alice@example.com")
	registerUser(t, svc, "bob", "pass2", "bob@example.com")
	if err := accounts.Credit("alice", 100, "seed"); err != nil {
		t.Fatalf("failed to credit: %v", err)
	}

	loginUser(t, svc, "Admin", "adminpass")
	if err := svc.AdminDeleteUser(context.Background(), "bob"); err != nil {
		t.Fatalf("failed to delete bob: %v", err)
	}

	loginUser(t, svc, "alice", "pass1")
	err := svc.Transfer(context.Background(), service.TransferInput{Recipient: "bob", Amount: 10})
	if !errors.Is(err, service.ErrRecipientNotFound) {
		t.Errorf("expected ErrRecipientNotFound after deletion, got %v", err)
	}
}

func TestLedgerService_ListTransactions(t *testing.T) {
	svc, accounts, _, _ := setupLedgerService(t)
	registerUser(t, svc, "alice", "pass1", "alice@example.com")
	registerUser(t, svc, "bob", "pass2", "bob@example.com")
	if err := accounts.Credit("alice", 100, "seed"); err != nil {
		t.Fatalf("failed to credit: %v", err)
	}
	loginUser(t, svc, "alice", "pass1")

	if err := svc.Transfer(context.Background(), service.TransferInput{Recipient: "bob", Amount: 40}); err != nil {
		t.Fatalf("failed to transfer: %v", err)
	}

	txs, err := svc.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(txs))
	}
	if txs[1] != "Transferred ₹40 to bob" {
		t.Errorf("unexpected last entry: %q", txs[1])
	}
}

func TestLedgerService_AdminOps_RequireAdminSession(t *testing.T) {
	svc, _, _, _ := setupLedgerService(t)
	registerUser(t, svc, "alice", "pass1", "alice@example.com")
	loginUser(t, svc, "alice", "pass1")

	if _, err := svc.AdminListUsers(context.Background()); !errors.Is(err, service.ErrAdminRequired) {
		t.Errorf("AdminListUsers: expected ErrAdminRequired, got %v", err)
	}

	err := svc.AdminAdjustBalance(context.Background(), service.AdjustInput{
		Username:  "alice",
		Amount:    10,
		Direction: service.AdjustCredit,
	})
	if !errors.Is(err, service.ErrAdminRequired) {
		t.Errorf("AdminAdjustBalance: expected ErrAdminRequired, got %v", err)
	}

	if err := svc.AdminDeleteUser(context.Background(), "alice"); !errors.Is(err, service.ErrAdminRequired) {
		t.Errorf("AdminDeleteUser: expected ErrAdminRequired, got %v", err)
	}
}

func TestLedgerService_AdminListUsers(t *testing.T) {
	svc, _, _, _ := setupLedgerService(t)
	registerUser(t, svc, "Admin", "adminpass", "admin@example.com")
	registerUser(t, svc, "alice", "pass1", "alice@example.com")
	loginUser(t, svc, "Admin", "adminpass")

	users, err := svc.AdminListUsers(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	alice, ok := users["alice"]
	if !ok {
		t.Fatal("expected alice in listing")
	}
	if alice.Password != "pass1" || alice.Email != "alice@example.com" || alice.Balance != 0 {
		t.Errorf("unexpected alice record: %+v", alice)
	}
}

func TestLedgerService_AdminAdjustBalance(t *testing.T) {
	svc, accounts, _, _ := setupLedgerService(t)
	registerUser(t, svc, "Admin", "adminpass", "admin@example.com")
	registerUser(t, svc, "alice", "pass1", "alice@example.com")
	loginUser(t, svc, "Admin", "adminpass")

	if err := svc.AdminAdjustBalance(context.Background(), service.AdjustInput{
		Username:  "alice",
		Amount:    100,
		Direction: service.AdjustCredit,
	}); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if err := svc.AdminAdjustBalance(context.Background(), service.AdjustInput{
		Username:  "alice",
		Amount:    30,
		Direction: service.AdjustDebit,
	}); err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	alice, _ := accounts.Get("alice")
	if alice.Balance != 70 {
		t.Errorf("expected balance 70, got %d", alice.Balance)
	}
	if len(alice.Transactions) != 2 {
		t.Fatalf("expected 2 history entries, got %v", alice.Transactions)
	}
	if alice.Transactions[0] != "₹100 added by Admin" {
		t.Errorf("unexpected credit entry: %q", alice.Transactions[0])
	}
	if alice.Transactions[1] != "₹30 removed by Admin" {
		t.Errorf("unexpected debit entry: %q", alice.Transactions[1])
	}
}

func TestLedgerService_AdminAdjustBalance_UnknownUser(t *testing.T) {
	svc, _, _, _ := setupLedgerService(t)
	registerUser(t, svc, "Admin", "adminpass", "admin@example.com")
	loginUser(t, svc, "Admin", "adminpass")

	err := svc.AdminAdjustBalance(context.Background(), service.AdjustInput{
		Username:  "ghost",
		Amount:    10,
		Direction: service.AdjustCredit,
	})
	if !errors.Is(err, service.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLedgerService_AdminAdjustBalance_DebitInsufficient(t *testing.T) {
	svc, _, _, _ := setupLedgerService(t)
	registerUser(t, svc, "Admin", "adminpass", "admin@example.com")
	registerUser(t, svc, "alice", "pass1", "alice@example.com")
	loginUser(t, svc, "Admin", "adminpass")

	err := svc.AdminAdjustBalance(context.Background(), service.AdjustInput{
		Username:  "alice",
		Amount:    10,
		Direction: service.AdjustDebit,
	})
	if !errors.Is(err, service.ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestLedgerService_AdminDeleteUser(t *testing.T) {
	svc, accounts, _, _ := setupLedgerService(t)
	registerUser(t, svc, "Admin", "adminpass", "admin@example.com")
	registerUser(t, svc, "alice", "pass1", "alice@example.com")
	loginUser(t, svc, "Admin", "adminpass")

	if err := svc.AdminDeleteUser(context.Background(), "alice"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := accounts.Get("alice"); err == nil {
		t.Error("expected alice to be gone")
	}

	if err := svc.AdminDeleteUser(context.Background(), "alice"); !errors.Is(err, service.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound on second delete, got %v", err)
	}
}

func TestLedgerService_AdminDeleteSelf_InvalidatesSession(t *testing.T) {
	svc, _, sessions, _ := setupLedgerService(t)
	registerUser(t, svc, "Admin", "adminpass", "admin@example.com")
	loginUser(t, svc, "Admin", "adminpass")

	if err := svc.AdminDeleteUser(context.Background(), "Admin"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if current, ok := sessions.Current(); ok {
		t.Errorf("expected session cleared after self-delete, got %q", current)
	}

	if _, err := svc.ViewAccount(context.Background()); !errors.Is(err, service.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated after self-delete, got %v", err)
	}
}

func TestLedgerService_SnapshotFailureDoesNotFailOperation(t *testing.T) {
	svc, accounts, _, persist := setupLedgerService(t)
	persist.saveFunc = func(ctx context.Context, snap persistence.Snapshot) error {
		return errors.New("disk full")
	}

	registerUser(t, svc, "alice", "pass1", "alice@example.com")

	if _, err := accounts.Get("alice"); err != nil {
		t.Errorf("expected account created despite save failure, got %v", err)
	}
	if persist.saveCalls != 1 {
		t.Errorf("expected save attempted once, got %d", persist.saveCalls)
	}
}
