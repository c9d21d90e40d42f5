package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/avbelov/mini-ledger/backend/internal/account/store"
	commonerrors "github.com/avbelov/mini-ledger/backend/internal/common/errors"
	"github.com/avbelov/mini-ledger/backend/internal/common/logger"
	"github.com/avbelov/mini-ledger/backend/internal/persistence"
	"github.com/avbelov/mini-ledger/backend/internal/session"
)

// LedgerService orchestrates every ledger operation: it resolves the caller
// through the session state, mutates the account store, and triggers a
// snapshot save after each successful mutation. The save is fire-and-forget
// with respect to the operation result: a failed save is logged and counted
// but the logical outcome stands.
type LedgerService struct {
	accounts  *store.Store
	sessions  *session.Manager
	persist   persistence.Store
	adminUser string
	log       *logger.Logger
}

type LedgerServiceDeps struct {
	Accounts    *store.Store
	Sessions    *session.Manager
	Persistence persistence.Store
	Log         *logger.Logger
}

type LedgerServiceConfig struct {
	AdminUsername string
}

func NewLedgerService(deps LedgerServiceDeps, cfg LedgerServiceConfig) *LedgerService {
	return &LedgerService{
		accounts:  deps.Accounts,
		sessions:  deps.Sessions,
		persist:   deps.Persistence,
		adminUser: cfg.AdminUsername,
		log:       deps.Log,
	}
}

type RegisterInput struct {
	Username string
	Password string
	Email    string
}

type LoginInput struct {
	Username string
	Password string
}

type TransferInput struct {
	Recipient string
	Amount    int64
}

type AdjustDirection string

const (
	AdjustCredit AdjustDirection = "credit"
	AdjustDebit  AdjustDirection = "debit"
)

type AdjustInput struct {
	Username  string
	Amount    int64
	Direction AdjustDirection
}

type AccountView struct {
	Username string
	Balance  int64
	Email    string
}

// AdminAccountView mirrors the stored account record as exposed by the admin
// listing, keyed by username at the transport layer.
type AdminAccountView struct {
	Password     string
	Email        string
	Balance      int64
	Transactions []string
}

func (s *LedgerService) Register(ctx context.Context, input RegisterInput) error {
	if err := s.accounts.Create(input.Username, input.Password, input.Email); err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: already exists")
			return ErrDuplicateUsername
		}
		return commonerrors.ErrInternalError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_success",
	}).Info("register success")

	incrementAccountsRegistered()
	s.saveSnapshot(ctx)
	return nil
}

func (s *LedgerService) Authenticate(ctx context.Context, input LoginInput) error {
	acc, err := s.accounts.Get(input.Username)
	if err != nil || acc.Password != input.Password {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_failed",
		}).Warn("login failed: invalid credentials")
		return ErrInvalidCredentials
	}

	s.sessions.SetCurrent(input.Username)

	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_success",
	}).Info("login success")

	incrementLogins()
	s.saveSnapshot(ctx)
	return nil
}

func (s *LedgerService) ViewAccount(ctx context.Context) (AccountView, error) {
	current, err := s.requireSession(ctx)
	if err != nil {
		return AccountView{}, err
	}

	acc, err := s.accounts.Get(current)
	if err != nil {
		return AccountView{}, ErrNotAuthenticated
	}

	return AccountView{
		Username: acc.Username,
		Balance:  acc.Balance,
		Email:    acc.Email,
	}, nil
}

func (s *LedgerService) Transfer(ctx context.Context, input TransferInput) error {
	sender, err := s.requireSession(ctx)
	if err != nil {
		return err
	}

	if err := s.accounts.Transfer(sender, input.Recipient, input.Amount); err != nil {
		switch {
		case errors.Is(err, store.ErrSameAccount):
			return ErrSelfTransfer
		case errors.Is(err, store.ErrSenderNotFound):
			// The session names an account that no longer exists, which can
			// only come from a stale restored snapshot. Clear it.
			s.sessions.Invalidate(sender)
			s.log.WithFields(ctx, logger.Fields{
				"sender": sender,
				"action": "transfer_sender_missing",
			}).Warn("transfer failed: session names a missing account")
			return ErrNotAuthenticated
		case errors.Is(err, store.ErrAccountNotFound):
			s.log.WithFields(ctx, logger.Fields{
				"sender":    sender,
				"recipient": input.Recipient,
				"action":    "transfer_recipient_not_found",
			}).Warn("transfer failed: recipient not found")
			return ErrRecipientNotFound
		case errors.Is(err, store.ErrInsufficientFunds):
			s.log.WithFields(ctx, logger.Fields{
				"sender": sender,
				"action": "transfer_insufficient_funds",
			}).Warn("transfer failed: insufficient balance")
			return ErrInsufficientFunds
		}
		return commonerrors.ErrInternalError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"sender":    sender,
		"recipient": input.Recipient,
		"amount":    input.Amount,
		"action":    "transfer_success",
	}).Info("transfer success")

	incrementTransfers(input.Amount)
	s.saveSnapshot(ctx)
	return nil
}

func (s *LedgerService) ListTransactions(ctx context.Context) ([]string, error) {
	current, err := s.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.accounts.Transactions(current)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	return txs, nil
}

func (s *LedgerService) AdminListUsers(ctx context.Context) (map[string]AdminAccountView, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	accounts := s.accounts.List()
	users := make(map[string]AdminAccountView, len(accounts))
	for _, acc := range accounts {
		users[acc.Username] = AdminAccountView{
			Password:     acc.Password,
			Email:        acc.Email,
			Balance:      acc.Balance,
			Transactions: acc.Transactions,
		}
	}
	return users, nil
}

func (s *LedgerService) AdminAdjustBalance(ctx context.Context, input AdjustInput) error {
	admin, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}

	switch input.Direction {
	case AdjustCredit:
		err = s.accounts.Credit(input.Username, input.Amount, fmt.Sprintf("₹%d added by %s", input.Amount, admin))
	case AdjustDebit:
		err = s.accounts.Debit(input.Username, input.Amount, fmt.Sprintf("₹%d removed by %s", input.Amount, admin))
	default:
		return fmt.Errorf("unknown adjustment direction: %q", input.Direction)
	}

	if err != nil {
		switch {
		case errors.Is(err, store.ErrAccountNotFound):
			return ErrUserNotFound
		case errors.Is(err, store.ErrInsufficientFunds):
			return ErrInsufficientFunds
		}
		return commonerrors.ErrInternalError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username":  input.Username,
		"amount":    input.Amount,
		"direction": string(input.Direction),
		"action":    "admin_adjust_success",
	}).Info("admin adjustment applied")

	incrementAdminAdjustments(input.Direction)
	s.saveSnapshot(ctx)
	return nil
}

func (s *LedgerService) AdminDeleteUser(ctx context.Context, username string) error {
	if _, err := s.requireAdmin(ctx); err != nil {
		return err
	}

	if err := s.accounts.Delete(username); err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return ErrUserNotFound
		}
		return commonerrors.ErrInternalError.WithCause(err)
	}

	// A deleted account must not remain the authenticated identity.
	s.sessions.Invalidate(username)

	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "admin_delete_success",
	}).Info("account deleted")

	incrementAccountsDeleted()
	s.saveSnapshot(ctx)
	return nil
}

func (s *LedgerService) requireSession(ctx context.Context) (string, error) {
	current, ok := s.sessions.Current()
	if !ok {
		s.log.WithFields(ctx, logger.Fields{
			"action": "session_missing",
		}).Warn("operation rejected: no session")
		return "", ErrNotAuthenticated
	}
	return current, nil
}

func (s *LedgerService) requireAdmin(ctx context.Context) (string, error) {
	current, ok := s.sessions.Current()
	if !ok || current != s.adminUser {
		s.log.WithFields(ctx, logger.Fields{
			"action": "admin_required",
		}).Warn("operation rejected: admin privileges required")
		return "", ErrAdminRequired
	}
	return current, nil
}

func (s *LedgerService) saveSnapshot(ctx context.Context) {
	snap := s.accounts.Snapshot()
	if current, ok := s.sessions.Current(); ok {
		snap.LoggedInUser = current
	}

	if err := s.persist.Save(ctx, snap); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "snapshot_save_failed",
		}).Errorf("snapshot save failed: %v", err)
		incrementSnapshotSaveFailures()
		return
	}
	incrementSnapshotSaves()
}
