package store

import (
	"fmt"
	"sync"

	"github.com/avbelov/mini-ledger/backend/internal/account/domain"
	"github.com/avbelov/mini-ledger/backend/internal/common/clock"
	"github.com/avbelov/mini-ledger/backend/internal/persistence"
)

// Store owns every account record for the process lifetime. A single mutex
// serializes all mutations so that cross-account operations (Transfer)
// complete atomically with respect to any other caller.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	order    []string
	clk      clock.Clock
}

func New() *Store {
	return NewWithClock(clock.NewRealClock())
}

func NewWithClock(clk clock.Clock) *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		clk:      clk,
	}
}

func (s *Store) Create(username, password, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[username]; exists {
		return ErrDuplicateUsername
	}

	s.accounts[username] = &domain.Account{
		Username:     username,
		Password:     password,
		Email:        email,
		Balance:      0,
		Transactions: []string{},
		CreatedAt:    s.clk.Now(),
	}
	s.order = append(s.order, username)
	return nil
}

// Get returns a copy of the account; callers never see interior pointers.
func (s *Store) Get(username string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return domain.Account{}, ErrAccountNotFound
	}
	return copyAccount(acc), nil
}

// Credit adds amount to the account balance and appends entry to its history.
// Amount must be positive; the transport boundary validates this.
func (s *Store) Credit(username string, amount int64, entry string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return ErrAccountNotFound
	}

	acc.Balance += amount
	acc.Transactions = append(acc.Transactions, entry)
	return nil
}

// Debit subtracts amount from the account balance and appends entry to its
// history. Fails without mutating anything when the balance is insufficient.
// Amount must be positive; the transport boundary validates this.
func (s *Store) Debit(username string, amount int64, entry string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return ErrAccountNotFound
	}
	if acc.Balance < amount {
		return ErrInsufficientFunds
	}

	acc.Balance -= amount
	acc.Transactions = append(acc.Transactions, entry)
	return nil
}

// Transfer moves amount from sender to recipient inside one critical section:
// existence checks, the funds check, both balance updates and both history
// entries are indivisible. Either every effect happens or none does.
func (s *Store) Transfer(sender, recipient string, amount int64) error {
	if sender == recipient {
		return ErrSameAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.accounts[sender]
	if !ok {
		return ErrSenderNotFound
	}
	to, ok := s.accounts[recipient]
	if !ok {
		return ErrAccountNotFound
	}
	if from.Balance < amount {
		return ErrInsufficientFunds
	}

	from.Balance -= amount
	to.Balance += amount

	from.Transactions = append(from.Transactions, fmt.Sprintf("Transferred ₹%d to %s", amount, recipient))
	to.Transactions = append(to.Transactions, fmt.Sprintf("Received ₹%d from %s", amount, sender))
	return nil
}

func (s *Store) Delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[username]; !ok {
		return ErrAccountNotFound
	}

	delete(s.accounts, username)
	for i, u := range s.order {
		if u == username {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns copies of every account in insertion order.
func (s *Store) List() []domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Account, 0, len(s.order))
	for _, username := range s.order {
		out = append(out, copyAccount(s.accounts[username]))
	}
	return out
}

// Transactions returns a copy of the account's history in insertion order.
func (s *Store) Transactions(username string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return nil, ErrAccountNotFound
	}

	out := make([]string, len(acc.Transactions))
	copy(out, acc.Transactions)
	return out, nil
}

// Snapshot exports the full ledger state under the store lock, so persistence
// never observes a half-applied transfer.
func (s *Store) Snapshot() persistence.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := persistence.Snapshot{
		Meta: persistence.Meta{
			Version: persistence.SnapshotVersion,
		},
		Accounts: make([]persistence.PersistAccount, 0, len(s.order)),
	}
	for _, username := range s.order {
		acc := s.accounts[username]
		txs := make([]string, len(acc.Transactions))
		copy(txs, acc.Transactions)
		snap.Accounts = append(snap.Accounts, persistence.PersistAccount{
			Username:     acc.Username,
			Password:     acc.Password,
			Email:        acc.Email,
			Balance:      acc.Balance,
			Transactions: txs,
			CreatedAt:    acc.CreatedAt,
		})
	}
	return snap
}

// Restore replaces the store contents with the snapshot state.
func (s *Store) Restore(snap persistence.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[string]*domain.Account, len(snap.Accounts))
	s.order = make([]string, 0, len(snap.Accounts))
	for _, pa := range snap.Accounts {
		txs := make([]string, len(pa.Transactions))
		copy(txs, pa.Transactions)
		s.accounts[pa.Username] = &domain.Account{
			Username:     pa.Username,
			Password:     pa.Password,
			Email:        pa.Email,
			Balance:      pa.Balance,
			Transactions: txs,
			CreatedAt:    pa.CreatedAt,
		}
		s.order = append(s.order, pa.Username)
	}
}

func copyAccount(acc *domain.Account) domain.Account {
	cp := *acc
	cp.Transactions = make([]string, len(acc.Transactions))
	copy(cp.Transactions, acc.Transactions)
	return cp
}
