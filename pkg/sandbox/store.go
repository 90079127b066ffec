package sandbox

import (
	"errors"
	"slices"
	"sync"

	"devapi/pkg/models"
)

// ErrUnknownAccount is returned when an account id is not in a developer's ledger.
var ErrUnknownAccount = errors.New("sandbox: unknown account")

// Store keeps generated records in memory, partitioned by developer.
// Records are kept in creation order.
type Store struct {
	mu      sync.RWMutex
	ledgers map[string]*ledger
}

type ledger struct {
	accounts     []models.Account
	index        map[string]int
	transactions map[string][]models.Transaction
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{ledgers: make(map[string]*ledger)}
}

func (s *Store) ledger(dev string) *ledger {
	l, ok := s.ledgers[dev]
	if !ok {
		l = &ledger{
			index:        make(map[string]int),
			transactions: make(map[string][]models.Transaction),
		}
		s.ledgers[dev] = l
	}
	return l
}

// AddAccounts appends accounts to the developer's ledger. An account whose id
// is already taken replaces the earlier one.
func (s *Store) AddAccounts(dev string, accounts ...models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.ledger(dev)
	for _, a := range accounts {
		if i, ok := l.index[a.AccountID]; ok {
			l.accounts[i] = a
			continue
		}
		l.index[a.AccountID] = len(l.accounts)
		l.accounts = append(l.accounts, a)
	}
}

// Accounts returns a copy of the developer's accounts.
func (s *Store) Accounts(dev string) []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.ledgers[dev]
	if !ok {
		return nil
	}
	return slices.Clone(l.accounts)
}

// Account looks up one account.
func (s *Store) Account(dev, accountID string) (models.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.ledgers[dev]
	if !ok {
		return models.Account{}, false
	}
	i, ok := l.index[accountID]
	if !ok {
		return models.Account{}, false
	}
	return l.accounts[i], true
}

// AddTransactions appends transactions to an existing account.
func (s *Store) AddTransactions(dev, accountID string, txns ...models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[dev]
	if !ok {
		return ErrUnknownAccount
	}
	if _, ok := l.index[accountID]; !ok {
		return ErrUnknownAccount
	}
	l.transactions[accountID] = append(l.transactions[accountID], txns...)
	return nil
}

// Transactions returns a copy of an account's transactions. An unknown
// account has none.
func (s *Store) Transactions(dev, accountID string) []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.ledgers[dev]
	if !ok {
		return nil
	}
	return slices.Clone(l.transactions[accountID])
}

// Len returns the number of accounts and transactions held for dev.
func (s *Store) Len(dev string) (accounts, transactions int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.ledgers[dev]
	if !ok {
		return 0, 0
	}
	for _, txns := range l.transactions {
		transactions += len(txns)
	}
	return len(l.accounts), transactions
}
