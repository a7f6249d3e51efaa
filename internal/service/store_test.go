package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"account-service/internal/domain"
	"account-service/internal/errors"
)

// memoryStore is an in-memory domain.Store. WithTransaction restores the
// previous state when fn fails.
type memoryStore struct {
	mu           sync.Mutex
	users        map[int64]domain.AccountUser
	accounts     map[int64]domain.Account
	transactions map[int64]domain.Transaction
	nextID       int64

	// failTransactionSave makes every transaction insert fail.
	failTransactionSave error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:        map[int64]domain.AccountUser{},
		accounts:     map[int64]domain.Account{},
		transactions: map[int64]domain.Transaction{},
	}
}

func (s *memoryStore) AccountUser() domain.AccountUserRepository { return memoryUsers{s} }
func (s *memoryStore) Account() domain.AccountRepository         { return memoryAccounts{s} }
func (s *memoryStore) Transaction() domain.TransactionRepository { return memoryTransactions{s} }

func (s *memoryStore) WithTransaction(ctx context.Context, fn func(domain.Store) error) error {
	s.mu.Lock()
	accounts := make(map[int64]domain.Account, len(s.accounts))
	for id, a := range s.accounts {
		accounts[id] = a
	}
	transactions := make(map[int64]domain.Transaction, len(s.transactions))
	for id, t := range s.transactions {
		transactions[id] = t
	}
	nextID := s.nextID
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.accounts = accounts
		s.transactions = transactions
		s.nextID = nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memoryStore) addUser(id int64, name string) {
	s.users[id] = domain.AccountUser{ID: id, Name: name}
}

func (s *memoryStore) addAccount(account domain.Account) *domain.Account {
	s.nextID++
	account.ID = s.nextID
	s.accounts[account.ID] = account
	return &account
}

func (s *memoryStore) addTransaction(tx domain.Transaction) *domain.Transaction {
	s.nextID++
	tx.ID = s.nextID
	s.transactions[tx.ID] = tx
	return &tx
}

func (s *memoryStore) account(number string) domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.AccountNumber == number {
			return a
		}
	}
	panic("no account " + number)
}

func (s *memoryStore) transactionsOf(accountID int64) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, t := range s.transactions {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memoryUsers struct{ s *memoryStore }

func (r memoryUsers) GetByID(_ context.Context, id int64) (*domain.AccountUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return &user, nil
}

type memoryAccounts struct{ s *memoryStore }

func (r memoryAccounts) GetByNumber(_ context.Context, accountNumber string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.AccountNumber == accountNumber {
			return &a, nil
		}
	}
	return nil, errors.ErrAccountNotFound
}

func (r memoryAccounts) GetByNumberForUpdate(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return r.GetByNumber(ctx, accountNumber)
}

func (r memoryAccounts) ListByUserID(_ context.Context, userID int64) ([]domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	accounts := []domain.Account{}
	for _, a := range r.s.accounts {
		if a.UserID == userID {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (r memoryAccounts) GetHighestNumbered(_ context.Context) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var highest *domain.Account
	for _, a := range r.s.accounts {
		if highest == nil || a.AccountNumber > highest.AccountNumber {
			highest = &a
		}
	}
	return highest, nil
}

func (r memoryAccounts) CountByUserID(_ context.Context, userID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, a := range r.s.accounts {
		if a.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r memoryAccounts) Save(_ context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if account.ID == 0 {
		for _, a := range r.s.accounts {
			if a.AccountNumber == account.AccountNumber {
				return errors.ErrDuplicateAccountNumber
			}
		}
		r.s.nextID++
		account.ID = r.s.nextID
	} else if _, ok := r.s.accounts[account.ID]; !ok {
		return errors.ErrAccountNotFound
	}
	r.s.accounts[account.ID] = *account
	return nil
}

type memoryTransactions struct{ s *memoryStore }

func (r memoryTransactions) GetByTransactionID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.TransactionID == transactionID {
			t.AccountNumber = r.s.accounts[t.AccountID].AccountNumber
			return &t, nil
		}
	}
	return nil, errors.ErrTransactionNotFound
}

func (r memoryTransactions) Save(_ context.Context, tx *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failTransactionSave != nil {
		return r.s.failTransactionSave
	}
	if tx.ID != 0 {
		return errors.ErrTransactionImmutable
	}
	r.s.nextID++
	tx.ID = r.s.nextID
	r.s.transactions[tx.ID] = *tx
	return nil
}

// sequenceIDs hands out tx-1, tx-2, ...
type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequenceIDs) NewTransactionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("tx-%d", g.n)
}

var errStorageDown = stderrors.New("storage down")
