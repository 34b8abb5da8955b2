package integration

import (
	"context"
	"sync"
	"time"

	"marketplace-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// In-memory repository implementations backing the integration suite.
// They honor the port contracts (nil, nil for misses) so the real
// services run unchanged against them.

// --- In-Memory Account Repository ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
	byName   map[string]uuid.UUID
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{
		accounts: make(map[uuid.UUID]*domain.Account),
		byName:   make(map[string]uuid.UUID),
	}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *account
	r.accounts[account.ID] = &cp
	r.byName[account.Username] = account.ID
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *account
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[username]
	if !ok {
		return nil, nil
	}
	cp := *r.accounts[id]
	return &cp, nil
}

// --- In-Memory Balance Repository ---

type inMemoryBalanceRepo struct {
	mu        sync.RWMutex
	balances  map[uuid.UUID]*domain.Balance // keyed by balance ID
	byAccount map[uuid.UUID]uuid.UUID
}

func newInMemoryBalanceRepo() *inMemoryBalanceRepo {
	return &inMemoryBalanceRepo{
		balances:  make(map[uuid.UUID]*domain.Balance),
		byAccount: make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *inMemoryBalanceRepo) Create(ctx context.Context, balance *domain.Balance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *balance
	r.balances[balance.ID] = &cp
	r.byAccount[balance.AccountID] = balance.ID
	return nil
}

func (r *inMemoryBalanceRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Balance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byAccount[accountID]
	if !ok {
		return nil, nil
	}
	cp := *r.balances[id]
	return &cp, nil
}

// GetByAccountIDForUpdate relies on the transactor's global lock for
// isolation; the tx parameter is the no-op handle it issued.
func (r *inMemoryBalanceRepo) GetByAccountIDForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Balance, error) {
	return r.GetByAccountID(ctx, accountID)
}

func (r *inMemoryBalanceRepo) SetAmount(ctx context.Context, tx pgx.Tx, balanceID uuid.UUID, amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance, ok := r.balances[balanceID]
	if !ok {
		return pgx.ErrNoRows
	}
	balance.Amount = amount
	balance.UpdatedAt = time.Now()
	return nil
}

// --- In-Memory Journal Repository ---

type inMemoryJournalRepo struct {
	mu      sync.RWMutex
	entries []domain.JournalEntry
}

func newInMemoryJournalRepo() *inMemoryJournalRepo {
	return &inMemoryJournalRepo{}
}

func (r *inMemoryJournalRepo) Record(ctx context.Context, entry *domain.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *inMemoryJournalRepo) ListByBuyer(ctx context.Context, buyer uuid.UUID, limit int) ([]domain.JournalEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.JournalEntry
	// Newest first, like the SQL implementation.
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].Buyer == buyer {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes transfer transactions with a single
// mutex, standing in for row-level FOR UPDATE locks.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &serialTx{release: &t.mu}, nil
}

// serialTx holds the transactor lock until Commit or Rollback.
type serialTx struct {
	release  *sync.Mutex
	released bool
}

func (t *serialTx) done() {
	if !t.released {
		t.released = true
		t.release.Unlock()
	}
}

func (t *serialTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *serialTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *serialTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *serialTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *serialTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *serialTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *serialTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *serialTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *serialTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *serialTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *serialTx) Conn() *pgx.Conn { return nil }
