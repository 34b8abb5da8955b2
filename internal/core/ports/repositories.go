package ports

import (
	"context"

	"marketplace-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// BalanceRepository defines persistence operations for native value balances.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type BalanceRepository interface {
	Create(ctx context.Context, balance *domain.Balance) error
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Balance, error)
	GetByAccountIDForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Balance, error)
	SetAmount(ctx context.Context, tx pgx.Tx, balanceID uuid.UUID, amount uint64) error
}

// JournalRepository persists the purchase journal (audit trail of
// completed buys). Writes are best-effort.
type JournalRepository interface {
	Record(ctx context.Context, entry *domain.JournalEntry) error
	ListByBuyer(ctx context.Context, buyer uuid.UUID, limit int) ([]domain.JournalEntry, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
