package postgres

import (
	"context"
	"errors"
	"fmt"

	"marketplace-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BalanceRepo implements ports.BalanceRepository. Amounts are stored as
// BIGINT; pgx maps uint64 onto it, so the full range survives round-trips.
type BalanceRepo struct {
	pool Pool
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(pool Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

// Create inserts a new balance row for an account.
func (r *BalanceRepo) Create(ctx context.Context, b *domain.Balance) error {
	query := `INSERT INTO balances (id, account_id, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		b.ID, b.AccountID, b.Amount, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert balance: %w", err)
	}
	return nil
}

// GetByAccountID fetches a balance by account ID (non-locking read).
func (r *BalanceRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Balance, error) {
	query := `SELECT id, account_id, amount, created_at, updated_at
		FROM balances WHERE account_id = $1`

	b := &domain.Balance{}
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&b.ID, &b.AccountID, &b.Amount, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance by account id: %w", err)
	}
	return b, nil
}

// GetByAccountIDForUpdate fetches a balance with pessimistic locking.
// This MUST be called within a transaction.
func (r *BalanceRepo) GetByAccountIDForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Balance, error) {
	query := `SELECT id, account_id, amount, created_at, updated_at
		FROM balances WHERE account_id = $1 FOR UPDATE`

	b := &domain.Balance{}
	err := tx.QueryRow(ctx, query, accountID).Scan(
		&b.ID, &b.AccountID, &b.Amount, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return b, nil
}

// SetAmount updates a balance's amount within a transaction.
func (r *BalanceRepo) SetAmount(ctx context.Context, tx pgx.Tx, balanceID uuid.UUID, amount uint64) error {
	query := `UPDATE balances SET amount = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, amount, balanceID)
	if err != nil {
		return fmt.Errorf("update balance amount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("balance not found: %s", balanceID)
	}
	return nil
}
