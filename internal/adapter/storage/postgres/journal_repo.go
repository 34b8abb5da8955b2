package postgres

import (
	"context"
	"fmt"

	"marketplace-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// JournalRepo implements ports.JournalRepository: an append-only record of
// completed purchases, kept alongside the in-memory histories for audit.
type JournalRepo struct {
	pool Pool
}

// NewJournalRepo creates a new JournalRepo.
func NewJournalRepo(pool Pool) *JournalRepo {
	return &JournalRepo{pool: pool}
}

// Record appends a purchase entry to the journal.
func (r *JournalRepo) Record(ctx context.Context, e *domain.JournalEntry) error {
	query := `INSERT INTO purchase_journal (id, buyer, product, quantity, total, change, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.Buyer, e.Product, e.Quantity, e.Total, e.Change, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// ListByBuyer returns a buyer's journal entries, newest first.
func (r *JournalRepo) ListByBuyer(ctx context.Context, buyer uuid.UUID, limit int) ([]domain.JournalEntry, error) {
	query := `SELECT id, buyer, product, quantity, total, change, created_at
		FROM purchase_journal WHERE buyer = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, buyer, limit)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var e domain.JournalEntry
		if err := rows.Scan(&e.ID, &e.Buyer, &e.Product, &e.Quantity, &e.Total, &e.Change, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}
