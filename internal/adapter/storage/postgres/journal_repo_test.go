package postgres

import (
	"context"
	"testing"
	"time"

	"marketplace-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournalEntry(buyer uuid.UUID) *domain.JournalEntry {
	return &domain.JournalEntry{
		ID:        uuid.New(),
		Buyer:     buyer,
		Product:   "Widget",
		Quantity:  2,
		Total:     2000,
		Change:    500,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func journalColumns() []string {
	return []string{"id", "buyer", "product", "quantity", "total", "change", "created_at"}
}

func TestJournalRepo_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)
	e := newTestJournalEntry(uuid.New())

	mock.ExpectExec("INSERT INTO purchase_journal").
		WithArgs(e.ID, e.Buyer, e.Product, e.Quantity, e.Total, e.Change, e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Record(context.Background(), e)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepo_ListByBuyer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)
	buyer := uuid.New()
	e1 := newTestJournalEntry(buyer)
	e2 := newTestJournalEntry(buyer)
	e2.Product = "Gadget"

	rows := pgxmock.NewRows(journalColumns()).
		AddRow(e2.ID, e2.Buyer, e2.Product, e2.Quantity, e2.Total, e2.Change, e2.CreatedAt).
		AddRow(e1.ID, e1.Buyer, e1.Product, e1.Quantity, e1.Total, e1.Change, e1.CreatedAt)

	mock.ExpectQuery("SELECT .+ FROM purchase_journal WHERE buyer").
		WithArgs(buyer, 50).
		WillReturnRows(rows)

	entries, err := repo.ListByBuyer(context.Background(), buyer, 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Gadget", entries[0].Product)
	assert.Equal(t, "Widget", entries[1].Product)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepo_ListByBuyer_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)
	buyer := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM purchase_journal WHERE buyer").
		WithArgs(buyer, 50).
		WillReturnRows(pgxmock.NewRows(journalColumns()))

	entries, err := repo.ListByBuyer(context.Background(), buyer, 50)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
