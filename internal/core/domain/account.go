package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered identity. The account created at bootstrap
// with the configured admin credentials becomes the market admin.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Balance holds an account's native value. Amounts are in the smallest
// native unit and never negative.
type Balance struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	Amount    uint64    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JournalEntry records one completed purchase for auditing. It is written
// best-effort after the market state has already been mutated and never
// affects the operation's result.
type JournalEntry struct {
	ID        uuid.UUID `json:"id"`
	Buyer     uuid.UUID `json:"buyer"`
	Product   string    `json:"product"`
	Quantity  uint64    `json:"quantity"`
	Total     uint64    `json:"total"`
	Change    uint64    `json:"change"` // overpayment returned to the buyer
	CreatedAt time.Time `json:"created_at"`
}
