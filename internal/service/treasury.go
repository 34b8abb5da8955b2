package service

import (
	"context"

	"marketplace-ledger/internal/core/ports"

	"github.com/google/uuid"
)

// Treasury adapts the value ledger to the market core's ValueTransfer
// port: a send is a transfer out of the treasury account, which holds
// the attached value of in-flight purchases and the market's proceeds.
type Treasury struct {
	ledger  ports.LedgerService
	account uuid.UUID
}

// NewTreasury binds a ledger to the treasury account.
func NewTreasury(ledger ports.LedgerService, account uuid.UUID) *Treasury {
	return &Treasury{ledger: ledger, account: account}
}

// Send transfers amount from the treasury to the given identity.
// The ledger no-ops on a zero amount.
func (t *Treasury) Send(ctx context.Context, to uuid.UUID, amount uint64) error {
	return t.ledger.Transfer(ctx, t.account, to, amount)
}

// Collect transfers amount from an identity into the treasury.
func (t *Treasury) Collect(ctx context.Context, from uuid.UUID, amount uint64) error {
	return t.ledger.Transfer(ctx, from, t.account, amount)
}

// Account returns the treasury account ID.
func (t *Treasury) Account() uuid.UUID {
	return t.account
}
