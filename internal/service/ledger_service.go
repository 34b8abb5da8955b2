package service

import (
	"context"
	"fmt"
	"math"

	"marketplace-ledger/internal/core/domain"
	"marketplace-ledger/internal/core/ports"
	"marketplace-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService: native value movement
// between account balances with pessimistic locking.
type LedgerServiceImpl struct {
	balanceRepo ports.BalanceRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	balanceRepo ports.BalanceRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		balanceRepo: balanceRepo,
		transactor:  transactor,
		log:         log,
	}
}

// Transfer moves amount from one account to another atomically.
// A zero amount is a no-op. Both balances are locked FOR UPDATE in a
// fixed ID order so concurrent transfers cannot deadlock.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, from, to uuid.UUID, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	var fromBal, toBal *domain.Balance
	for _, account := range lockOrder(from, to) {
		bal, err := s.balanceRepo.GetByAccountIDForUpdate(ctx, dbTx, account)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("lock balance: %w", err))
		}
		if bal == nil {
			return apperror.ErrAccountNotFound("balance")
		}
		if account == from {
			fromBal = bal
		} else {
			toBal = bal
		}
	}

	if fromBal.Amount < amount {
		return apperror.ErrInsufficientFunds()
	}
	if toBal.Amount > math.MaxUint64-amount {
		return apperror.ErrBalanceOverflow()
	}

	if err := s.balanceRepo.SetAmount(ctx, dbTx, fromBal.ID, fromBal.Amount-amount); err != nil {
		return apperror.InternalError(fmt.Errorf("debit balance: %w", err))
	}
	if err := s.balanceRepo.SetAmount(ctx, dbTx, toBal.ID, toBal.Amount+amount); err != nil {
		return apperror.InternalError(fmt.Errorf("credit balance: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Debug().
		Str("from", from.String()).
		Str("to", to.String()).
		Uint64("amount", amount).
		Msg("value transferred")

	return nil
}

// Deposit adds amount to an account's balance (mint / top-up).
func (s *LedgerServiceImpl) Deposit(ctx context.Context, to uuid.UUID, amount uint64) error {
	if amount == 0 {
		return nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	bal, err := s.balanceRepo.GetByAccountIDForUpdate(ctx, dbTx, to)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock balance: %w", err))
	}
	if bal == nil {
		return apperror.ErrAccountNotFound("balance")
	}
	if bal.Amount > math.MaxUint64-amount {
		return apperror.ErrBalanceOverflow()
	}

	if err := s.balanceRepo.SetAmount(ctx, dbTx, bal.ID, bal.Amount+amount); err != nil {
		return apperror.InternalError(fmt.Errorf("credit balance: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Debug().Str("to", to.String()).Uint64("amount", amount).Msg("value deposited")

	return nil
}

// Balance returns an account's current balance.
func (s *LedgerServiceImpl) Balance(ctx context.Context, account uuid.UUID) (uint64, error) {
	bal, err := s.balanceRepo.GetByAccountID(ctx, account)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get balance: %w", err))
	}
	if bal == nil {
		return 0, apperror.ErrAccountNotFound("balance")
	}
	return bal.Amount, nil
}

// lockOrder returns the two accounts in deterministic lock order.
func lockOrder(a, b uuid.UUID) [2]uuid.UUID {
	if a.String() < b.String() {
		return [2]uuid.UUID{a, b}
	}
	return [2]uuid.UUID{b, a}
}
