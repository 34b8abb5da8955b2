package ports

import (
	"context"
	"time"

	"marketplace-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// --- Market core ---

// MarketService is the marketplace ledger: authorization-gated catalog
// mutations, the payment-critical Buy path, and read-only projections.
// The implementation serializes requests; callers never see partial
// mutations.
type MarketService interface {
	AddProduct(ctx context.Context, caller uuid.UUID, name string, quantity, price uint64) (*domain.ProductAdded, error)
	UpdateProductInfo(ctx context.Context, caller uuid.UUID, name string, quantity, price *uint64) (*domain.ProductInfoUpdated, error)
	UpdateConfig(ctx context.Context, caller uuid.UUID, cfg domain.MarketConfig) (*domain.ConfigUpdated, error)
	DeleteProduct(ctx context.Context, caller uuid.UUID, name string) (*domain.ProductDeleted, error)
	Buy(ctx context.Context, req BuyRequest) (*domain.Bought, error)

	// Read-only projections.
	Snapshot(ctx context.Context) domain.Snapshot
	Products(ctx context.Context) []domain.ProductListing
	Purchases(ctx context.Context) []domain.PurchaseHistory
	ActorPurchases(ctx context.Context, buyer uuid.UUID) []domain.Purchase
}

// BuyRequest carries the dispatcher-supplied facts (caller identity and
// attached value) together with the purchase inputs. Both facts are
// immutable for the duration of the call.
type BuyRequest struct {
	Buyer           uuid.UUID
	AttachedValue   uint64
	Name            string
	Quantity        uint64
	DeliveryAddress string
}

// ValueTransfer is the host's value-transfer primitive as seen by the
// market core: send native value to an identity. Implementations must
// no-op when amount is 0.
type ValueTransfer interface {
	Send(ctx context.Context, to uuid.UUID, amount uint64) error
}

// TreasuryService manages the custody account holding attached value and
// market proceeds. The dispatcher collects a buyer's attached value before
// the purchase runs and sends it back when the purchase fails.
type TreasuryService interface {
	ValueTransfer
	Collect(ctx context.Context, from uuid.UUID, amount uint64) error
}

// NetworkParams exposes host execution parameters. MinTransferValue is
// the existential deposit: a dynamic floor read at call time, not a
// compile-time constant.
type NetworkParams interface {
	MinTransferValue(ctx context.Context) (uint64, error)
}

// --- Value ledger (host harness) ---

// LedgerService moves native value between accounts.
type LedgerService interface {
	Transfer(ctx context.Context, from, to uuid.UUID, amount uint64) error
	Deposit(ctx context.Context, to uuid.UUID, amount uint64) error
	Balance(ctx context.Context, account uuid.UUID) (uint64, error)
}

// --- Authentication ---

// AuthService defines account registration and login.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID uuid.UUID, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Username  string
}
