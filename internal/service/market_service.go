package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"marketplace-ledger/internal/core/domain"
	"marketplace-ledger/internal/core/ports"
	"marketplace-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MarketServiceImpl implements ports.MarketService. It owns the Market
// aggregate exclusively and serializes every operation: mutations take the
// write lock, projections the read lock, so a request always observes the
// aggregate between operations, never mid-mutation.
type MarketServiceImpl struct {
	mu       sync.RWMutex
	market   *domain.Market
	transfer ports.ValueTransfer
	params   ports.NetworkParams
	journal  ports.JournalRepository // nil = journaling disabled
	log      zerolog.Logger
}

// NewMarketService creates a MarketServiceImpl owning the given aggregate.
func NewMarketService(
	market *domain.Market,
	transfer ports.ValueTransfer,
	params ports.NetworkParams,
	journal ports.JournalRepository,
	log zerolog.Logger,
) *MarketServiceImpl {
	return &MarketServiceImpl{
		market:   market,
		transfer: transfer,
		params:   params,
		journal:  journal,
		log:      log,
	}
}

// AddProduct lists a new product. Admin only. The price floor is the
// host's minimum transferable value, read at call time: it is a runtime
// parameter, not a constant.
func (s *MarketServiceImpl) AddProduct(ctx context.Context, caller uuid.UUID, name string, quantity, price uint64) (*domain.ProductAdded, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.market.Admin {
		return nil, apperror.ErrNotAdmin()
	}
	if _, exists := s.market.Products[name]; exists {
		return nil, apperror.ErrAlreadyExists()
	}

	floor, err := s.params.MinTransferValue(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("read min transfer value: %w", err))
	}
	if price < floor {
		return nil, apperror.ErrPriceBelowMinimum()
	}

	s.market.Products[name] = &domain.Product{Quantity: quantity, Price: price}

	s.log.Info().
		Str("name", name).
		Uint64("quantity", quantity).
		Uint64("price", price).
		Msg("product added")

	return &domain.ProductAdded{Name: name, Quantity: quantity, Price: price}, nil
}

// UpdateProductInfo patches a product in place. Admin only. Each field is
// independently optional: nil leaves it unchanged. The event echoes the
// patch as given, not the resulting absolute values.
func (s *MarketServiceImpl) UpdateProductInfo(ctx context.Context, caller uuid.UUID, name string, quantity, price *uint64) (*domain.ProductInfoUpdated, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.market.Admin {
		return nil, apperror.ErrNotAdmin()
	}
	product, ok := s.market.Products[name]
	if !ok {
		return nil, apperror.ErrNoSuchProduct()
	}

	if quantity != nil {
		product.Quantity = *quantity
	}
	if price != nil {
		product.Price = *price
	}

	s.log.Info().Str("name", name).Msg("product info updated")

	return &domain.ProductInfoUpdated{Name: name, Quantity: quantity, Price: price}, nil
}

// UpdateConfig replaces the stored config wholesale. Admin only.
func (s *MarketServiceImpl) UpdateConfig(ctx context.Context, caller uuid.UUID, cfg domain.MarketConfig) (*domain.ConfigUpdated, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.market.Admin {
		return nil, apperror.ErrNotAdmin()
	}

	s.market.Config = cfg

	s.log.Info().Msg("market config updated")

	return &domain.ConfigUpdated{Config: cfg}, nil
}

// DeleteProduct removes a product from the catalog. Admin only. Purchase
// histories referencing the name are left untouched.
func (s *MarketServiceImpl) DeleteProduct(ctx context.Context, caller uuid.UUID, name string) (*domain.ProductDeleted, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.market.Admin {
		return nil, apperror.ErrNotAdmin()
	}
	if _, ok := s.market.Products[name]; !ok {
		return nil, apperror.ErrNoSuchProduct()
	}

	delete(s.market.Products, name)

	s.log.Info().Str("name", name).Msg("product deleted")

	return &domain.ProductDeleted{Name: name}, nil
}

// Buy purchases against on-hand stock. Any caller may buy. Checks run in
// a fixed order and short-circuit; they are pure, so on any failure the
// aggregate is untouched and the dispatcher can refund the entire
// attached value without per-error logic. Overpayment is returned to the
// buyer as exact change even though the purchase succeeds.
func (s *MarketServiceImpl) Buy(ctx context.Context, req ports.BuyRequest) (*domain.Bought, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.market.Products[req.Name]
	if !ok {
		return nil, apperror.ErrNoSuchProduct()
	}
	if req.Quantity == 0 {
		return nil, apperror.ErrZeroQuantity()
	}
	if req.Quantity > product.Quantity {
		return nil, apperror.ErrQuantityExceeded()
	}
	if product.Price > 0 && req.Quantity > math.MaxUint64/product.Price {
		return nil, apperror.ErrAmountOverflow()
	}

	total := product.Price * req.Quantity
	if req.AttachedValue < total {
		return nil, apperror.ErrInsufficientValue()
	}

	change := req.AttachedValue - total
	if change > 0 {
		// Nothing has been mutated yet: a failed change transfer fails the
		// whole purchase and the dispatcher refunds the full attached value.
		if err := s.transfer.Send(ctx, req.Buyer, change); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("send change: %w", err))
		}
	}

	product.Quantity -= req.Quantity

	purchase := domain.Purchase{
		Name:            req.Name,
		Quantity:        req.Quantity,
		Status:          domain.PurchaseStatusPaidFor,
		DeliveryAddress: req.DeliveryAddress,
	}
	s.market.Purchases[req.Buyer] = append(s.market.Purchases[req.Buyer], purchase)

	s.recordPurchase(ctx, req, total, change)

	s.log.Info().
		Str("buyer", req.Buyer.String()).
		Str("name", req.Name).
		Uint64("quantity", req.Quantity).
		Uint64("total", total).
		Uint64("change", change).
		Msg("purchase completed")

	return &domain.Bought{Buyer: req.Buyer, Name: req.Name, Quantity: req.Quantity}, nil
}

// recordPurchase appends to the purchase journal. Best-effort: a journal
// failure never affects the already-committed purchase.
func (s *MarketServiceImpl) recordPurchase(ctx context.Context, req ports.BuyRequest, total, change uint64) {
	if s.journal == nil {
		return
	}
	entry := &domain.JournalEntry{
		ID:        uuid.New(),
		Buyer:     req.Buyer,
		Product:   req.Name,
		Quantity:  req.Quantity,
		Total:     total,
		Change:    change,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("buyer", req.Buyer.String()).Msg("failed to record purchase journal entry")
	}
}

// Snapshot returns a deep copy of the full market state.
func (s *MarketServiceImpl) Snapshot(ctx context.Context) domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.market.TakeSnapshot()
}

// Products returns the catalog alone.
func (s *MarketServiceImpl) Products(ctx context.Context) []domain.ProductListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.market.Listings()
}

// Purchases returns all purchase histories.
func (s *MarketServiceImpl) Purchases(ctx context.Context) []domain.PurchaseHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.market.Histories()
}

// ActorPurchases returns one buyer's history; nil when the buyer has
// never purchased anything. Not an error.
func (s *MarketServiceImpl) ActorPurchases(ctx context.Context, buyer uuid.UUID) []domain.Purchase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.market.HistoryOf(buyer)
}
