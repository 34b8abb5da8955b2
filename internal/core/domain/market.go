package domain

import (
	"sort"

	"github.com/google/uuid"
)

// Product holds the mutable listing data for one catalog entry.
// Quantity is the unit count in stock; Price is in native value units per unit.
type Product struct {
	Quantity uint64 `json:"quantity"`
	Price    uint64 `json:"price"`
}

// PurchaseStatus represents the delivery state of a purchase.
type PurchaseStatus string

const (
	// PurchaseStatusPaidFor is the only status the ledger currently records.
	PurchaseStatusPaidFor PurchaseStatus = "PAID_FOR"
)

// Purchase is an immutable record of one completed buy.
// It is never mutated or deleted after creation, even if the product
// it references is later removed from the catalog.
type Purchase struct {
	Name            string         `json:"name"`
	Quantity        uint64         `json:"quantity"`
	Status          PurchaseStatus `json:"status"`
	DeliveryAddress string         `json:"delivery_address"`
}

// MarketConfig is opaque to the ledger's logic and replaceable wholesale
// by the admin.
type MarketConfig struct {
	PublicKey string `json:"public_key"`
}

// Market is the aggregate root: one product catalog, one purchase history,
// exactly one admin identity (fixed at construction) and one config.
// It carries no locking of its own; the owning service serializes access.
type Market struct {
	Products  map[string]*Product
	Purchases map[uuid.UUID][]Purchase
	Admin     uuid.UUID
	Config    MarketConfig
}

// NewMarket constructs the aggregate. The constructing caller becomes
// the admin permanently; catalog and history start empty.
func NewMarket(admin uuid.UUID, cfg MarketConfig) *Market {
	return &Market{
		Products:  make(map[string]*Product),
		Purchases: make(map[uuid.UUID][]Purchase),
		Admin:     admin,
		Config:    cfg,
	}
}

// ProductListing is a catalog entry paired with its name, used by
// read-only projections.
type ProductListing struct {
	Name     string `json:"name"`
	Quantity uint64 `json:"quantity"`
	Price    uint64 `json:"price"`
}

// PurchaseHistory is one buyer's ordered purchase log.
type PurchaseHistory struct {
	Buyer     uuid.UUID  `json:"buyer"`
	Purchases []Purchase `json:"purchases"`
}

// Snapshot is a deep copy of the full market state.
type Snapshot struct {
	Products  []ProductListing  `json:"products"`
	Purchases []PurchaseHistory `json:"purchases"`
	Admin     uuid.UUID         `json:"admin"`
	Config    MarketConfig      `json:"config"`
}

// Listings returns the catalog as a name-sorted slice. The result shares
// no memory with the aggregate.
func (m *Market) Listings() []ProductListing {
	listings := make([]ProductListing, 0, len(m.Products))
	for name, p := range m.Products {
		listings = append(listings, ProductListing{Name: name, Quantity: p.Quantity, Price: p.Price})
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].Name < listings[j].Name })
	return listings
}

// Histories returns all purchase histories sorted by buyer ID.
// Per-buyer order is preserved (insertion order = chronological order).
func (m *Market) Histories() []PurchaseHistory {
	histories := make([]PurchaseHistory, 0, len(m.Purchases))
	for buyer, purchases := range m.Purchases {
		cp := make([]Purchase, len(purchases))
		copy(cp, purchases)
		histories = append(histories, PurchaseHistory{Buyer: buyer, Purchases: cp})
	}
	sort.Slice(histories, func(i, j int) bool {
		return histories[i].Buyer.String() < histories[j].Buyer.String()
	})
	return histories
}

// HistoryOf returns a copy of one buyer's purchase history, or nil when
// the buyer has never purchased anything.
func (m *Market) HistoryOf(buyer uuid.UUID) []Purchase {
	purchases, ok := m.Purchases[buyer]
	if !ok {
		return nil
	}
	cp := make([]Purchase, len(purchases))
	copy(cp, purchases)
	return cp
}

// TakeSnapshot returns a deep copy of the whole aggregate.
func (m *Market) TakeSnapshot() Snapshot {
	return Snapshot{
		Products:  m.Listings(),
		Purchases: m.Histories(),
		Admin:     m.Admin,
		Config:    m.Config,
	}
}
