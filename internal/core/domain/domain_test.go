package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMarket(t *testing.T) {
	admin := uuid.New()
	m := NewMarket(admin, MarketConfig{PublicKey: "pk"})

	assert.Equal(t, admin, m.Admin)
	assert.Equal(t, "pk", m.Config.PublicKey)
	assert.Empty(t, m.Products)
	assert.Empty(t, m.Purchases)
}

func TestMarket_Listings_SortedAndDetached(t *testing.T) {
	m := NewMarket(uuid.New(), MarketConfig{})
	m.Products["Widget"] = &Product{Quantity: 10, Price: 100}
	m.Products["Anvil"] = &Product{Quantity: 3, Price: 5000}

	listings := m.Listings()
	require.Len(t, listings, 2)
	assert.Equal(t, "Anvil", listings[0].Name)
	assert.Equal(t, "Widget", listings[1].Name)

	// The projection must not alias the aggregate.
	listings[1].Quantity = 0
	assert.Equal(t, uint64(10), m.Products["Widget"].Quantity)
}

func TestMarket_HistoryOf_AbsentBuyer(t *testing.T) {
	m := NewMarket(uuid.New(), MarketConfig{})
	assert.Nil(t, m.HistoryOf(uuid.New()), "absent buyer yields nil, not an error")
}

func TestMarket_HistoryOf_CopiesPurchases(t *testing.T) {
	m := NewMarket(uuid.New(), MarketConfig{})
	buyer := uuid.New()
	m.Purchases[buyer] = []Purchase{
		{Name: "Widget", Quantity: 2, Status: PurchaseStatusPaidFor, DeliveryAddress: "addr"},
	}

	history := m.HistoryOf(buyer)
	require.Len(t, history, 1)

	history[0].Quantity = 99
	assert.Equal(t, uint64(2), m.Purchases[buyer][0].Quantity)
}

func TestMarket_TakeSnapshot(t *testing.T) {
	admin := uuid.New()
	buyer := uuid.New()
	m := NewMarket(admin, MarketConfig{PublicKey: "pk"})
	m.Products["Widget"] = &Product{Quantity: 98, Price: 1000}
	m.Purchases[buyer] = []Purchase{
		{Name: "Widget", Quantity: 2, Status: PurchaseStatusPaidFor, DeliveryAddress: "addr"},
	}

	snap := m.TakeSnapshot()
	assert.Equal(t, admin, snap.Admin)
	assert.Equal(t, "pk", snap.Config.PublicKey)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, ProductListing{Name: "Widget", Quantity: 98, Price: 1000}, snap.Products[0])
	require.Len(t, snap.Purchases, 1)
	assert.Equal(t, buyer, snap.Purchases[0].Buyer)
	assert.Equal(t, PurchaseStatusPaidFor, snap.Purchases[0].Purchases[0].Status)
}

func TestMarket_Histories_Ordered(t *testing.T) {
	m := NewMarket(uuid.New(), MarketConfig{})
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	m.Purchases[b] = []Purchase{{Name: "X", Quantity: 1, Status: PurchaseStatusPaidFor}}
	m.Purchases[a] = []Purchase{{Name: "Y", Quantity: 1, Status: PurchaseStatusPaidFor}}

	histories := m.Histories()
	require.Len(t, histories, 2)
	assert.Equal(t, a, histories[0].Buyer)
	assert.Equal(t, b, histories[1].Buyer)
}
