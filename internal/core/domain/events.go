package domain

import "github.com/google/uuid"

// Market events mirror the request names. Each successful operation
// returns exactly one of these.

// ProductAdded confirms an AddProduct, echoing the three inputs.
type ProductAdded struct {
	Name     string `json:"name"`
	Quantity uint64 `json:"quantity"`
	Price    uint64 `json:"price"`
}

// ProductInfoUpdated echoes the patch as given, not the resulting
// absolute values: a nil field means "left unchanged".
type ProductInfoUpdated struct {
	Name     string  `json:"name"`
	Quantity *uint64 `json:"quantity,omitempty"`
	Price    *uint64 `json:"price,omitempty"`
}

// ConfigUpdated echoes the new config.
type ConfigUpdated struct {
	Config MarketConfig `json:"config"`
}

// ProductDeleted confirms a DeleteProduct.
type ProductDeleted struct {
	Name string `json:"name"`
}

// Bought confirms a successful purchase.
type Bought struct {
	Buyer    uuid.UUID `json:"buyer"`
	Name     string    `json:"name"`
	Quantity uint64    `json:"quantity"`
}
