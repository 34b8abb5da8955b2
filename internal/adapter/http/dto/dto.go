package dto

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for account login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// AddProductRequest is the request body for listing a new product.
type AddProductRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Quantity uint64 `json:"quantity"`
	Price    uint64 `json:"price"`
}

// UpdateProductRequest is the request body for patching a product.
// Absent fields leave the corresponding value unchanged.
type UpdateProductRequest struct {
	Quantity *uint64 `json:"quantity,omitempty"`
	Price    *uint64 `json:"price,omitempty"`
}

// UpdateConfigRequest is the request body for replacing the market config.
type UpdateConfigRequest struct {
	PublicKey string `json:"public_key" binding:"required"`
}

// BuyRequest is the request body for a purchase. AttachedValue is the
// amount the buyer commits up front; overpayment comes back as change.
type BuyRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=100"`
	Quantity        uint64 `json:"quantity"`
	AttachedValue   uint64 `json:"attached_value"`
	DeliveryAddress string `json:"delivery_address" binding:"required,min=1,max=500"`
}

// TopupRequest is the request body for a balance top-up.
type TopupRequest struct {
	Amount uint64 `json:"amount" binding:"required,gt=0"`
}

// SetMinTransferValueRequest overrides the network's minimum
// transferable value.
type SetMinTransferValueRequest struct {
	Value uint64 `json:"value" binding:"required,gt=0"`
}

// ProductEventResponse echoes a catalog mutation.
type ProductEventResponse struct {
	Name     string `json:"name"`
	Quantity uint64 `json:"quantity"`
	Price    uint64 `json:"price"`
}

// ProductPatchResponse echoes a patch as given, not the resulting state.
type ProductPatchResponse struct {
	Name     string  `json:"name"`
	Quantity *uint64 `json:"quantity,omitempty"`
	Price    *uint64 `json:"price,omitempty"`
}

// BoughtResponse echoes a completed purchase.
type BoughtResponse struct {
	Buyer    string `json:"buyer"`
	Name     string `json:"name"`
	Quantity uint64 `json:"quantity"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Balance uint64 `json:"balance"`
}

// JournalEntryResponse is one journal row in a buyer's purchase record.
type JournalEntryResponse struct {
	ID        string `json:"id"`
	Product   string `json:"product"`
	Quantity  uint64 `json:"quantity"`
	Total     uint64 `json:"total"`
	Change    uint64 `json:"change"`
	CreatedAt string `json:"created_at"`
}
