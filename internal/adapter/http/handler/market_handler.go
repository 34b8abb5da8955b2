package handler

import (
	"marketplace-ledger/internal/adapter/http/dto"
	"marketplace-ledger/internal/adapter/http/middleware"
	"marketplace-ledger/internal/core/domain"
	"marketplace-ledger/internal/core/ports"
	"marketplace-ledger/pkg/apperror"
	"marketplace-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MarketHandler handles catalog mutations, purchases, and state queries.
type MarketHandler struct {
	marketSvc ports.MarketService
	treasury  ports.TreasuryService
	log       zerolog.Logger
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc ports.MarketService, treasury ports.TreasuryService, log zerolog.Logger) *MarketHandler {
	return &MarketHandler{
		marketSvc: marketSvc,
		treasury:  treasury,
		log:       log,
	}
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxAccountID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// AddProduct handles POST /api/v1/market/products.
func (h *MarketHandler) AddProduct(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	event, err := h.marketSvc.AddProduct(c.Request.Context(), caller, req.Name, req.Quantity, req.Price)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ProductEventResponse{
		Name:     event.Name,
		Quantity: event.Quantity,
		Price:    event.Price,
	})
}

// UpdateProduct handles PATCH /api/v1/market/products/:name.
func (h *MarketHandler) UpdateProduct(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	event, err := h.marketSvc.UpdateProductInfo(c.Request.Context(), caller, c.Param("name"), req.Quantity, req.Price)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ProductPatchResponse{
		Name:     event.Name,
		Quantity: event.Quantity,
		Price:    event.Price,
	})
}

// DeleteProduct handles DELETE /api/v1/market/products/:name.
func (h *MarketHandler) DeleteProduct(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	event, err := h.marketSvc.DeleteProduct(c.Request.Context(), caller, c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"name": event.Name})
}

// UpdateConfig handles PUT /api/v1/market/config.
func (h *MarketHandler) UpdateConfig(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	event, err := h.marketSvc.UpdateConfig(c.Request.Context(), caller, domain.MarketConfig{PublicKey: req.PublicKey})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, event.Config)
}

// Buy handles POST /api/v1/market/purchases. The handler is the dispatcher:
// it collects the attached value into the treasury up front, runs the
// purchase, and on any purchase error sends the full attached value
// back. The purchase itself already returned overpayment as change, so
// the refund never double-pays.
func (h *MarketHandler) Buy(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	ctx := c.Request.Context()
	if err := h.treasury.Collect(ctx, caller, req.AttachedValue); err != nil {
		response.Error(c, err)
		return
	}

	event, err := h.marketSvc.Buy(ctx, ports.BuyRequest{
		Buyer:           caller,
		AttachedValue:   req.AttachedValue,
		Name:            req.Name,
		Quantity:        req.Quantity,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		if refundErr := h.treasury.Send(ctx, caller, req.AttachedValue); refundErr != nil {
			h.log.Error().Err(refundErr).
				Str("buyer", caller.String()).
				Uint64("amount", req.AttachedValue).
				Msg("failed to refund attached value")
		}
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BoughtResponse{
		Buyer:    event.Buyer.String(),
		Name:     event.Name,
		Quantity: event.Quantity,
	})
}

// GetState handles GET /api/v1/market — the full state snapshot.
func (h *MarketHandler) GetState(c *gin.Context) {
	response.OK(c, h.marketSvc.Snapshot(c.Request.Context()))
}

// GetProducts handles GET /api/v1/market/products.
func (h *MarketHandler) GetProducts(c *gin.Context) {
	response.OK(c, gin.H{"products": h.marketSvc.Products(c.Request.Context())})
}

// GetPurchases handles GET /api/v1/market/purchases.
func (h *MarketHandler) GetPurchases(c *gin.Context) {
	response.OK(c, gin.H{"purchases": h.marketSvc.Purchases(c.Request.Context())})
}

// GetMyPurchases handles GET /api/v1/market/purchases/me. A buyer with
// no history gets an empty list, not an error.
func (h *MarketHandler) GetMyPurchases(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	purchases := h.marketSvc.ActorPurchases(c.Request.Context(), caller)
	if purchases == nil {
		purchases = []domain.Purchase{}
	}
	response.OK(c, gin.H{"purchases": purchases})
}

// GetActorPurchases handles GET /api/v1/market/purchases/:actor_id.
func (h *MarketHandler) GetActorPurchases(c *gin.Context) {
	actor, err := uuid.Parse(c.Param("actor_id"))
	if err != nil {
		response.Error(c, apperror.Validation("actor_id must be a valid UUID"))
		return
	}

	purchases := h.marketSvc.ActorPurchases(c.Request.Context(), actor)
	if purchases == nil {
		purchases = []domain.Purchase{}
	}
	response.OK(c, gin.H{"purchases": purchases})
}
