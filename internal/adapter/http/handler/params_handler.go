package handler

import (
	"marketplace-ledger/internal/adapter/http/dto"
	redisStore "marketplace-ledger/internal/adapter/storage/redis"
	"marketplace-ledger/internal/core/ports"
	"marketplace-ledger/pkg/apperror"
	"marketplace-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// ParamsHandler exposes runtime network parameters to the market admin.
type ParamsHandler struct {
	marketSvc ports.MarketService
	params    ports.NetworkParams
	store     *redisStore.ParamsStore
}

// NewParamsHandler creates a new ParamsHandler.
func NewParamsHandler(marketSvc ports.MarketService, params ports.NetworkParams, store *redisStore.ParamsStore) *ParamsHandler {
	return &ParamsHandler{
		marketSvc: marketSvc,
		params:    params,
		store:     store,
	}
}

// GetMinTransferValue handles GET /api/v1/params/min-transfer-value.
func (h *ParamsHandler) GetMinTransferValue(c *gin.Context) {
	value, err := h.params.MinTransferValue(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	response.OK(c, gin.H{"value": value})
}

// SetMinTransferValue handles PUT /api/v1/params/min-transfer-value.
// Only the market admin may retune the floor; the new value takes effect
// on the next listing without a restart.
func (h *ParamsHandler) SetMinTransferValue(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	if caller != h.marketSvc.Snapshot(c.Request.Context()).Admin {
		response.Error(c, apperror.ErrNotAdmin())
		return
	}

	var req dto.SetMinTransferValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.store.SetMinTransferValue(c.Request.Context(), req.Value); err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	response.OK(c, gin.H{"value": req.Value})
}
