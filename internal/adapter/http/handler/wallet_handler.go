package handler

import (
	"strconv"
	"time"

	"marketplace-ledger/internal/adapter/http/dto"
	"marketplace-ledger/internal/core/ports"
	"marketplace-ledger/pkg/apperror"
	"marketplace-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles balance and top-up endpoints.
type WalletHandler struct {
	ledgerSvc ports.LedgerService
	journal   ports.JournalRepository // nil = journal disabled
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerSvc ports.LedgerService, journal ports.JournalRepository) *WalletHandler {
	return &WalletHandler{
		ledgerSvc: ledgerSvc,
		journal:   journal,
	}
}

// GetBalance handles GET /api/v1/wallets/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.ledgerSvc.Balance(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: balance})
}

// Topup handles POST /api/v1/wallets/topup.
func (h *WalletHandler) Topup(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.ledgerSvc.Deposit(c.Request.Context(), caller, req.Amount); err != nil {
		response.Error(c, err)
		return
	}

	balance, err := h.ledgerSvc.Balance(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: balance})
}

// GetJournal handles GET /api/v1/wallets/journal — the caller's durable
// purchase record, newest first.
func (h *WalletHandler) GetJournal(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	if h.journal == nil {
		response.OK(c, gin.H{"entries": []dto.JournalEntryResponse{}})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			response.Error(c, apperror.Validation("limit must be an integer between 1 and 500"))
			return
		}
		limit = parsed
	}

	entries, err := h.journal.ListByBuyer(c.Request.Context(), caller, limit)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	items := make([]dto.JournalEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.JournalEntryResponse{
			ID:        e.ID.String(),
			Product:   e.Product,
			Quantity:  e.Quantity,
			Total:     e.Total,
			Change:    e.Change,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	response.OK(c, gin.H{"entries": items})
}
