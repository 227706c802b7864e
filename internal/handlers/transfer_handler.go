package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "cuentas/internal/errors"
	"cuentas/internal/services"
)

// TransferHandler handles money movements between accounts.
type TransferHandler struct {
	transferService services.TransferServicer
	auditService    services.AuditServicer
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferService services.TransferServicer, auditService services.AuditServicer) *TransferHandler {
	return &TransferHandler{transferService: transferService, auditService: auditService}
}

// TransferRequest represents the request payload for a transfer.
// ReceivedAmount is required when the two accounts use different
// currencies.
type TransferRequest struct {
	FromAccountID  string   `json:"from_account_id" binding:"required,uuid"`
	ToAccountID    string   `json:"to_account_id" binding:"required,uuid"`
	Date           string   `json:"date" binding:"required"`
	Amount         float64  `json:"amount" binding:"required,gt=0"`
	Fee            float64  `json:"fee" binding:"gte=0"`
	ReceivedAmount *float64 `json:"received_amount" binding:"omitempty,gt=0"`
	Description    string   `json:"description" binding:"max=500"`
}

// Transfer handles a money movement between two accounts
// @Summary     Transfer between accounts
// @Description Move money between two accounts as paired ledger entries, with an optional fee
// @Tags        transfers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransferRequest true "Transfer details"
// @Success     201 "Transfer recorded"
// @Failure     400 {object} ErrorResponse "Invalid input, same-account transfer, or missing received amount"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transfers [post]
func (h *TransferHandler) Transfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var date time.Time
	if req.Date != "" {
		date, err = parseDate(req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
	}

	input := services.TransferInput{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Date:          date,
		Amount:        toCents(req.Amount),
		Fee:           toCents(req.Fee),
		Description:   req.Description,
	}
	if req.ReceivedAmount != nil {
		received := toCents(*req.ReceivedAmount)
		input.ReceivedAmount = &received
	}

	if err := h.transferService.Transfer(input); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "TRANSFER", "account", req.FromAccountID, c.ClientIP(),
		map[string]interface{}{
			"to_account_id": req.ToAccountID,
			"amount":        req.Amount,
			"fee":           req.Fee,
		})

	c.Status(http.StatusCreated)
}
