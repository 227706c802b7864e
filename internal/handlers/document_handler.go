package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cuentas/internal/errors"
	"cuentas/internal/models"
	"cuentas/internal/pagination"
	"cuentas/internal/services"
)

// DocumentHandler handles invoice and proforma requests.
type DocumentHandler struct {
	documentService services.DocumentServicer
	auditService    services.AuditServicer
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService services.DocumentServicer, auditService services.AuditServicer) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, auditService: auditService}
}

// CreateDocumentRequest represents the request payload for creating a document
type CreateDocumentRequest struct {
	Kind       string  `json:"kind" binding:"required,document_kind"`
	ClientName string  `json:"client_name" binding:"required,max=200"`
	IssueDate  string  `json:"issue_date" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	Tax        float64 `json:"tax" binding:"gte=0"`
}

// CollectInvoiceRequest carries the payment details for collecting an invoice.
type CollectInvoiceRequest struct {
	AccountID string  `json:"account_id" binding:"required,uuid"`
	Date      *string `json:"date"`
	Method    string  `json:"method" binding:"max=50"`
}

// DocumentListQuery holds pagination plus filters for listing documents.
type DocumentListQuery struct {
	pagination.PageRequest
	Kind   string `form:"kind" binding:"omitempty,document_kind"`
	Status string `form:"status" binding:"omitempty,oneof=Adeudada Cobrada"`
}

// CreateDocument handles the creation of a new invoice or proforma
// @Summary     Create a document
// @Description Create a new invoice or proforma, numbered from the per-kind counter
// @Tags        documents
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateDocumentRequest true "Document details"
// @Success     201 {object} models.Document "Document created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /documents [post]
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	document, err := h.documentService.CreateDocument(
		models.DocumentKind(req.Kind),
		req.ClientName,
		issueDate,
		toCents(req.Amount),
		toCents(req.Tax),
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_DOCUMENT", "document", document.ID, c.ClientIP(),
		map[string]interface{}{"kind": req.Kind, "number": document.Number, "client": req.ClientName})

	c.JSON(http.StatusCreated, gin.H{"document": document})
}

// GetDocuments handles the retrieval of documents
// @Summary     Get documents
// @Description Get a paginated list of invoices and proformas with optional filters
// @Tags        documents
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       kind      query string false "invoice or proforma"
// @Param       status    query string false "Adeudada or Cobrada"
// @Success     200 {object} pagination.PageResponse[models.Document] "Paginated documents"
// @Failure     400 {object} ErrorResponse "Invalid query"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /documents [get]
func (h *DocumentHandler) GetDocuments(c *gin.Context) {
	var query DocumentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.DocumentFilter{}
	if query.Kind != "" {
		kind := models.DocumentKind(query.Kind)
		filter.Kind = &kind
	}
	if query.Status != "" {
		status := models.DocumentStatus(query.Status)
		filter.Status = &status
	}

	result, err := h.documentService.GetDocuments(query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDocumentByID handles the retrieval of a specific document
// @Summary     Get document by ID
// @Description Get a specific invoice or proforma by ID
// @Tags        documents
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Document ID"
// @Success     200 {object} models.Document "Document details"
// @Failure     400 {object} ErrorResponse "Invalid document ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Document not found"
// @Router      /documents/{id} [get]
func (h *DocumentHandler) GetDocumentByID(c *gin.Context) {
	documentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	document, err := h.documentService.GetDocumentByID(documentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": document})
}

// DeleteDocument handles document deletion.
// @Summary     Delete document
// @Description Delete a document; a collected invoice is reverted first so its ledger effect is undone
// @Tags        documents
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Document ID"
// @Success     204 "Document deleted"
// @Failure     400 {object} ErrorResponse "Invalid document ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Document not found"
// @Router      /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	documentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.documentService.DeleteDocument(documentID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_DOCUMENT", "document", documentID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// ConvertProforma converts a proforma into an invoice.
// @Summary     Convert proforma to invoice
// @Description Convert a proforma into an invoice, claiming a fresh invoice number
// @Tags        documents
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Document ID"
// @Success     200 {object} models.Document "Converted invoice"
// @Failure     400 {object} ErrorResponse "Invalid document ID or not a proforma"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Document not found"
// @Router      /documents/{id}/convert [post]
func (h *DocumentHandler) ConvertProforma(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	documentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	document, err := h.documentService.ConvertProformaToInvoice(documentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CONVERT_PROFORMA", "document", documentID, c.ClientIP(),
		map[string]interface{}{"invoice_number": document.Number})

	c.JSON(http.StatusOK, gin.H{"document": document})
}

// CollectInvoice marks an owed invoice as collected.
// @Summary     Collect invoice
// @Description Mark an owed invoice as collected, writing the linked income transaction
// @Tags        documents
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Document ID"
// @Param       request body CollectInvoiceRequest true "Payment details"
// @Success     200 {object} models.Transaction "Collection transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or not an invoice"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Document or account not found"
// @Failure     409 {object} ErrorResponse "Invoice already collected"
// @Router      /documents/{id}/collect [post]
func (h *DocumentHandler) CollectInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	documentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CollectInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	details := services.PaymentDetails{
		AccountID: req.AccountID,
		Method:    req.Method,
	}
	if req.Date != nil && *req.Date != "" {
		date, err := parseDate(*req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
		details.Date = date
	}

	transaction, err := h.documentService.MarkInvoiceCollected(documentID, details)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "COLLECT_INVOICE", "document", documentID, c.ClientIP(),
		map[string]interface{}{"account_id": req.AccountID, "transaction_id": transaction.ID})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// RevertInvoice returns a collected invoice to owed.
// @Summary     Revert invoice collection
// @Description Return a collected invoice to owed, deleting the linked transaction and reverting its balance effect
// @Tags        documents
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Document ID"
// @Success     204 "Invoice reverted"
// @Failure     400 {object} ErrorResponse "Invalid document ID or not an invoice"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Document not found"
// @Failure     409 {object} ErrorResponse "Invoice not collected"
// @Router      /documents/{id}/revert [post]
func (h *DocumentHandler) RevertInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	documentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.documentService.RevertInvoiceToOwed(documentID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REVERT_INVOICE", "document", documentID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
