package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cuentas/internal/errors"
	"cuentas/internal/services"
)

// SettingsHandler handles application settings requests.
type SettingsHandler struct {
	settingsService services.SettingsServicer
	auditService    services.AuditServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService services.SettingsServicer, auditService services.AuditServicer) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, auditService: auditService}
}

// UpdateSettingsRequest represents the request payload for updating settings.
type UpdateSettingsRequest struct {
	IncomeCategories     *[]string `json:"income_categories"`
	ExpenseCategories    *[]string `json:"expense_categories"`
	DefaultTaxRateBps    *int64    `json:"default_tax_rate_bps" binding:"omitempty,gte=0,lte=10000"`
	FiscalYearStartMonth *int      `json:"fiscal_year_start_month" binding:"omitempty,gte=1,lte=12"`
}

// GetSettings returns the application settings
// @Summary     Get settings
// @Description Get the category vocabularies, numbering counters, and fiscal parameters
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Settings "Application settings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings updates the application settings
// @Summary     Update settings
// @Description Update category vocabularies and fiscal parameters
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateSettingsRequest true "Updated settings"
// @Success     200 {object} models.Settings "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	settings, err := h.settingsService.Update(services.SettingsUpdateFields{
		IncomeCategories:     req.IncomeCategories,
		ExpenseCategories:    req.ExpenseCategories,
		DefaultTaxRateBps:    req.DefaultTaxRateBps,
		FiscalYearStartMonth: req.FiscalYearStartMonth,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_SETTINGS", "settings", settings.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
