package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gudcity/loyalty/internal/api/dto"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/service"
	"github.com/gudcity/loyalty/internal/types"
)

type LedgerHandler struct {
	ledgerService service.LedgerService
	logger        *logger.Logger
}

func NewLedgerHandler(ledgerService service.LedgerService, logger *logger.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// @Summary Award points to a customer
// @Tags Ledger
// @Accept json
// @Produce json
// @Param award body dto.AwardPointsRequest true "Award request"
// @Success 200 {object} dto.BalanceResponse
// @Router /points/award [post]
func (h *LedgerHandler) Award(c *gin.Context) {
	var req dto.AwardPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.ledgerService.Award(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Apply a signed adjustment to a customer's balance
// @Tags Ledger
// @Accept json
// @Produce json
// @Param adjustment body dto.AdjustPointsRequest true "Adjustment request"
// @Success 200 {object} dto.BalanceResponse
// @Router /points/adjust [post]
func (h *LedgerHandler) Adjust(c *gin.Context) {
	var req dto.AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.ledgerService.Adjust(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Get a customer's balance in a program
// @Tags Ledger
// @Produce json
// @Param customer_id path string true "Customer ID"
// @Param program_id path string true "Program ID"
// @Success 200 {object} dto.BalanceResponse
// @Router /customers/{customer_id}/programs/{program_id}/balance [get]
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	customerID := c.Param("customer_id")
	programID := c.Param("program_id")

	response, err := h.ledgerService.CurrentBalance(c.Request.Context(), customerID, programID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List a customer's ledger entries in a program
// @Tags Ledger
// @Produce json
// @Param customer_id path string true "Customer ID"
// @Param program_id path string true "Program ID"
// @Param source query string false "Filter by entry source"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.ListLedgerEntriesResponse
// @Router /customers/{customer_id}/programs/{program_id}/ledger [get]
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	filter := &types.LedgerEntryFilter{
		CustomerID: c.Param("customer_id"),
		ProgramID:  c.Param("program_id"),
		Source:     types.LedgerSource(c.Query("source")),
	}

	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			c.Error(ierr.WithError(err).
				WithHint("limit must be a number").
				Mark(ierr.ErrValidation))
			return
		}
		filter.Limit = n
	}
	if offset := c.Query("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil {
			c.Error(ierr.WithError(err).
				WithHint("offset must be a number").
				Mark(ierr.ErrValidation))
			return
		}
		filter.Offset = n
	}

	response, err := h.ledgerService.ListEntries(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Expire due points for a program
// @Description Sweeps awards past their expiry, writing expiration entries
// @Tags Ledger
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} map[string]int64
// @Router /programs/{id}/expire-points [post]
func (h *LedgerHandler) ExpireDuePoints(c *gin.Context) {
	programID := c.Param("id")

	total, err := h.ledgerService.ExpireDuePoints(c.Request.Context(), programID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expired_points": total})
}
