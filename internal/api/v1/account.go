package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gudcity/loyalty/internal/api/dto"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/service"
)

type AccountHandler struct {
	accountService service.AccountService
	staffService   service.StaffService
	logger         *logger.Logger
}

func NewAccountHandler(
	accountService service.AccountService,
	staffService service.StaffService,
	logger *logger.Logger,
) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		staffService:   staffService,
		logger:         logger,
	}
}

// @Summary Create an account
// @Description Creates a customer or business account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param account body dto.CreateAccountRequest true "Account request"
// @Success 201 {object} dto.AccountResponse
// @Router /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.accountService.CreateAccount(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Summary Get an account by ID
// @Tags Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Router /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	id := c.Param("id")

	response, err := h.accountService.GetAccount(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Create a staff account
// @Tags Staff
// @Accept json
// @Produce json
// @Param staff body dto.CreateStaffRequest true "Staff request"
// @Success 201 {object} dto.AccountResponse
// @Router /staff [post]
func (h *AccountHandler) CreateStaff(c *gin.Context) {
	var req dto.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.staffService.CreateStaff(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Summary List a business's staff
// @Tags Staff
// @Produce json
// @Param business_id query string true "Business ID"
// @Success 200 {array} dto.AccountResponse
// @Router /staff [get]
func (h *AccountHandler) ListStaff(c *gin.Context) {
	businessID := c.Query("business_id")
	if businessID == "" {
		c.Error(ierr.NewError("business_id is required").
			WithHint("A business ID query parameter must be provided").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.staffService.ListStaff(c.Request.Context(), businessID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Update a staff member's permissions
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "Staff account ID"
// @Param permissions body dto.UpdateStaffPermissionsRequest true "Permissions request"
// @Success 200 {object} dto.AccountResponse
// @Router /staff/{id}/permissions [put]
func (h *AccountHandler) UpdateStaffPermissions(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateStaffPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.staffService.UpdateStaffPermissions(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Revoke a staff account
// @Tags Staff
// @Param id path string true "Staff account ID"
// @Success 204
// @Router /staff/{id} [delete]
func (h *AccountHandler) RevokeStaff(c *gin.Context) {
	id := c.Param("id")

	if err := h.staffService.RevokeStaff(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
