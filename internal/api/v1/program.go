package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gudcity/loyalty/internal/api/dto"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/service"
)

type ProgramHandler struct {
	programService service.ProgramService
	logger         *logger.Logger
}

func NewProgramHandler(programService service.ProgramService, logger *logger.Logger) *ProgramHandler {
	return &ProgramHandler{
		programService: programService,
		logger:         logger,
	}
}

// @Summary Create a new loyalty program
// @Description Creates a new loyalty program owned by a business
// @Tags Programs
// @Accept json
// @Produce json
// @Param program body dto.CreateProgramRequest true "Program request"
// @Success 201 {object} dto.ProgramResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /programs [post]
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req dto.CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.programService.CreateProgram(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Summary Get a program by ID
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} dto.ProgramResponse
// @Router /programs/{id} [get]
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("program ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.programService.GetProgram(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List a business's programs
// @Tags Programs
// @Produce json
// @Param business_id query string true "Business ID"
// @Success 200 {array} dto.ProgramResponse
// @Router /programs [get]
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	businessID := c.Query("business_id")
	if businessID == "" {
		c.Error(ierr.NewError("business_id is required").
			WithHint("A business ID query parameter must be provided").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.programService.ListPrograms(c.Request.Context(), businessID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Update a program
// @Tags Programs
// @Accept json
// @Produce json
// @Param id path string true "Program ID"
// @Param program body dto.UpdateProgramRequest true "Update request"
// @Success 200 {object} dto.ProgramResponse
// @Router /programs/{id} [put]
func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.programService.UpdateProgram(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Delete a program
// @Description Soft deletes a program and cancels all its enrollments
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 204
// @Router /programs/{id} [delete]
func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	id := c.Param("id")

	if err := h.programService.DeleteProgram(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Add a reward tier to a program
// @Tags Programs
// @Accept json
// @Produce json
// @Param id path string true "Program ID"
// @Param tier body dto.CreateTierRequest true "Tier request"
// @Success 201 {object} program.RewardTier
// @Router /programs/{id}/tiers [post]
func (h *ProgramHandler) AddRewardTier(c *gin.Context) {
	id := c.Param("id")

	var req dto.CreateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	tier, err := h.programService.AddRewardTier(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, tier)
}

// @Summary Update a reward tier
// @Tags Programs
// @Accept json
// @Produce json
// @Param tier_id path string true "Tier ID"
// @Param tier body dto.UpdateTierRequest true "Update request"
// @Success 200 {object} program.RewardTier
// @Router /tiers/{tier_id} [put]
func (h *ProgramHandler) UpdateRewardTier(c *gin.Context) {
	tierID := c.Param("tier_id")

	var req dto.UpdateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	tier, err := h.programService.UpdateRewardTier(c.Request.Context(), tierID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, tier)
}

// @Summary Remove a reward tier
// @Tags Programs
// @Param tier_id path string true "Tier ID"
// @Success 204
// @Router /tiers/{tier_id} [delete]
func (h *ProgramHandler) RemoveRewardTier(c *gin.Context) {
	tierID := c.Param("tier_id")

	if err := h.programService.RemoveRewardTier(c.Request.Context(), tierID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
