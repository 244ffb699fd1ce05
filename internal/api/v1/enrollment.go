package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gudcity/loyalty/internal/api/dto"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/service"
)

type EnrollmentHandler struct {
	enrollmentService service.EnrollmentService
	logger            *logger.Logger
}

func NewEnrollmentHandler(enrollmentService service.EnrollmentService, logger *logger.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
		logger:            logger,
	}
}

// @Summary Enroll a customer in a program
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param enrollment body dto.EnrollRequest true "Enrollment request"
// @Success 201 {object} dto.EnrollmentResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.enrollmentService.Enroll(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Summary Cancel an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param enrollment body dto.CancelEnrollmentRequest true "Cancellation request"
// @Success 204
// @Router /enrollments/cancel [post]
func (h *EnrollmentHandler) Cancel(c *gin.Context) {
	var req dto.CancelEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.enrollmentService.Cancel(c.Request.Context(), &req); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List a customer's programs
// @Description Lists the customer's enrollments joined with their programs and balances
// @Tags Enrollments
// @Produce json
// @Param customer_id path string true "Customer ID"
// @Success 200 {array} dto.CustomerProgramResponse
// @Router /customers/{customer_id}/programs [get]
func (h *EnrollmentHandler) ListProgramsFor(c *gin.Context) {
	customerID := c.Param("customer_id")
	if customerID == "" {
		c.Error(ierr.NewError("customer ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.enrollmentService.ListProgramsFor(c.Request.Context(), customerID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
