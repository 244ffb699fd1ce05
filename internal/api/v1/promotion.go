package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gudcity/loyalty/internal/api/dto"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/service"
)

type PromotionHandler struct {
	promotionService  service.PromotionService
	redemptionService service.RedemptionService
	logger            *logger.Logger
}

func NewPromotionHandler(
	promotionService service.PromotionService,
	redemptionService service.RedemptionService,
	logger *logger.Logger,
) *PromotionHandler {
	return &PromotionHandler{
		promotionService:  promotionService,
		redemptionService: redemptionService,
		logger:            logger,
	}
}

// @Summary Create a promo code
// @Tags Promotions
// @Accept json
// @Produce json
// @Param promo body dto.CreatePromoCodeRequest true "Promo code request"
// @Success 201 {object} dto.PromoCodeResponse
// @Router /promotions [post]
func (h *PromotionHandler) CreatePromoCode(c *gin.Context) {
	var req dto.CreatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.promotionService.CreatePromoCode(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Summary Get a promo code by ID
// @Tags Promotions
// @Produce json
// @Param id path string true "Promo code ID"
// @Success 200 {object} dto.PromoCodeResponse
// @Router /promotions/{id} [get]
func (h *PromotionHandler) GetPromoCode(c *gin.Context) {
	id := c.Param("id")

	response, err := h.promotionService.GetPromoCode(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List a business's promo codes
// @Tags Promotions
// @Produce json
// @Param business_id query string true "Business ID"
// @Success 200 {array} dto.PromoCodeResponse
// @Router /promotions [get]
func (h *PromotionHandler) ListPromoCodes(c *gin.Context) {
	businessID := c.Query("business_id")
	if businessID == "" {
		c.Error(ierr.NewError("business_id is required").
			WithHint("A business ID query parameter must be provided").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.promotionService.ListPromoCodes(c.Request.Context(), businessID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Delete a promo code
// @Tags Promotions
// @Param id path string true "Promo code ID"
// @Success 204
// @Router /promotions/{id} [delete]
func (h *PromotionHandler) DeletePromoCode(c *gin.Context) {
	id := c.Param("id")

	if err := h.promotionService.DeletePromoCode(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Redeem a promo code
// @Description Consumes a single-use promo code on behalf of a customer
// @Tags Promotions
// @Accept json
// @Produce json
// @Param redemption body dto.RedeemCodeRequest true "Redemption request"
// @Success 200 {object} dto.RedemptionResult
// @Failure 409 {object} middleware.ErrorResponse
// @Router /promotions/redeem [post]
func (h *PromotionHandler) RedeemCode(c *gin.Context) {
	var req dto.RedeemCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.redemptionService.RedeemCode(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Redeem a reward tier
// @Description Exchanges points for a program's reward tier
// @Tags Promotions
// @Accept json
// @Produce json
// @Param redemption body dto.RedeemRewardRequest true "Reward redemption request"
// @Success 200 {object} dto.BalanceResponse
// @Router /rewards/redeem [post]
func (h *PromotionHandler) RedeemReward(c *gin.Context) {
	var req dto.RedeemRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.redemptionService.RedeemReward(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Expire due promo codes for a business
// @Tags Promotions
// @Produce json
// @Param business_id query string true "Business ID"
// @Success 200 {object} map[string]int
// @Router /promotions/expire [post]
func (h *PromotionHandler) ExpirePromoCodes(c *gin.Context) {
	businessID := c.Query("business_id")
	if businessID == "" {
		c.Error(ierr.NewError("business_id is required").
			WithHint("A business ID query parameter must be provided").
			Mark(ierr.ErrValidation))
		return
	}

	count, err := h.promotionService.ExpirePromoCodes(c.Request.Context(), businessID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expired_codes": count})
}
