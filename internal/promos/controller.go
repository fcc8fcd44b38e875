package promos

import (
	"net/http"
	"time"

	"stagepass/internal/pricing"
	"stagepass/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Deactivate(c *gin.Context)
	Validate(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) Create(c *gin.Context) {
	var req CreatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	promo, err := ctrl.service.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusCreated, "Promo code created successfully", promo)
}

func (ctrl *controller) List(c *gin.Context) {
	codes, err := ctrl.service.List(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Promo codes fetched successfully", codes)
}

func (ctrl *controller) Deactivate(c *gin.Context) {
	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid promo code ID", nil, nil)
		return
	}

	if err := ctrl.service.Deactivate(c.Request.Context(), promoID); err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Promo code deactivated successfully", nil)
}

func (ctrl *controller) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := ctrl.service.Validate(c.Request.Context(), ValidateInput{
		Code:        req.Code,
		ShowID:      req.ShowID,
		TierIDs:     req.TierIDs,
		TicketCount: req.TicketCount,
		OrderAmount: req.OrderAmount,
		Currency:    pricing.Currency(req.Currency),
		Now:         time.Now(),
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Promo code validated", result)
}
