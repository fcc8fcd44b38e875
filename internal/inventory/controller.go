package inventory

import (
	"net/http"
	"time"

	"stagepass/internal/pricing"
	"stagepass/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	GetSeatMap(c *gin.Context)
	GenerateSeatMap(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetSeatMap(c *gin.Context) {
	showID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid show ID", nil, nil)
		return
	}

	currency := pricing.CurrencyUSD
	if raw := c.Query("currency"); raw != "" {
		currency = pricing.Currency(raw)
	}

	seatMap, err := ctrl.service.GetSeatMap(c.Request.Context(), showID, currency, time.Now())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Seat map fetched successfully", seatMap)
}

func (ctrl *controller) GenerateSeatMap(c *gin.Context) {
	showID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid show ID", nil, nil)
		return
	}

	result, err := ctrl.service.EnsureSeatMap(c.Request.Context(), showID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Seat map generation finished", result)
}
