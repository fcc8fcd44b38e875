package shows

import (
	"net/http"

	"stagepass/internal/shared/apperror"
	"stagepass/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreateShow(c *gin.Context)
	GetShow(c *gin.Context)
	ListShows(c *gin.Context)
	PublishShow(c *gin.Context)
	CancelShow(c *gin.Context)
	CompleteShow(c *gin.Context)
	AddTier(c *gin.Context)
	AddPhase(c *gin.Context)
	GetPhases(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateShow(c *gin.Context) {
	var req CreateShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	organizerID, err := userIDFromContext(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	show, err := ctrl.service.CreateShow(c.Request.Context(), organizerID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusCreated, "Show created successfully", show)
}

func (ctrl *controller) GetShow(c *gin.Context) {
	showID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid show ID", nil, nil)
		return
	}

	show, err := ctrl.service.GetShow(c.Request.Context(), showID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Show fetched successfully", show)
}

func (ctrl *controller) ListShows(c *gin.Context) {
	var query ShowListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := ctrl.service.ListShows(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Shows fetched successfully", result)
}

func (ctrl *controller) PublishShow(c *gin.Context) {
	showID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid show ID", nil, nil)
		return
	}

	show, err := ctrl.service.PublishShow(c.Request.Context(), showID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Show published successfully", show)
}

func (ctrl *controller) CancelShow(c *gin.Context) {
	showID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid show ID", nil, nil)
		return
	}

	show, err := ctrl.service.CancelShow(c.Request.Context(), showID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Show cancelled successfully", show)
}

func (ctrl *controller) CompleteShow(c *gin.Context) {
	showID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid show ID", nil, nil)
		return
	}

	show, err := ctrl.service.CompleteShow(c.Request.Context(), showID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Show completed successfully", show)
}

func (ctrl *controller) AddTier(c *gin.Context) {
	showID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid show ID", nil, nil)
		return
	}

	var req CreateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	tier, err := ctrl.service.AddTier(c.Request.Context(), showID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusCreated, "Tier created successfully", tier)
}

func (ctrl *controller) AddPhase(c *gin.Context) {
	showID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid show ID", nil, nil)
		return
	}

	var req CreatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	phase, err := ctrl.service.AddPhase(c.Request.Context(), showID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusCreated, "Pricing phase created successfully", phase)
}

// userIDFromContext pulls the authenticated user ID set by the JWT middleware
func userIDFromContext(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.New(apperror.KindInvalidArgument, "user not authenticated")
	}
	idStr, ok := raw.(string)
	if !ok {
		return uuid.Nil, apperror.New(apperror.KindInvalidArgument, "invalid user ID in token")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, apperror.New(apperror.KindInvalidArgument, "invalid user ID format")
	}
	return id, nil
}

func (ctrl *controller) GetPhases(c *gin.Context) {
	showID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid show ID", nil, nil)
		return
	}

	phases, err := ctrl.service.GetPhases(c.Request.Context(), showID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Pricing phases fetched successfully", phases)
}
