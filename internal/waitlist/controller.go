package waitlist

import (
	"net/http"

	"stagepass/internal/shared/apperror"
	"stagepass/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	Join(c *gin.Context)
	Status(c *gin.Context)
	Notify(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) Join(c *gin.Context) {
	userID, email, err := userFromContext(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	entry, err := ctrl.service.Join(c.Request.Context(), userID, email, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusCreated, "Joined waitlist successfully", entry)
}

func (ctrl *controller) Status(c *gin.Context) {
	userID, _, err := userFromContext(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	var query StatusQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	showID, _ := uuid.Parse(query.ShowID)
	tierID, _ := uuid.Parse(query.TierID)

	entry, err := ctrl.service.Status(c.Request.Context(), userID, showID, tierID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Waitlist status fetched successfully", entry)
}

func (ctrl *controller) Notify(c *gin.Context) {
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	notified, err := ctrl.service.NotifyFreed(c.Request.Context(), req.ShowID, req.TierID, req.Quantity)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Waitlist notified successfully", NotifyResponse{
		NotifiedCount: notified,
	})
}

// userFromContext pulls the authenticated user's ID and email set by the
// JWT middleware
func userFromContext(c *gin.Context) (uuid.UUID, string, error) {
	raw, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, "", apperror.New(apperror.KindInvalidArgument, "user not authenticated")
	}
	idStr, ok := raw.(string)
	if !ok {
		return uuid.Nil, "", apperror.New(apperror.KindInvalidArgument, "invalid user ID in token")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, "", apperror.New(apperror.KindInvalidArgument, "invalid user ID format")
	}

	email := ""
	if rawEmail, exists := c.Get("user_email"); exists {
		if emailStr, ok := rawEmail.(string); ok {
			email = emailStr
		}
	}

	return id, email, nil
}
