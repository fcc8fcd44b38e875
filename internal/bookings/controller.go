package bookings

import (
	"net/http"

	"stagepass/internal/shared/apperror"
	"stagepass/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreateBooking(c *gin.Context)
	CompleteBooking(c *gin.Context)
	GetBooking(c *gin.Context)
	ListMyBookings(c *gin.Context)
	CancelBooking(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateBooking(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := ctrl.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusCreated, "Booking created successfully", booking)
}

func (ctrl *controller) CompleteBooking(c *gin.Context) {
	var req CompleteBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := ctrl.service.CompleteBooking(c.Request.Context(), req.SessionID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Booking completed successfully", result)
}

func (ctrl *controller) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	userID, err := userIDFromContext(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	booking, err := ctrl.service.GetBooking(c.Request.Context(), bookingID, userID, isAdmin(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Booking fetched successfully", booking)
}

func (ctrl *controller) ListMyBookings(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	bookingList, err := ctrl.service.ListUserBookings(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Bookings fetched successfully", bookingList)
}

func (ctrl *controller) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	userID, err := userIDFromContext(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	booking, err := ctrl.service.CancelBooking(c.Request.Context(), bookingID, userID, isAdmin(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Booking cancelled successfully", booking)
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

func isAdmin(c *gin.Context) bool {
	role, exists := c.Get("user_role")
	if !exists {
		return false
	}
	roleStr, ok := role.(string)
	return ok && roleStr == "admin"
}
