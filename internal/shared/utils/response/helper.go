package response

import (
	"net/http"

	"stagepass/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, Envelope{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError translates an error into the standard envelope using its
// apperror kind for the status code and kind string.
func RespondError(c *gin.Context, err error) {
	code := apperror.HTTPStatus(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		// Don't leak internals to the caller
		message = "internal error"
	}
	RespondJSON(c, "error", code, message, nil, gin.H{
		"kind": apperror.KindOf(err).String(),
	})
}

// RespondSuccess is a shorthand for success envelopes
func RespondSuccess(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, "success", code, message, data, nil)
}
