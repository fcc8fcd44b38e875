package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func roleContext(t *testing.T, role interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/shows", nil)
	if role != nil {
		c.Set("user_role", role)
	}
	return c, recorder
}

func TestRequireRoles(t *testing.T) {
	t.Run("matching role passes", func(t *testing.T) {
		c, _ := roleContext(t, "organizer")
		RequireRoles("organizer", "admin")(c)
		assert.False(t, c.IsAborted())
	})

	t.Run("unlisted role forbidden", func(t *testing.T) {
		c, recorder := roleContext(t, "user")
		RequireRoles("organizer", "admin")(c)
		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("missing role claim unauthorized", func(t *testing.T) {
		c, recorder := roleContext(t, nil)
		RequireRoles("organizer", "admin")(c)
		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

// The role claim is written lowercase by JWTAuth, so every guard must
// compare against the same casing
func TestRequireAdminMatchesLowercaseRoleClaim(t *testing.T) {
	c, _ := roleContext(t, "admin")
	RequireAdmin()(c)
	assert.False(t, c.IsAborted())

	c, recorder := roleContext(t, "organizer")
	RequireAdmin()(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}
