package resource

import (
	"net/http"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/auth"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts POST /mcp under an authenticated group. The caller's
// identity always wins over any userId in the body.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	group.POST("/mcp", func(c *gin.Context) {
		userID, ok := auth.RequireUser(c)
		if !ok {
			return
		}

		var req Request
		if err := apperr.BindJSON(c, &req); err != nil {
			apperr.Respond(c, err)
			return
		}

		result, err := service.Handle(c.Request.Context(), userID, req)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		apperr.JSON(c, http.StatusOK, result)
	})
}
