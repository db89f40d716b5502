package summarize

import (
	"net/http"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/auth"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts POST /chat under an authenticated group.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	group.POST("/chat", func(c *gin.Context) {
		userID, ok := auth.RequireUser(c)
		if !ok {
			return
		}

		var req Request
		if err := apperr.BindJSON(c, &req); err != nil {
			apperr.Respond(c, err)
			return
		}

		summary, err := service.Summarize(c.Request.Context(), userID, req)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		apperr.JSON(c, http.StatusOK, summary)
	})
}
