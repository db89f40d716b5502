package apperr

import (
	"errors"
	"io"
	"net/http"

	"github.com/abduss/filevault/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AllowOriginHeader is set on every response so browsers can call the API cross-origin.
const AllowOriginHeader = "Access-Control-Allow-Origin"

// Body is the JSON shape of every error response.
type Body struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// JSON writes a JSON response with the CORS origin header.
func JSON(c *gin.Context, status int, body any) {
	c.Header(AllowOriginHeader, "*")
	c.JSON(status, body)
}

// Render maps err to a status and body without touching a transport.
// Unclassified errors become a generic 500 that leaks nothing.
func Render(err error) (int, Body) {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError, Body{Error: "Internal server error"}
	}
	return e.Status(), Body{Error: e.Reason, Message: e.Detail}
}

// Respond renders err according to its kind. Server-side failures are logged
// with their cause; the cause never reaches the client.
func Respond(c *gin.Context, err error) {
	status, body := Render(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.String("kind", KindOf(err).String()),
			zap.Int("status", status),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	JSON(c, status, body)
}

// Abort renders err and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Respond(c, err)
	c.Abort()
}

// ErrInvalidBody is returned by BindJSON for a body that is not valid JSON.
var ErrInvalidBody = Validation("Invalid request body")

// BindJSON decodes an optional JSON body into dst. An empty body leaves dst
// untouched.
func BindJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return ErrInvalidBody.WithDetail("%s", err.Error())
	}
	return nil
}
