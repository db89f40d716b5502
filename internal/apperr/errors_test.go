package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errThingMissing = NotFound("thing not found")

func TestDerivedErrorsMatchSentinel(t *testing.T) {
	detailed := errThingMissing.WithDetail("thing %s", "42")
	wrapped := fmt.Errorf("lookup: %w", detailed)

	assert.True(t, errors.Is(wrapped, errThingMissing))
	assert.True(t, errors.Is(errThingMissing.Wrap(errors.New("io")), errThingMissing))
	assert.False(t, errors.Is(wrapped, NotFound("thing not found")))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Unauthorized("who"), http.StatusUnauthorized},
		{NotFound("gone"), http.StatusNotFound},
		{Forbidden("mine"), http.StatusForbidden},
		{Internal("boom", nil), http.StatusInternalServerError},
		{Upstream("fetch failed", 0, nil), http.StatusInternalServerError},
		{Upstream("fetch failed", http.StatusForbidden, nil), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
		})
	}
}

func TestRespondShapesJSONWithCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/classified", func(c *gin.Context) {
		Respond(c, errThingMissing.WithDetail("no thing with id 7"))
	})
	r.GET("/unclassified", func(c *gin.Context) {
		Respond(c, errors.New("db password is hunter2"))
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/classified", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "*", rr.Header().Get(AllowOriginHeader))
	var body Body
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "thing not found", body.Error)
	assert.Equal(t, "no thing with id 7", body.Message)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/unclassified", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "hunter2")
	assert.Equal(t, "*", rr.Header().Get(AllowOriginHeader))
}
