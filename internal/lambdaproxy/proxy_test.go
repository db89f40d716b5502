package lambdaproxy

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/abduss/filevault/internal/auth"
	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEchoRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	protected := r.Group("/")
	protected.Use(auth.Middleware(auth.UpstreamClaims{}))
	protected.POST("/echo", func(c *gin.Context) {
		id, _ := auth.CurrentIdentity(c)
		body, _ := io.ReadAll(c.Request.Body)
		c.JSON(http.StatusCreated, gin.H{
			"sub":   id.Subject,
			"body":  string(body),
			"q":     c.Query("q"),
			"trace": c.GetHeader("X-Trace"),
			"ip":    c.ClientIP(),
		})
	})
	r.GET("/png", func(c *gin.Context) {
		c.Data(http.StatusOK, "image/png", []byte{0x89, 'P', 'N', 'G', 0xff})
	})
	return r
}

func TestProxyForwardsAuthorizerSubject(t *testing.T) {
	adapter := New(newEchoRouter())

	resp, err := adapter.Proxy(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodPost,
		Path:                  "/echo",
		Headers:               map[string]string{"Content-Type": "application/json", "X-Trace": "abc"},
		QueryStringParameters: map[string]string{"q": "search term"},
		Body:                  base64.StdEncoding.EncodeToString([]byte(`{"a":1}`)),
		IsBase64Encoded:       true,
		RequestContext: events.APIGatewayProxyRequestContext{
			Authorizer: map[string]any{"claims": map[string]any{"sub": "user-a"}},
			Identity:   events.APIGatewayRequestIdentity{SourceIP: "203.0.113.9"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.False(t, resp.IsBase64Encoded)

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	assert.Equal(t, "user-a", out["sub"])
	assert.Equal(t, `{"a":1}`, out["body"])
	assert.Equal(t, "search term", out["q"])
	assert.Equal(t, "abc", out["trace"])
	assert.Equal(t, "203.0.113.9", out["ip"])
}

func TestProxyWithoutClaimsIsUnauthorized(t *testing.T) {
	adapter := New(newEchoRouter())

	resp, err := adapter.Proxy(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Path: "/echo"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
}

func TestProxyEncodesBinaryBodies(t *testing.T) {
	adapter := New(newEchoRouter())

	resp, err := adapter.Proxy(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/png"})
	require.NoError(t, err)
	require.True(t, resp.IsBase64Encoded)
	data, err := base64.StdEncoding.DecodeString(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', 0xff}, data)
	assert.Equal(t, "image/png", resp.Headers["Content-Type"])
}

func TestSubjectFromEvent(t *testing.T) {
	assert.Equal(t, "", SubjectFromEvent(events.APIGatewayProxyRequest{}))
	assert.Equal(t, "", SubjectFromEvent(events.APIGatewayProxyRequest{
		RequestContext: events.APIGatewayProxyRequestContext{Authorizer: map[string]any{"claims": "oops"}},
	}))
	assert.Equal(t, " user-a", SubjectFromEvent(events.APIGatewayProxyRequest{
		RequestContext: events.APIGatewayProxyRequestContext{Authorizer: map[string]any{"claims": map[string]any{"sub": " user-a"}}},
	}))
}
