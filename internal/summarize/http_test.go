package summarize

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abduss/filevault/internal/auth"
	"github.com/abduss/filevault/internal/resource"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatRouter(t *testing.T, content *fakeContent) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/")
	group.Use(auth.Middleware(auth.NewUnverifiedBearer()))
	RegisterRoutes(group, NewService(content, &fakeGenerator{reply: "summary"}, 100))
	return r
}

func chatRequest(t *testing.T, body, sub string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sub != "" {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).SignedString([]byte("k"))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestChatOverHTTP(t *testing.T) {
	r := newChatRouter(t, &fakeContent{content: resource.Content{Content: "doc", FileName: "a.txt"}})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, chatRequest(t, `{"fileId":"f1"}`, "user-a"))
	require.Equal(t, http.StatusOK, rr.Code)

	var out Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "summary", out.Summary)
	assert.Equal(t, "a.txt", out.FileName)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestChatRejectsMissingFileIDAndIdentity(t *testing.T) {
	content := &fakeContent{}
	r := newChatRouter(t, content)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, chatRequest(t, `{"file_name":"a.txt"}`, "user-a"))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Missing fileId", body["error"])
	assert.Equal(t, "fileId is required", body["message"])

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, chatRequest(t, `{"fileId":"f1"}`, ""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Zero(t, content.calls)
}
