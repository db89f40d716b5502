package file

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abduss/filevault/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _, _ := newTestService(t)

	r := gin.New()
	group := r.Group("/")
	group.Use(auth.Middleware(auth.NewUnverifiedBearer()))
	RegisterRoutes(group, svc)
	return r, svc
}

func bearerFor(t *testing.T, sub string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestUploadHandlerRequiresFileName(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"contentType":"text/plain"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, "user-a"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Missing fileName", body["error"])
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestUploadListDeleteOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	authz := bearerFor(t, "user-a")

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"fileName":"a.txt"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authz)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var uploaded uploadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &uploaded))
	require.NotEmpty(t, uploaded.FileID)
	assert.NotEmpty(t, uploaded.UploadURL)

	req = httptest.NewRequest(http.MethodGet, "/list", nil)
	req.Header.Set("Authorization", authz)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var listed listResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Count)

	req = httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set("Authorization", bearerFor(t, "user-b"))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"files":[],"count":0}`, rr.Body.String())

	req = httptest.NewRequest(http.MethodDelete, "/files/"+uploaded.FileID, nil)
	req.Header.Set("Authorization", bearerFor(t, "user-b"))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req = httptest.NewRequest(http.MethodDelete, "/files/"+uploaded.FileID, nil)
	req.Header.Set("Authorization", authz)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"File deleted successfully","fileId":"`+uploaded.FileID+`"}`, rr.Body.String())
}

func TestHandlersRejectAnonymousCallers(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, target := range []string{"/list", "/files/abc/download"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, target)
	}
}
