package share

import (
	"net/http"
	"time"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// Handler serves share issuance (authenticated) and resolution (public).
type Handler struct {
	issuer   *Issuer
	resolver *Resolver
}

// NewHandler constructs the share HTTP handler.
func NewHandler(issuer *Issuer, resolver *Resolver) *Handler {
	return &Handler{issuer: issuer, resolver: resolver}
}

// RegisterRoutes mounts share issuance under an authenticated group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/files/:fileID/share", h.issue)
	group.POST("/share", h.issue)
}

// RegisterPublicRoutes mounts token resolution. No identity is required.
func (h *Handler) RegisterPublicRoutes(group *gin.RouterGroup) {
	group.GET("/shared/:token", h.resolve)
	group.GET("/shared/:token/qr", h.qr)
}

type issueRequest struct {
	FileID          string `json:"fileId"`
	ExpirationHours any    `json:"expirationHours"`
}

type issueResponse struct {
	ShareURL        string `json:"shareUrl"`
	ShareToken      string `json:"shareToken"`
	ExpiresAt       string `json:"expiresAt"`
	ExpirationHours int    `json:"expirationHours"`
	Message         string `json:"message"`
}

type resolveResponse struct {
	FileName    string `json:"fileName"`
	DownloadURL string `json:"downloadUrl"`
	ExpiresAt   int64  `json:"expiresAt"`
}

func (h *Handler) issue(c *gin.Context) {
	userID, ok := auth.RequireUser(c)
	if !ok {
		return
	}

	var req issueRequest
	if err := apperr.BindJSON(c, &req); err != nil {
		apperr.Respond(c, err)
		return
	}
	fileID := c.Param("fileID")
	if fileID == "" {
		fileID = req.FileID
	}

	link, err := h.issuer.Issue(c.Request.Context(), userID, fileID, req.ExpirationHours)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	apperr.JSON(c, http.StatusOK, issueResponse{
		ShareURL:        link.URL,
		ShareToken:      link.Token,
		ExpiresAt:       link.ExpiresAt.UTC().Format(time.RFC3339),
		ExpirationHours: link.Hours,
		Message:         "Share link created successfully",
	})
}

func (h *Handler) resolve(c *gin.Context) {
	res, err := h.resolver.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	apperr.JSON(c, http.StatusOK, resolveResponse{
		FileName:    res.FileName,
		DownloadURL: res.DownloadURL,
		ExpiresAt:   res.ExpiresAt,
	})
}

func (h *Handler) qr(c *gin.Context) {
	rec, err := h.resolver.Lookup(c.Request.Context(), c.Param("token"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	png, err := qrcode.Encode(h.issuer.URLFor(rec.Token), qrcode.Medium, qrSize)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to render QR code", err))
		return
	}

	c.Header(apperr.AllowOriginHeader, "*")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
