package file

import (
	"net/http"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/auth"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts file operations under the provided (authenticated)
// router group. The short paths and the REST-style aliases share handlers.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.POST("/upload", handler.createUpload)
	group.POST("/files", handler.createUpload)
	group.GET("/list", handler.listFiles)
	group.GET("/files", handler.listFiles)
	group.GET("/files/:fileID", handler.downloadFile)
	group.GET("/files/:fileID/download", handler.downloadFile)
	group.DELETE("/files/:fileID", handler.deleteFile)
}

type httpHandler struct {
	service *Service
}

type uploadRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        *int64 `json:"size"`
}

type uploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileID    string `json:"fileId"`
	S3Key     string `json:"s3Key"`
	ExpiresIn int    `json:"expiresIn"`
	Message   string `json:"message"`
}

type listResponse struct {
	Files []Record `json:"files"`
	Count int      `json:"count"`
}

type downloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
	FileID      string `json:"fileId"`
	ExpiresIn   int    `json:"expiresIn"`
}

type deleteResponse struct {
	Message string `json:"message"`
	FileID  string `json:"fileId"`
}

func (h *httpHandler) createUpload(c *gin.Context) {
	userID, ok := auth.RequireUser(c)
	if !ok {
		return
	}

	var req uploadRequest
	if err := apperr.BindJSON(c, &req); err != nil {
		apperr.Respond(c, err)
		return
	}

	ticket, err := h.service.CreateUpload(c.Request.Context(), userID, UploadRequest{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	apperr.JSON(c, http.StatusOK, uploadResponse{
		UploadURL: ticket.UploadURL,
		FileID:    ticket.Record.FileID,
		S3Key:     ticket.Record.StorageKey,
		ExpiresIn: int(ticket.ExpiresIn.Seconds()),
		Message:   "Upload URL generated successfully",
	})
}

func (h *httpHandler) listFiles(c *gin.Context) {
	userID, ok := auth.RequireUser(c)
	if !ok {
		return
	}

	files, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if files == nil {
		files = []Record{}
	}

	apperr.JSON(c, http.StatusOK, listResponse{Files: files, Count: len(files)})
}

func (h *httpHandler) downloadFile(c *gin.Context) {
	userID, ok := auth.RequireUser(c)
	if !ok {
		return
	}

	ticket, err := h.service.Download(c.Request.Context(), userID, c.Param("fileID"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	apperr.JSON(c, http.StatusOK, downloadResponse{
		DownloadURL: ticket.DownloadURL,
		FileName:    ticket.Record.FileName,
		FileID:      ticket.Record.FileID,
		ExpiresIn:   int(ticket.ExpiresIn.Seconds()),
	})
}

func (h *httpHandler) deleteFile(c *gin.Context) {
	userID, ok := auth.RequireUser(c)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), userID, c.Param("fileID"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	apperr.JSON(c, http.StatusOK, deleteResponse{
		Message: "File deleted successfully",
		FileID:  deleted.FileID,
	})
}
