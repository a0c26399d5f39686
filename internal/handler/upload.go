package handler

import (
	"net/http"
	"time"

	"github.com/northwind/salesportal/internal/metrics"
	"github.com/northwind/salesportal/internal/render"
	"github.com/northwind/salesportal/internal/service"
)

type uploadHandler struct {
	contentService *service.ContentService
}

func NewUploadHandler(contentService *service.ContentService) *uploadHandler {
	return &uploadHandler{
		contentService: contentService,
	}
}

type uploadRequest struct {
	ContentID string `json:"contentId"`
	FileName  string `json:"fileName"`
	FileType  string `json:"fileType"`
	FileSize  *int64 `json:"fileSize"`
}

type uploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
	FileKey   string    `json:"fileKey"`
}

// Issue signs an upload URL for an existing record. Unlike the content
// handler's getUploadUrl the size is mandatory, so the ceiling is always
// enforced before anything is signed.
func (h *uploadHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.FileSize == nil {
		writeError(w, r, badRequest("fileSize is required"))
		return
	}

	ticket, err := h.contentService.IssueUploadURL(r.Context(), service.UploadURLInput{
		ContentID: req.ContentID,
		FileName:  req.FileName,
		FileType:  req.FileType,
		FileSize:  req.FileSize,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.UploadURLsIssued.WithLabelValues("upload").Inc()
	render.JSON(w, http.StatusOK, uploadResponse{
		UploadURL: ticket.URL,
		ExpiresAt: ticket.ExpiresAt,
		FileKey:   ticket.FileKey,
	})
}
