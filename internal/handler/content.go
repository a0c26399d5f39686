package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/northwind/salesportal/internal/ctxkeys"
	"github.com/northwind/salesportal/internal/metrics"
	"github.com/northwind/salesportal/internal/model"
	"github.com/northwind/salesportal/internal/render"
	"github.com/northwind/salesportal/internal/service"
)

const (
	actionList          = "list"
	actionGet           = "get"
	actionCreate        = "create"
	actionUpdate        = "update"
	actionDelete        = "delete"
	actionGetUploadURL  = "getUploadUrl"
	actionConfirmUpload = "confirmUpload"
)

type contentHandler struct {
	contentService *service.ContentService
}

func NewContentHandler(contentService *service.ContentService) *contentHandler {
	return &contentHandler{
		contentService: contentService,
	}
}

// contentRequest is the union of every action's fields. GET requests fill it
// from the query string, POST requests from the JSON body.
type contentRequest struct {
	Action      string   `json:"action"`
	ID          string   `json:"id"`
	ContentID   string   `json:"contentId"`
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	FileName    *string  `json:"fileName"`
	FileType    *string  `json:"fileType"`
	FileSize    *int64   `json:"fileSize"`
	Version     *int64   `json:"version"`
	Limit       int      `json:"-"`
}

type listResponse struct {
	Items []*model.Content `json:"items"`
}

type getResponse struct {
	Item        *model.Content `json:"item"`
	DownloadURL *string        `json:"downloadUrl"`
}

type createResponse struct {
	Item      *model.Content `json:"item"`
	UploadURL *string        `json:"uploadUrl"`
}

type itemResponse struct {
	Item *model.Content `json:"item"`
}

type uploadURLResponse struct {
	UploadURL string    `json:"uploadUrl"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type contentAction func(r *http.Request, req *contentRequest) (any, error)

// Handle serves every content action on a single route. The principal is
// already verified; writes additionally need the admin role.
func (h *contentHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	var err error
	if r.Method == http.MethodGet {
		err = parseContentQuery(r, &req)
	} else {
		err = decodeJSON(w, r, &req)
	}
	if err != nil {
		status := writeError(w, r, err)
		metrics.ContentOperations.WithLabelValues("invalid", metrics.Outcome(status)).Inc()
		return
	}

	action, write, ok := h.route(r.Method, req.Action)
	if !ok {
		status := writeError(w, r, badRequest("invalid action"))
		metrics.ContentOperations.WithLabelValues("invalid", metrics.Outcome(status)).Inc()
		return
	}

	if write && !ctxkeys.Principal(r.Context()).IsAdmin() {
		status := writeError(w, r, service.ErrForbidden)
		metrics.ContentOperations.WithLabelValues(req.Action, metrics.Outcome(status)).Inc()
		return
	}

	body, err := action(r, &req)
	if err != nil {
		status := writeError(w, r, err)
		metrics.ContentOperations.WithLabelValues(req.Action, metrics.Outcome(status)).Inc()
		return
	}

	metrics.ContentOperations.WithLabelValues(req.Action, "ok").Inc()
	render.JSON(w, http.StatusOK, body)
}

func (h *contentHandler) route(method, action string) (contentAction, bool, bool) {
	if method == http.MethodGet {
		switch action {
		case actionList:
			return h.list, false, true
		case actionGet:
			return h.get, false, true
		}
		return nil, false, false
	}

	switch action {
	case actionCreate:
		return h.create, true, true
	case actionUpdate:
		return h.update, true, true
	case actionDelete:
		return h.delete, true, true
	case actionGetUploadURL:
		return h.getUploadURL, true, true
	case actionConfirmUpload:
		return h.confirmUpload, true, true
	}
	return nil, false, false
}

func parseContentQuery(r *http.Request, req *contentRequest) error {
	q := r.URL.Query()
	req.Action = q.Get("action")
	req.ID = q.Get("id")
	req.Category = q.Get("category")

	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return badRequest("limit must be a non-negative integer")
		}
		req.Limit = limit
	}
	return nil
}

func (h *contentHandler) list(r *http.Request, req *contentRequest) (any, error) {
	items, err := h.contentService.List(r.Context(), req.Category, req.Limit)
	if err != nil {
		return nil, err
	}
	return listResponse{Items: items}, nil
}

func (h *contentHandler) get(r *http.Request, req *contentRequest) (any, error) {
	view, err := h.contentService.Get(r.Context(), req.ID)
	if err != nil {
		return nil, err
	}

	resp := getResponse{Item: view.Item}
	if view.Download != nil {
		resp.DownloadURL = &view.Download.URL
	}
	return resp, nil
}

func (h *contentHandler) create(r *http.Request, req *contentRequest) (any, error) {
	item, upload, err := h.contentService.Create(r.Context(), service.CreateContentInput{
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		FileName:    req.FileName,
		FileType:    req.FileType,
		FileSize:    req.FileSize,
	})
	if err != nil {
		return nil, err
	}

	resp := createResponse{Item: item}
	if upload != nil {
		metrics.UploadURLsIssued.WithLabelValues(actionCreate).Inc()
		resp.UploadURL = &upload.URL
	}
	return resp, nil
}

func (h *contentHandler) update(r *http.Request, req *contentRequest) (any, error) {
	item, err := h.contentService.Update(r.Context(), service.UpdateContentInput{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Version:     req.Version,
	})
	if err != nil {
		return nil, err
	}
	return itemResponse{Item: item}, nil
}

func (h *contentHandler) delete(r *http.Request, req *contentRequest) (any, error) {
	err := h.contentService.Delete(r.Context(), req.ID)
	if err != nil {
		return nil, err
	}
	return successResponse{Success: true}, nil
}

func (h *contentHandler) getUploadURL(r *http.Request, req *contentRequest) (any, error) {
	ticket, err := h.contentService.IssueUploadURL(r.Context(), service.UploadURLInput{
		ContentID: req.ContentID,
		FileName:  deref(req.FileName),
		FileType:  deref(req.FileType),
		FileSize:  req.FileSize,
	})
	if err != nil {
		return nil, err
	}

	metrics.UploadURLsIssued.WithLabelValues(actionGetUploadURL).Inc()
	return uploadURLResponse{
		UploadURL: ticket.URL,
		FileKey:   ticket.FileKey,
		ExpiresAt: ticket.ExpiresAt,
	}, nil
}

func (h *contentHandler) confirmUpload(r *http.Request, req *contentRequest) (any, error) {
	item, err := h.contentService.ConfirmUpload(r.Context(), req.ID)
	if err != nil {
		return nil, err
	}
	return itemResponse{Item: item}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
