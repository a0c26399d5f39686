package handler

import (
	"log/slog"
	"net/http"

	"github.com/northwind/salesportal/internal/model"
	"github.com/northwind/salesportal/internal/render"
	"github.com/northwind/salesportal/internal/service"
)

type contactHandler struct {
	emailService *service.EmailService
}

func NewContactHandler(emailService *service.EmailService) *contactHandler {
	return &contactHandler{
		emailService: emailService,
	}
}

// Submit forwards a contact-form inquiry to the sales inbox.
func (h *contactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var inq model.Inquiry
	err := decodeJSON(w, r, &inq)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.emailService.SubmitInquiry(r.Context(), &inq)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("inquiry received", "company", inq.Company, "service", inq.Service)
	render.Success(w, http.StatusAccepted)
}
