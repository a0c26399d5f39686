package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/northwind/salesportal/internal/model"
	"github.com/northwind/salesportal/internal/validation"
	"github.com/resend/resend-go/v2"
)

const (
	maxInquiryField   = 200
	maxInquiryMessage = 5000
)

type EmailService struct {
	client     *resend.Client
	fromEmail  string
	salesInbox string
	audienceID string
	isDev      bool
	appName    string
}

func NewEmailService(apiKey, fromEmail, salesInbox, audienceID, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		salesInbox: salesInbox,
		audienceID: audienceID,
		isDev:      isDev,
		appName:    appName,
	}
}

// SubmitInquiry validates a contact-form submission, forwards it to the sales
// inbox, sends the visitor a receipt and, if asked, subscribes them to the
// newsletter. Only the inbox delivery is allowed to fail the request.
func (s *EmailService) SubmitInquiry(ctx context.Context, inq *model.Inquiry) error {
	err := normalizeInquiry(inq)
	if err != nil {
		return err
	}

	subject, body := inquiryEmailTemplate(inq, s.appName)
	err = s.send(ctx, "inquiry", s.salesInbox, subject, body)
	if err != nil {
		return fmt.Errorf("failed to forward inquiry: %w", err)
	}

	subject, body = inquiryReceiptTemplate(inq.Name, s.appName)
	err = s.send(ctx, "inquiry_receipt", inq.Email, subject, body)
	if err != nil {
		slog.Warn("failed to send inquiry receipt", "error", err, "to", inq.Email)
	}

	if inq.Subscribe {
		s.SubscribeNewsletter(ctx, inq.Email)
	}
	return nil
}

// SubscribeNewsletter adds email to the audience. Failures are logged and
// swallowed so the response never reveals whether an address is known.
func (s *EmailService) SubscribeNewsletter(ctx context.Context, email string) {
	if s.isDev {
		slog.Info("newsletter subscription (dev mode)", "email", email)
		return
	}

	if s.client == nil || s.audienceID == "" {
		slog.Warn("newsletter subscription requested but no audience configured", "email", email)
		return
	}

	params := &resend.CreateContactRequest{
		Email:      email,
		AudienceId: s.audienceID,
	}

	_, err := s.client.Contacts.Create(params)
	if err != nil {
		slog.Warn("newsletter subscription failed", "error", err, "email", email)
		return
	}

	slog.Info("newsletter subscription successful", "email", email)
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, body string) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", kind, "to", to)
	}
	return err
}

func normalizeInquiry(inq *model.Inquiry) error {
	inq.Name = strings.TrimSpace(inq.Name)
	inq.Email = strings.TrimSpace(inq.Email)
	inq.Company = strings.TrimSpace(inq.Company)
	inq.Service = strings.TrimSpace(inq.Service)
	inq.Budget = strings.TrimSpace(inq.Budget)
	inq.Timeline = strings.TrimSpace(inq.Timeline)
	inq.Message = strings.TrimSpace(inq.Message)

	err := validation.ValidateRequired("name", inq.Name)
	if err != nil {
		return invalid(err.Error())
	}
	err = validation.ValidateEmail(inq.Email)
	if err != nil {
		return invalid(err.Error())
	}
	err = validation.ValidateRequired("message", inq.Message)
	if err != nil {
		return invalid(err.Error())
	}

	fields := []struct {
		name  string
		value string
	}{
		{"name", inq.Name},
		{"company", inq.Company},
		{"service", inq.Service},
		{"budget", inq.Budget},
		{"timeline", inq.Timeline},
	}
	for _, f := range fields {
		err = validation.ValidateLength(f.name, f.value, maxInquiryField)
		if err != nil {
			return invalid(err.Error())
		}
	}
	err = validation.ValidateLength("message", inq.Message, maxInquiryMessage)
	if err != nil {
		return invalid(err.Error())
	}
	return nil
}
