package service

import (
	"fmt"
	"strings"

	"github.com/northwind/salesportal/internal/model"
)

func inquiryEmailTemplate(inq *model.Inquiry, appName string) (string, string) {
	subject := fmt.Sprintf("[%s] New inquiry from %s", appName, inq.Name)
	if inq.Company != "" {
		subject = fmt.Sprintf("[%s] New inquiry from %s (%s)", appName, inq.Name, inq.Company)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", inq.Name)
	fmt.Fprintf(&b, "Email: %s\n", inq.Email)
	writeOptional(&b, "Company", inq.Company)
	writeOptional(&b, "Service", inq.Service)
	writeOptional(&b, "Budget", inq.Budget)
	writeOptional(&b, "Timeline", inq.Timeline)
	if inq.Subscribe {
		b.WriteString("Newsletter: subscribed\n")
	}
	fmt.Fprintf(&b, "\n%s\n", inq.Message)

	return subject, b.String()
}

func inquiryReceiptTemplate(name, appName string) (string, string) {
	subject := fmt.Sprintf("Thanks for contacting %s", appName)
	body := fmt.Sprintf(`Hi %s,

Thanks for reaching out. We received your message and someone from our team will get back to you within two business days.

Best,
The %s Team`, name, appName)

	return subject, body
}

func writeOptional(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}
