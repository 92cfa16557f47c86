package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   SendFunc
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// WithSender replaces the SMTP transport.
func (s *EmailService) WithSender(send SendFunc) *EmailService {
	s.send = send
	return s
}

// InvoiceLine is one rendered row of an invoice.
type InvoiceLine struct {
	Name     string
	Quantity int
	Subtotal string
}

// Invoice is the data rendered into the invoice email.
type Invoice struct {
	OrderID      string
	CustomerName string
	Lines        []InvoiceLine
	Total        string
	PaidAt       time.Time
}

// SendInvoice mails the paid order summary to toEmail.
func (s *EmailService) SendInvoice(toEmail string, invoice Invoice) error {
	htmlContent, err := s.renderInvoiceEmail(invoice)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Your receipt for order %s - %s", invoice.OrderID, s.config.FromName)
	message := s.buildHTMLEmail(toEmail, subject, htmlContent)

	return s.sendEmail(toEmail, message)
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
	)

	return []byte(headers + htmlBody)
}

func (s *EmailService) renderInvoiceEmail(invoice Invoice) (string, error) {
	tmpl, err := template.New("invoice").Parse(invoiceTemplate)
	if err != nil {
		return "", err
	}

	data := struct {
		Invoice
		AppName string
		PaidOn  string
	}{
		Invoice: invoice,
		AppName: s.config.FromName,
		PaidOn:  invoice.PaidAt.Format("02 Jan 2006 15:04"),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// invoiceTemplate is the HTML template for paid-order receipts
const invoiceTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.OrderID}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px; border-collapse: collapse;">
        <tr>
            <td style="background-color: #3b2f2f; padding: 30px; text-align: center;">
                <h1 style="color: #ffffff; margin: 0; font-size: 26px;">{{.AppName}}</h1>
            </td>
        </tr>
        <tr>
            <td style="padding: 30px;">
                <p style="color: #4a5568; font-size: 16px;">Hi {{.CustomerName}}, thanks for your order.</p>
                <p style="color: #718096; font-size: 14px;">Order {{.OrderID}} paid on {{.PaidOn}}</p>
                <table role="presentation" style="width: 100%; border-collapse: collapse; margin-top: 20px;">
                    {{range .Lines}}
                    <tr>
                        <td style="padding: 8px 0; border-bottom: 1px solid #e2e8f0;">{{.Quantity}} x {{.Name}}</td>
                        <td style="padding: 8px 0; border-bottom: 1px solid #e2e8f0; text-align: right;">{{.Subtotal}}</td>
                    </tr>
                    {{end}}
                    <tr>
                        <td style="padding: 12px 0; font-weight: 600;">Total</td>
                        <td style="padding: 12px 0; font-weight: 600; text-align: right;">{{.Total}}</td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`
