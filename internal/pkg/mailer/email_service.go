package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendLeadAlert(toEmail, tenantName, callerName, callerPhone, issue, summary string) error
	SendBookingFailureAlert(toEmail, tenantName, callerName, phone, issue, reason string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

// SendLeadAlert notifies the office that a call ended without a booking
// so someone can follow up while the lead is still warm.
func (s *emailService) SendLeadAlert(toEmail, tenantName, callerName, callerPhone, issue, summary string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("New lead from a missed booking - %s", tenantName))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>A caller needs a follow-up</h2>
			<p>This call ended without a booking. Details collected:</p>
			<ul>
				<li><b>Name:</b> %s</li>
				<li><b>Phone:</b> %s</li>
				<li><b>Issue:</b> %s</li>
			</ul>
			<pre style="background: #f5f5f5; padding: 10px;">%s</pre>
		</div>
	`, html.EscapeString(callerName), html.EscapeString(callerPhone), html.EscapeString(issue), html.EscapeString(summary))

	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

// SendBookingFailureAlert tells the office a caller tried to book and
// the pipeline failed mid-call, so someone can book them manually.
func (s *emailService) SendBookingFailureAlert(toEmail, tenantName, callerName, phone, issue, reason string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Booking failed during a call - %s", tenantName))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>A phone booking could not be completed</h2>
			<p>The caller confirmed a visit but the booking did not go through. Please book them manually:</p>
			<ul>
				<li><b>Name:</b> %s</li>
				<li><b>Phone:</b> %s</li>
				<li><b>Issue:</b> %s</li>
			</ul>
			<p><b>Failure:</b> %s</p>
		</div>
	`, html.EscapeString(callerName), html.EscapeString(phone), html.EscapeString(issue), html.EscapeString(reason))

	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

// NopEmailService is used when SMTP is not configured.
type NopEmailService struct{}

func (NopEmailService) SendLeadAlert(string, string, string, string, string, string) error {
	return nil
}

func (NopEmailService) SendBookingFailureAlert(string, string, string, string, string, string) error {
	return nil
}
