package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"
)

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

var renewalTemplate = template.Must(template.New("renewal").Parse(`<p>Hi {{.ClientName}},</p>
<p>Your <strong>{{.PackageName}}</strong> plan expires on {{.ExpiryDate.Format "02 Jan 2006"}}
({{.LeftDays}} day{{if ne .LeftDays 1}}s{{end}} left).</p>
<p>Renew now to keep your coaching sessions going without a break.</p>`))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		Dialer:   gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) SendRenewalReminder(to, clientName, packageName string, expiry time.Time, leftDays int) error {
	m, err := s.renewalMessage(to, RenewalReminderData{
		ClientName:  clientName,
		PackageName: packageName,
		ExpiryDate:  expiry,
		LeftDays:    leftDays,
	})
	if err != nil {
		return err
	}

	if err := s.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send SMTP email: %w", err)
	}
	return nil
}

func (s *EmailSender) renewalMessage(to string, data RenewalReminderData) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := renewalTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	from := s.From
	if from == "" {
		from = s.User
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Your %s plan is due for renewal", data.PackageName))
	m.SetBody("text/html", body.String())
	return m, nil
}
