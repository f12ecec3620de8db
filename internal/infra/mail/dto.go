package mail

import "time"

type RenewalReminderData struct {
	ClientName  string
	PackageName string
	ExpiryDate  time.Time
	LeftDays    int
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Dialer   Dialer
}
