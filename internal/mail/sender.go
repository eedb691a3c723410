package mail

import (
	"fmt"
	"net/smtp"

	"github.com/tazhibayda/wallet-service/internal/log"
)

// Sender delivers notification/verification mail. With no SMTP host
// configured it degrades to logging the message, which is what dev and CI
// run with.
type Sender struct {
	Host string // "host:port", empty = log only
	From string
}

func (s *Sender) Send(to, subject, body string) error {
	if s.Host == "" {
		log.Infof("[MAIL] to=%s subj=%s body=%s", to, subject, body)
		return nil
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.From, to, subject, body)
	return smtp.SendMail(s.Host, nil, s.From, []string{to}, []byte(msg))
}
