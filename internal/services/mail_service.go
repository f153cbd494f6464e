package services

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"recipebox/internal/config"
	"recipebox/internal/logger"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var mailTemplates embed.FS

// Sender delivers one message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailService sends transactional mail over SMTP. Without SMTP settings it
// only logs what it would have sent.
type MailService struct {
	appName string
	from    string
	sender  Sender
	tmpl    *template.Template
	log     logrus.FieldLogger
	async   bool
}

func NewMailService(cfg *config.Config, log logrus.FieldLogger) *MailService {
	s := &MailService{
		appName: cfg.AppName,
		from:    cfg.SMTPFrom,
		tmpl:    template.Must(template.ParseFS(mailTemplates, "templates/*.html")),
		log:     log,
		async:   true,
	}
	if cfg.SMTPHost != "" && cfg.SMTPFrom != "" {
		s.sender = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	} else {
		log.Warn("mail delivery disabled: SMTP_HOST or SMTP_FROM not set, mail will be logged")
	}
	return s
}

// WithSender replaces the transport and delivers synchronously. Used by tests.
func (s *MailService) WithSender(sender Sender) *MailService {
	s.sender = sender
	s.async = false
	return s
}

func (s *MailService) Enabled() bool {
	return s.sender != nil
}

// SendPasswordReset mails the reset link to the user.
func (s *MailService) SendPasswordReset(to, username, link string, validFor time.Duration) error {
	body, err := s.render("reset.html", map[string]string{
		"AppName":  s.appName,
		"Username": username,
		"Link":     link,
		"ValidFor": validFor.String(),
	})
	if err != nil {
		return err
	}
	if !s.Enabled() {
		s.log.WithFields(logrus.Fields{"to": to, "link": link}).Info("password reset mail (not sent, SMTP disabled)")
		return nil
	}
	return s.send(to, fmt.Sprintf("[%s] Reset your password", s.appName), body)
}

func (s *MailService) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render mail template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *MailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.appName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	deliver := func() error {
		if err := s.sender.DialAndSend(m); err != nil {
			logger.Error(s.log, "failed to send mail", err, logrus.Fields{"to": to})
			return err
		}
		s.log.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("mail sent")
		return nil
	}
	if s.async {
		go deliver()
		return nil
	}
	return deliver()
}
