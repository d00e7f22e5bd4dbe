package services

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
	"safetravels-api/config"
	"safetravels-api/models"
)

// Mailer delivers composed messages. *gomail.Dialer satisfies it.
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService sends dealership notifications in the background. Without
// an SMTP host it only logs what it would have sent.
type EmailService struct {
	mailer      Mailer
	fromEmail   string
	fromName    string
	notifyEmail string
	log         zerolog.Logger
	wg          sync.WaitGroup
}

func NewEmailService(cfg *config.Config, log zerolog.Logger) *EmailService {
	var mailer Mailer
	if cfg.EmailEnabled() {
		mailer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	}
	return NewEmailServiceWithMailer(mailer, cfg.FromEmail, cfg.FromName, cfg.NotifyEmail, log)
}

func NewEmailServiceWithMailer(mailer Mailer, fromEmail, fromName, notifyEmail string, log zerolog.Logger) *EmailService {
	return &EmailService{
		mailer:      mailer,
		fromEmail:   fromEmail,
		fromName:    fromName,
		notifyEmail: notifyEmail,
		log:         log.With().Str("component", "email").Logger(),
	}
}

// NotifyInquiry tells the dealership about a new contact inquiry.
func (es *EmailService) NotifyInquiry(inquiry models.ContactInquiry) {
	if es.notifyEmail == "" {
		return
	}

	phone := "-"
	if inquiry.Phone != nil && *inquiry.Phone != "" {
		phone = *inquiry.Phone
	}

	textBody := fmt.Sprintf(`New inquiry from %s <%s>

Phone: %s
Subject: %s

%s
`, inquiry.Name, inquiry.Email, phone, inquiry.Subject, inquiry.Message)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h2>New inquiry from %s</h2>
    <p><strong>Email:</strong> %s<br><strong>Phone:</strong> %s</p>
    <p><strong>Subject:</strong> %s</p>
    <p>%s</p>
</body>
</html>`,
		html.EscapeString(inquiry.Name),
		html.EscapeString(inquiry.Email),
		html.EscapeString(phone),
		html.EscapeString(inquiry.Subject),
		strings.ReplaceAll(html.EscapeString(inquiry.Message), "\n", "<br>"),
	)

	m := es.newMessage(es.notifyEmail, "New inquiry: "+inquiry.Subject, textBody, htmlBody)
	m.SetAddressHeader("Reply-To", inquiry.Email, inquiry.Name)
	es.send(m, "inquiry_notification")
}

// SendNewsletterWelcome greets a new or returning subscriber.
func (es *EmailService) SendNewsletterWelcome(email string, reactivated bool) {
	subject := "Welcome to the SafeTravels Motors newsletter"
	intro := "Thank you for subscribing to our newsletter!"
	if reactivated {
		subject = "Welcome back to the SafeTravels Motors newsletter"
		intro = "Your newsletter subscription has been reactivated."
	}

	textBody := fmt.Sprintf(`%s

You will be the first to hear about new arrivals, featured cars and dealership news.

The SafeTravels Motors Team
`, intro)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h2>%s</h2>
    <p>You will be the first to hear about new arrivals, featured cars and dealership news.</p>
    <p><strong>The SafeTravels Motors Team</strong></p>
</body>
</html>`, intro)

	es.send(es.newMessage(email, subject, textBody, htmlBody), "newsletter_welcome")
}

// Wait blocks until every queued email has been handled.
func (es *EmailService) Wait() {
	es.wg.Wait()
}

func (es *EmailService) newMessage(to, subject, textBody, htmlBody string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", es.fromEmail, es.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)
	return m
}

func (es *EmailService) send(m *gomail.Message, kind string) {
	to := strings.Join(m.GetHeader("To"), ",")

	if es.mailer == nil {
		es.log.Debug().Str("kind", kind).Str("to", to).Msg("email disabled, not sending")
		return
	}

	es.wg.Add(1)
	go func() {
		defer es.wg.Done()

		if err := es.mailer.DialAndSend(m); err != nil {
			es.log.Error().Err(err).Str("kind", kind).Str("to", to).Msg("failed to send email")
			return
		}
		es.log.Info().Str("kind", kind).Str("to", to).Msg("email sent")
	}()
}
