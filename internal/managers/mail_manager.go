// Package managers handles the sending of emails for verification decisions
// using the Mailgun service and the Hermes package for email formatting.
package managers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"
)

// MailMgr is an interface that outlines the contract for email management.
// It includes methods for welcoming new users and notifying them about
// verification decisions.
type MailMgr interface {
	SendWelcomeMail(email, nickname string) error
	SendVerificationApprovedMail(email, nickname string) error
	SendVerificationRejectedMail(email, nickname, reason string) error
}

// MailManager is a concrete implementation of the MailMgr interface.
// It uses the Mailgun service for sending emails and the Hermes package for formatting emails.
type MailManager struct {
	Hermes  *hermes.Hermes
	Mailgun *mailgun.MailgunImpl
}

var from = "Spilled <team@mail.spilled.app>"
var environment string

// SendWelcomeMail sends a welcome email after registration, pointing the
// user to the verification flow.
func (mm *MailManager) SendWelcomeMail(email, nickname string) error {
	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: nickname,
			Intros: []string{
				"Welcome to Spilled! We're very excited to have you on board.",
				"Before you can share stories you need to verify your identity. You can do this at any time from your profile.",
			},
			Outros: []string{
				"If you have any questions, feel free to reach out to us at team@mail.spilled.app.",
			},
		},
	}

	return mm.send(email, "Welcome to Spilled", mailBody)
}

// SendVerificationApprovedMail notifies a user that their identity
// verification has been approved.
func (mm *MailManager) SendVerificationApprovedMail(email, nickname string) error {
	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: nickname,
			Intros: []string{
				"Your identity verification has been approved!",
				"You can now share stories and comment on the platform.",
			},
			Outros: []string{
				"Have fun using Spilled! We'll be happy to help you in your adventures.",
			},
		},
	}

	return mm.send(email, "Verification approved", mailBody)
}

// SendVerificationRejectedMail notifies a user that their identity
// verification has been rejected, including the reviewer's reason.
func (mm *MailManager) SendVerificationRejectedMail(email, nickname, reason string) error {
	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: nickname,
			Intros: []string{
				"Unfortunately we could not verify your identity.",
				fmt.Sprintf("Reason: %s", reason),
			},
			Outros: []string{
				"You can submit a new verification request with a clearer document at any time.",
			},
		},
	}

	return mm.send(email, "Verification rejected", mailBody)
}

func (mm *MailManager) send(email, subject string, mailBody hermes.Email) error {
	if environment != "production" {
		log.Info("Skipping mail in development mode")
		return nil
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(2*time.Second))
	defer func() {
		if err := ctx.Err(); err != nil {
			log.Debug("Context error: ", err)
		}
		cancel()
	}()

	message := mm.Mailgun.NewMessage(from, subject, emailBody, email)
	_, _, err = mm.Mailgun.Send(ctx, message)
	if err != nil {
		log.Warning("Error sending mail: " + err.Error())
		return err
	}
	log.Debug("Mail sent to ", email)

	return nil
}

// NewMailManager initializes a new MailManager instance with configured Mailgun and Hermes settings.
// It also checks the runtime environment to determine if emails should be sent.
func NewMailManager() MailMgr {
	log.Info("Initializing mail manager")
	environment = os.Getenv("ENVIRONMENT")

	if environment != "production" {
		log.Println("Running in development mode, email will not be sent to users")
	}

	apiKey := os.Getenv("MAILGUN_API_KEY")
	mailgunInstance := mailgun.NewMailgun("mail.spilled.app", apiKey)
	mailgunInstance.SetAPIBase(mailgun.APIBaseEU)

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:        "Spilled",
				Link:        "https://spilled.app/",
				Copyright:   "© Spilled",
				TroubleText: "If you’re having trouble with the button '{ACTION}', copy and paste the URL below into your web browser.",
			},
		},
		Mailgun: mailgunInstance,
	}
	log.Info("Initialized mail manager")
	return mm
}
