// Package notify persists notifications and pushes them out by email.
// The database row is the source of truth; email is a courtesy copy whose
// failure is logged and swallowed, never surfaced to the caller.
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/esidoc/hr-document-service/internal/mailer"
	"github.com/esidoc/hr-document-service/internal/model"
	"github.com/esidoc/hr-document-service/internal/repository"
)

// Dispatcher creates Notification rows and attempts email delivery.
type Dispatcher struct {
	Notifications *repository.NotificationRepo
	Mail          mailer.Mailer
	From          string
}

func NewDispatcher(repo *repository.NotificationRepo, mail mailer.Mailer, from string) *Dispatcher {
	return &Dispatcher{Notifications: repo, Mail: mail, From: from}
}

// Notify persists a notification for the user and then attempts to email
// it.  The returned error reflects persistence only: when the row is
// written the call succeeds regardless of email outcome.
func (d *Dispatcher) Notify(ctx context.Context, user model.User, message string) (model.Notification, error) {
	n := model.Notification{UserID: user.ID, Message: message}
	if err := d.Notifications.Create(ctx, &n); err != nil {
		return n, err
	}
	d.sendMail(user, "Nouvelle notification", fmt.Sprintf(
		"Bonjour %s,\n\nVous avez reçu une nouvelle notification:\n\n%s\n\nCordialement,\nL'équipe ESI Document",
		user.FullName(), message))
	return n, nil
}

// SendCredentials mails a freshly created account its temporary password.
// Like Notify, delivery failure is logged and ignored.
func (d *Dispatcher) SendCredentials(user model.User, tempPassword string) {
	d.sendMail(user, "Bienvenue sur le système de gestion de documents",
		fmt.Sprintf("Bonjour %s,\n\nUn compte a été créé pour vous.\n\nVos identifiants de connexion:\nEmail: %s\nMot de passe temporaire: %s\n\nVeuillez changer votre mot de passe lors de votre première connexion.\n\nCordialement,\nL'équipe ESI Document",
			user.FullName(), user.Email, tempPassword))
}

// SendPasswordReset mails a reset token to the account's address.
func (d *Dispatcher) SendPasswordReset(user model.User, token string) {
	d.sendMail(user, "Réinitialisation de votre mot de passe",
		fmt.Sprintf("Bonjour %s,\n\nVous avez demandé une réinitialisation de votre mot de passe.\nToken: %s\n\nSi vous n'êtes pas à l'origine de cette demande, ignorez ce message.\n\nCordialement,\nL'équipe ESI Document",
			user.FullName(), token))
}

// MarkAllRead flips every unread notification of the user and reports the
// affected count.
func (d *Dispatcher) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	return d.Notifications.MarkAllRead(ctx, userID)
}

func (d *Dispatcher) sendMail(user model.User, subject, body string) {
	if err := d.Mail.Send(subject, body, d.From, []string{user.Email}); err != nil {
		log.Printf("notify: mail to %s failed: %v", user.Email, err)
	}
}
