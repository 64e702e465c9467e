package notification

import (
	"context"
	"fmt"
	"log"

	"montoit/internal/config"
	"montoit/internal/models"

	"gopkg.in/gomail.v2"
)

// Service sends account emails. Without an SMTP host it only logs.
type Service struct {
	dialer *gomail.Dialer
	from   string
}

// NewService creates a new notification service.
func NewService(cfg config.SMTPConfig) *Service {
	s := &Service{from: cfg.From}
	if cfg.Host != "" {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	}
	return s
}

// SendIdentityVerified tells the user their identity check succeeded.
func (s *Service) SendIdentityVerified(ctx context.Context, profile *models.Profile) error {
	if profile == nil || profile.Email == "" {
		return nil
	}

	if s.dialer == nil {
		log.Printf("📩 [dry-run] identity verified email to=%s user=%s", profile.Email, profile.ID)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", profile.Email)
	m.SetHeader("Subject", "Votre identité est vérifiée - MON TOIT")
	m.SetBody("text/html", identityVerifiedBody(profile.FullName))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send identity verified email: %w", err)
	}
	return nil
}

func identityVerifiedBody(name string) string {
	greeting := "Bonjour,"
	if name != "" {
		greeting = fmt.Sprintf("Bonjour %s,", name)
	}
	return fmt.Sprintf(`
		<h2>MON TOIT</h2>
		<p>%s</p>
		<p>Votre vérification d'identité a été validée. Votre profil affiche désormais le badge vérifié.</p>
		<p>L'équipe MON TOIT</p>
	`, greeting)
}
