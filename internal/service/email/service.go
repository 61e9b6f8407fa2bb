// Package email delivers outbound notifications through a pluggable
// provider (SendGrid or plain SMTP).
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/pkg/config"
)

// Provider is the transport behind the service.
type Provider interface {
	Send(ctx context.Context, to, subject, body string, isHTML bool) error
}

// Service implements ports.EmailService. Provider calls go through a
// circuit breaker so a dead mail server stops costing a timeout per
// notification.
type Service struct {
	cfg       config.EmailConfig
	provider  Provider
	breaker   *gobreaker.CircuitBreaker
	templates map[string]*template.Template
	log       *zap.Logger
}

// NewService builds the service for the configured provider. Returns an
// error when the provider is unknown or missing its credentials.
func NewService(cfg config.EmailConfig, log *zap.Logger) (*Service, error) {
	s := &Service{
		cfg:       cfg,
		templates: make(map[string]*template.Template),
		log:       log,
	}

	switch cfg.Provider {
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SendGrid API key is required")
		}
		s.provider = NewSendGridProvider(cfg.SendGridAPIKey, cfg.From, cfg.FromName)
	case "smtp":
		s.provider = NewSMTPProvider(
			cfg.SMTPHost,
			cfg.SMTPPort,
			cfg.SMTPUsername,
			cfg.SMTPPassword,
			cfg.From,
			cfg.FromName,
			cfg.SMTPUseTLS,
		)
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}

	s.breaker = newBreaker(log)
	s.loadTemplates()
	return s, nil
}

func newBreaker(log *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "email-provider",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("email circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func (s *Service) loadTemplates() {
	s.templates["reservation_confirmation"] = template.Must(
		template.New("reservation_confirmation").Parse(reservationConfirmationTemplate))
	s.templates["session_receipt"] = template.Must(
		template.New("session_receipt").Parse(sessionReceiptTemplate))
}

// SendReservationConfirmation notifies a customer that a slot was booked.
func (s *Service) SendReservationConfirmation(ctx context.Context, to string, r *domain.Reservation) error {
	end := ""
	if r.EndTime != nil {
		end = r.EndTime.Format("2006-01-02 15:04")
	}
	data := map[string]interface{}{
		"ReservationID": r.ID,
		"UnitID":        r.UnitID,
		"StartTime":     r.StartTime.Format("2006-01-02 15:04"),
		"EndTime":       end,
	}
	return s.sendTemplate(ctx, to, "Reservation confirmed", "reservation_confirmation", data)
}

// SendSessionReceipt sends the billing summary for a finished charge.
func (s *Service) SendSessionReceipt(ctx context.Context, to string, sess *domain.ChargingSession) error {
	data := map[string]interface{}{
		"SessionID":   sess.ID,
		"StartTime":   sess.StartTime.Format("2006-01-02 15:04"),
		"PricePerKWh": fmt.Sprintf("%.2f", sess.PriceAtStart),
	}
	if sess.EndTime != nil {
		data["EndTime"] = sess.EndTime.Format("2006-01-02 15:04")
	}
	if sess.EnergyKWh != nil {
		data["EnergyKWh"] = fmt.Sprintf("%.3f", *sess.EnergyKWh)
	}
	if sess.Cost != nil {
		data["Cost"] = fmt.Sprintf("%.2f", *sess.Cost)
	}
	return s.sendTemplate(ctx, to, "Your charging receipt", "session_receipt", data)
}

func (s *Service) sendTemplate(ctx context.Context, to, subject, name string, data map[string]interface{}) error {
	tmpl, ok := s.templates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.provider.Send(ctx, to, subject, buf.String(), true)
	})
	if err != nil {
		s.log.Error("failed to send email",
			zap.String("to", to),
			zap.String("template", name),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Info("email sent", zap.String("to", to), zap.String("template", name))
	return nil
}
