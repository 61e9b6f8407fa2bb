package email

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/pkg/config"
)

// MockProvider records sent emails and can be made to fail.
type MockProvider struct {
	SentEmails []MockEmail
	ShouldFail bool
}

type MockEmail struct {
	To      string
	Subject string
	Body    string
	IsHTML  bool
}

func (m *MockProvider) Send(ctx context.Context, to, subject, body string, isHTML bool) error {
	if m.ShouldFail {
		return errors.New("mock send failed")
	}
	m.SentEmails = append(m.SentEmails, MockEmail{To: to, Subject: subject, Body: body, IsHTML: isHTML})
	return nil
}

func newTestService(provider Provider) *Service {
	log := zap.NewNop()
	s := &Service{
		cfg:       config.EmailConfig{From: "noreply@chargegrid.io", FromName: "ChargeGrid"},
		provider:  provider,
		breaker:   newBreaker(log),
		templates: make(map[string]*template.Template),
		log:       log,
	}
	s.loadTemplates()
	return s
}

func TestSendReservationConfirmation(t *testing.T) {
	provider := &MockProvider{}
	svc := newTestService(provider)

	end := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	r := &domain.Reservation{
		ID:        "resv-1",
		UnitID:    "unit-1",
		StartTime: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		EndTime:   &end,
	}

	if err := svc.SendReservationConfirmation(context.Background(), "alice@example.com", r); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(provider.SentEmails) != 1 {
		t.Fatalf("expected 1 email, got %d", len(provider.SentEmails))
	}

	sent := provider.SentEmails[0]
	if sent.To != "alice@example.com" {
		t.Errorf("wrong recipient: %s", sent.To)
	}
	if !sent.IsHTML {
		t.Error("confirmation should be HTML")
	}
	for _, want := range []string{"resv-1", "unit-1", "2026-03-01 10:00", "2026-03-01 10:30"} {
		if !strings.Contains(sent.Body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestSendSessionReceipt(t *testing.T) {
	provider := &MockProvider{}
	svc := newTestService(provider)

	end := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	energy := 12.345
	cost := 58.64
	sess := &domain.ChargingSession{
		ID:           "sess-1",
		PriceAtStart: 4.75,
		StartTime:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		EndTime:      &end,
		EnergyKWh:    &energy,
		Cost:         &cost,
		Status:       domain.SessionStatusCompleted,
	}

	if err := svc.SendSessionReceipt(context.Background(), "alice@example.com", sess); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(provider.SentEmails) != 1 {
		t.Fatalf("expected 1 email, got %d", len(provider.SentEmails))
	}

	body := provider.SentEmails[0].Body
	for _, want := range []string{"sess-1", "12.345", "4.75", "58.64"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	provider := &MockProvider{ShouldFail: true}
	svc := newTestService(provider)
	ctx := context.Background()

	r := &domain.Reservation{ID: "resv-1", UnitID: "unit-1", StartTime: time.Now()}
	for i := 0; i < 3; i++ {
		if err := svc.SendReservationConfirmation(ctx, "alice@example.com", r); err == nil {
			t.Fatalf("send %d should fail", i)
		}
	}

	// Breaker is open now; the provider must not be called again.
	provider.ShouldFail = false
	if err := svc.SendReservationConfirmation(ctx, "alice@example.com", r); err == nil {
		t.Fatal("expected open breaker to reject the send")
	}
	if len(provider.SentEmails) != 0 {
		t.Fatalf("provider should not have been reached, sent %d", len(provider.SentEmails))
	}
}

func TestNewServiceRejectsBadConfig(t *testing.T) {
	log := zap.NewNop()

	if _, err := NewService(config.EmailConfig{Provider: "sendgrid"}, log); err == nil {
		t.Fatal("sendgrid without API key must be rejected")
	}
	if _, err := NewService(config.EmailConfig{Provider: "carrier-pigeon"}, log); err == nil {
		t.Fatal("unknown provider must be rejected")
	}
	if _, err := NewService(config.EmailConfig{Provider: "smtp", SMTPHost: "localhost", SMTPPort: 1025}, log); err != nil {
		t.Fatalf("smtp config should be accepted: %v", err)
	}
}
