package mocks

import (
	"context"
	"sync"

	"github.com/chargegrid/chargegrid/internal/domain"
)

// MockEmailService records sends instead of delivering them.
type MockEmailService struct {
	mu                sync.Mutex
	ConfirmationsSent []string
	ReceiptsSent      []string

	SendReservationConfirmationFunc func(ctx context.Context, to string, r *domain.Reservation) error
	SendSessionReceiptFunc          func(ctx context.Context, to string, s *domain.ChargingSession) error
}

func (m *MockEmailService) SendReservationConfirmation(ctx context.Context, to string, r *domain.Reservation) error {
	if m.SendReservationConfirmationFunc != nil {
		return m.SendReservationConfirmationFunc(ctx, to, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmationsSent = append(m.ConfirmationsSent, to)
	return nil
}

func (m *MockEmailService) SendSessionReceipt(ctx context.Context, to string, s *domain.ChargingSession) error {
	if m.SendSessionReceiptFunc != nil {
		return m.SendSessionReceiptFunc(ctx, to, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReceiptsSent = append(m.ReceiptsSent, to)
	return nil
}
