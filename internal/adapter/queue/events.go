package queue

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/domain"
)

// Topics for domain events. Fanout semantics: every subscriber sees every
// event.
const (
	TopicReservationCreated   = "reservation.created"
	TopicReservationCancelled = "reservation.cancelled"
	TopicReservationCompleted = "reservation.completed"
	TopicSessionStarted       = "session.started"
	TopicSessionStopped       = "session.stopped"
)

// ReservationEvent is the wire payload for reservation lifecycle topics.
type ReservationEvent struct {
	ReservationID string     `json:"reservation_id"`
	CustomerID    string     `json:"customer_id"`
	UnitID        string     `json:"unit_id"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	StatusID      int        `json:"status_id"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// SessionEvent is the wire payload for charging session topics.
type SessionEvent struct {
	SessionID  string    `json:"session_id"`
	SocketID   string    `json:"socket_id"`
	VehicleID  string    `json:"vehicle_id"`
	Cost       *float64  `json:"cost,omitempty"`
	EnergyKWh  *float64  `json:"energy_kwh,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher serializes domain events onto the message queue. Publishing
// is best effort: failures are logged and never propagate to the business
// operation. A nil queue disables publishing entirely.
type EventPublisher struct {
	queue MessageQueue
	log   *zap.Logger
}

func NewEventPublisher(q MessageQueue, log *zap.Logger) *EventPublisher {
	return &EventPublisher{queue: q, log: log}
}

func (p *EventPublisher) ReservationCreated(r *domain.Reservation)   { p.reservation(TopicReservationCreated, r) }
func (p *EventPublisher) ReservationCancelled(r *domain.Reservation) { p.reservation(TopicReservationCancelled, r) }
func (p *EventPublisher) ReservationCompleted(r *domain.Reservation) { p.reservation(TopicReservationCompleted, r) }

func (p *EventPublisher) reservation(topic string, r *domain.Reservation) {
	p.publish(topic, ReservationEvent{
		ReservationID: r.ID,
		CustomerID:    r.CustomerID,
		UnitID:        r.UnitID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		StatusID:      r.StatusID,
		OccurredAt:    time.Now().UTC(),
	})
}

func (p *EventPublisher) SessionStarted(s *domain.ChargingSession) {
	p.session(TopicSessionStarted, s)
}

func (p *EventPublisher) SessionStopped(s *domain.ChargingSession) {
	p.session(TopicSessionStopped, s)
}

func (p *EventPublisher) session(topic string, s *domain.ChargingSession) {
	p.publish(topic, SessionEvent{
		SessionID:  s.ID,
		SocketID:   s.SocketID,
		VehicleID:  s.VehicleID,
		Cost:       s.Cost,
		EnergyKWh:  s.EnergyKWh,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *EventPublisher) publish(topic string, event interface{}) {
	if p == nil || p.queue == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("failed to marshal event", zap.String("topic", topic), zap.Error(err))
		return
	}
	if err := p.queue.Publish(topic, data); err != nil {
		p.log.Warn("failed to publish event", zap.String("topic", topic), zap.Error(err))
	}
}
