// Package memory is an in-process storage adapter implementing every
// repository port over plain maps behind a single mutex. It preserves the
// concurrency contracts of the PostgreSQL adapter (atomic overlap check,
// conditional socket flip, unit recount) and backs development mode and the
// service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chargegrid/chargegrid/internal/domain"
)

type Store struct {
	mu sync.Mutex

	stations       map[string]*domain.Station
	units          map[string]*domain.Unit
	sockets        map[string]*domain.Socket
	connectorTypes map[string]*domain.ConnectorType
	tariffs        map[string]*domain.Tariff
	reservations   map[string]*domain.Reservation
	sessions       map[string]*domain.ChargingSession
	payments       map[string]*domain.Payment
	methods        map[int]domain.PaymentMethod
	users          map[string]*domain.User
	vehicles       map[string]*domain.Vehicle
	statuses       map[int]domain.ReservationStatus
}

func NewStore() *Store {
	s := &Store{
		stations:       make(map[string]*domain.Station),
		units:          make(map[string]*domain.Unit),
		sockets:        make(map[string]*domain.Socket),
		connectorTypes: make(map[string]*domain.ConnectorType),
		tariffs:        make(map[string]*domain.Tariff),
		reservations:   make(map[string]*domain.Reservation),
		sessions:       make(map[string]*domain.ChargingSession),
		payments:       make(map[string]*domain.Payment),
		methods:        make(map[int]domain.PaymentMethod),
		users:          make(map[string]*domain.User),
		vehicles:       make(map[string]*domain.Vehicle),
		statuses:       make(map[int]domain.ReservationStatus),
	}
	s.seedReferenceData()
	return s
}

func (s *Store) seedReferenceData() {
	for id, name := range map[int]string{
		domain.FallbackStatusPending:   "Pending",
		domain.FallbackStatusApproved:  "Approved",
		domain.FallbackStatusCancelled: "Cancelled",
		domain.FallbackStatusCompleted: "Completed",
	} {
		s.statuses[id] = domain.ReservationStatus{ID: id, Name: name}
	}
	for id, name := range map[int]string{1: "Credit Card", 2: "Cash", 3: "Bank Transfer"} {
		s.methods[id] = domain.PaymentMethod{ID: id, Name: name}
	}
}

// Accessors return port implementations sharing the store's mutex.

func (s *Store) Stations() *StationRepo         { return &StationRepo{s} }
func (s *Store) Reservations() *ReservationRepo { return &ReservationRepo{s} }
func (s *Store) Sessions() *SessionRepo         { return &SessionRepo{s} }
func (s *Store) Tariffs() *TariffRepo           { return &TariffRepo{s} }
func (s *Store) Payments() *PaymentRepo         { return &PaymentRepo{s} }
func (s *Store) Users() *UserRepo               { return &UserRepo{s} }
func (s *Store) Vehicles() *VehicleRepo         { return &VehicleRepo{s} }
func (s *Store) Statuses() *StatusRepo          { return &StatusRepo{s} }

// SeedSession inserts a session directly, bypassing socket acquisition.
// Test helper.
func (s *Store) SeedSession(sess *domain.ChargingSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[cp.ID] = &cp
}

// SetReservationStatuses replaces the status reference table. Test helper for
// exercising registry resolution against renamed or partial tables.
func (s *Store) SetReservationStatuses(rows []domain.ReservationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = make(map[int]domain.ReservationStatus, len(rows))
	for _, row := range rows {
		s.statuses[row.ID] = row
	}
}

// --- stations ---

type StationRepo struct{ s *Store }

func (r *StationRepo) Save(_ context.Context, station *domain.Station) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *station
	cp.Units = nil
	cp.Tariffs = nil
	r.s.stations[cp.ID] = &cp

	for _, unit := range station.Units {
		u := unit
		u.StationID = station.ID
		u.Sockets = nil
		r.s.units[u.ID] = &u
		for _, socket := range unit.Sockets {
			sk := socket
			sk.UnitID = unit.ID
			sk.Unit = nil
			if sk.ConnectorType != nil {
				ct := *sk.ConnectorType
				r.s.connectorTypes[ct.ID] = &ct
				sk.ConnectorTypeID = ct.ID
				sk.ConnectorType = nil
			}
			r.s.sockets[sk.ID] = &sk
		}
	}
	return nil
}

func (r *StationRepo) FindByID(_ context.Context, id string) (*domain.Station, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	station, ok := r.s.stations[id]
	if !ok {
		return nil, nil
	}
	return r.s.assembleStation(station), nil
}

func (r *StationRepo) FindAll(_ context.Context) ([]domain.Station, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Station, 0, len(r.s.stations))
	for _, station := range r.s.stations {
		out = append(out, *r.s.assembleStation(station))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *StationRepo) FindInBounds(_ context.Context, minLat, maxLat, minLng, maxLng float64) ([]domain.Station, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Station
	for _, station := range r.s.stations {
		if station.Status != domain.StationStatusActive || station.Latitude == nil || station.Longitude == nil {
			continue
		}
		if *station.Latitude < minLat || *station.Latitude > maxLat ||
			*station.Longitude < minLng || *station.Longitude > maxLng {
			continue
		}
		out = append(out, *r.s.assembleStation(station))
	}
	return out, nil
}

func (r *StationRepo) FindUnit(_ context.Context, id string) (*domain.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	unit, ok := r.s.units[id]
	if !ok {
		return nil, nil
	}
	return r.s.assembleUnit(unit), nil
}

func (r *StationRepo) FindSocket(_ context.Context, id string) (*domain.Socket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	socket, ok := r.s.sockets[id]
	if !ok {
		return nil, nil
	}
	cp := *socket
	if unit, ok := r.s.units[socket.UnitID]; ok {
		u := *unit
		cp.Unit = &u
	}
	if ct, ok := r.s.connectorTypes[socket.ConnectorTypeID]; ok {
		c := *ct
		cp.ConnectorType = &c
	}
	return &cp, nil
}

func (r *StationRepo) CountOccupiedSockets(_ context.Context, unitID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.countOccupiedLocked(unitID), nil
}

func (r *StationRepo) SaveConnectorType(_ context.Context, ct *domain.ConnectorType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *ct
	r.s.connectorTypes[cp.ID] = &cp
	return nil
}

func (r *StationRepo) FindConnectorTypes(_ context.Context) ([]domain.ConnectorType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.ConnectorType, 0, len(r.s.connectorTypes))
	for _, ct := range r.s.connectorTypes {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) assembleStation(station *domain.Station) *domain.Station {
	cp := *station
	for _, unit := range s.units {
		if unit.StationID == station.ID {
			cp.Units = append(cp.Units, *s.assembleUnit(unit))
		}
	}
	sort.Slice(cp.Units, func(i, j int) bool { return cp.Units[i].Number < cp.Units[j].Number })
	for _, tariff := range s.tariffs {
		if tariff.StationID == station.ID {
			cp.Tariffs = append(cp.Tariffs, *tariff)
		}
	}
	return &cp
}

func (s *Store) assembleUnit(unit *domain.Unit) *domain.Unit {
	cp := *unit
	for _, socket := range s.sockets {
		if socket.UnitID == unit.ID {
			sk := *socket
			if ct, ok := s.connectorTypes[socket.ConnectorTypeID]; ok {
				c := *ct
				sk.ConnectorType = &c
			}
			cp.Sockets = append(cp.Sockets, sk)
		}
	}
	sort.Slice(cp.Sockets, func(i, j int) bool { return cp.Sockets[i].ID < cp.Sockets[j].ID })
	return &cp
}

func (s *Store) countOccupiedLocked(unitID string) int64 {
	var n int64
	for _, socket := range s.sockets {
		if socket.UnitID == unitID && socket.Status == domain.SocketStatusOccupied {
			n++
		}
	}
	return n
}

// --- reservations ---

type ReservationRepo struct{ s *Store }

func (r *ReservationRepo) CreateIfNoOverlap(_ context.Context, resv *domain.Reservation, activeStatusIDs []int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.reservations {
		if existing.UnitID != resv.UnitID || !statusIn(existing.StatusID, activeStatusIDs) {
			continue
		}
		if resv.EndTime != nil && existing.Overlaps(resv.StartTime, *resv.EndTime) {
			return domain.ErrReservationOverlap
		}
	}
	cp := *resv
	r.s.reservations[cp.ID] = &cp
	return nil
}

func (r *ReservationRepo) FindByID(_ context.Context, id string) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	resv, ok := r.s.reservations[id]
	if !ok {
		return nil, nil
	}
	cp := *resv
	return &cp, nil
}

func (r *ReservationRepo) FindByCustomer(_ context.Context, customerID string, limit int) ([]domain.Reservation, error) {
	if limit <= 0 {
		limit = 50
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Reservation
	for _, resv := range r.s.reservations {
		if resv.CustomerID == customerID {
			out = append(out, *resv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ReservationRepo) FindActiveByUnit(_ context.Context, unitID string, activeStatusIDs []int) ([]domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Reservation
	for _, resv := range r.s.reservations {
		if resv.UnitID == unitID && statusIn(resv.StatusID, activeStatusIDs) {
			out = append(out, *resv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *ReservationRepo) UpdateStatus(_ context.Context, id string, fromStatusIDs []int, toStatusID int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	resv, ok := r.s.reservations[id]
	if !ok || !statusIn(resv.StatusID, fromStatusIDs) {
		return false, nil
	}
	resv.StatusID = toStatusID
	resv.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *ReservationRepo) CompleteExpired(_ context.Context, activeStatusIDs []int, completedStatusID int, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, resv := range r.s.reservations {
		if statusIn(resv.StatusID, activeStatusIDs) && resv.Expired(now) {
			resv.StatusID = completedStatusID
			resv.UpdatedAt = now.UTC()
			n++
		}
	}
	return n, nil
}

func statusIn(id int, ids []int) bool {
	for _, candidate := range ids {
		if id == candidate {
			return true
		}
	}
	return false
}

// --- charging sessions ---

type SessionRepo struct{ s *Store }

func (r *SessionRepo) StartExclusive(_ context.Context, sess *domain.ChargingSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	socket, ok := r.s.sockets[sess.SocketID]
	if !ok {
		return domain.ErrNotFound
	}
	if socket.Status != domain.SocketStatusFree {
		return domain.ErrSocketNotAvailable
	}
	socket.Status = domain.SocketStatusOccupied
	socket.UpdatedAt = time.Now().UTC()
	if unit, ok := r.s.units[socket.UnitID]; ok {
		unit.Status = domain.UnitStatusOccupied
		unit.UpdatedAt = time.Now().UTC()
	}
	cp := *sess
	r.s.sessions[cp.ID] = &cp
	return nil
}

func (r *SessionRepo) Complete(_ context.Context, id string, endTime time.Time, energyKWh, cost float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sess, ok := r.s.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	if sess.Status != domain.SessionStatusInProgress {
		return domain.ErrSessionNotActive
	}
	sess.Status = domain.SessionStatusCompleted
	sess.EndTime = &endTime
	sess.EnergyKWh = &energyKWh
	sess.Cost = &cost
	sess.UpdatedAt = time.Now().UTC()

	socket, ok := r.s.sockets[sess.SocketID]
	if !ok {
		return nil
	}
	socket.Status = domain.SocketStatusFree
	socket.UpdatedAt = time.Now().UTC()
	if r.s.countOccupiedLocked(socket.UnitID) == 0 {
		if unit, ok := r.s.units[socket.UnitID]; ok {
			unit.Status = domain.UnitStatusFree
			unit.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

func (r *SessionRepo) FindByID(_ context.Context, id string) (*domain.ChargingSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (r *SessionRepo) FindActiveBySocket(_ context.Context, socketID string) (*domain.ChargingSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sess := range r.s.sessions {
		if sess.SocketID == socketID && sess.Status == domain.SessionStatusInProgress {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *SessionRepo) FindByVehicles(_ context.Context, vehicleIDs []string, limit int) ([]domain.ChargingSession, error) {
	if limit <= 0 {
		limit = 50
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	idSet := make(map[string]struct{}, len(vehicleIDs))
	for _, id := range vehicleIDs {
		idSet[id] = struct{}{}
	}
	var out []domain.ChargingSession
	for _, sess := range r.s.sessions {
		if _, ok := idSet[sess.VehicleID]; ok {
			out = append(out, *sess)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- tariffs ---

type TariffRepo struct{ s *Store }

func tariffKey(stationID, connectorTypeID string) string {
	return strings.Join([]string{stationID, connectorTypeID}, "|")
}

func (r *TariffRepo) Upsert(_ context.Context, t *domain.Tariff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *t
	r.s.tariffs[tariffKey(t.StationID, t.ConnectorTypeID)] = &cp
	return nil
}

func (r *TariffRepo) FindByStationAndConnector(_ context.Context, stationID, connectorTypeID string) (*domain.Tariff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tariff, ok := r.s.tariffs[tariffKey(stationID, connectorTypeID)]
	if !ok {
		return nil, nil
	}
	cp := *tariff
	return &cp, nil
}

func (r *TariffRepo) FindByStation(_ context.Context, stationID string) ([]domain.Tariff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Tariff
	for _, tariff := range r.s.tariffs {
		if tariff.StationID == stationID {
			out = append(out, *tariff)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConnectorTypeID < out[j].ConnectorTypeID })
	return out, nil
}

// --- payments ---

type PaymentRepo struct{ s *Store }

func (r *PaymentRepo) Save(_ context.Context, p *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.payments[cp.ID] = &cp
	return nil
}

func (r *PaymentRepo) FindBySession(_ context.Context, sessionID string) ([]domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Payment
	for _, payment := range r.s.payments {
		if payment.SessionID == sessionID {
			out = append(out, *payment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *PaymentRepo) ListMethods(_ context.Context) ([]domain.PaymentMethod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.PaymentMethod, 0, len(r.s.methods))
	for _, method := range r.s.methods {
		out = append(out, method)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- users and vehicles ---

type UserRepo struct{ s *Store }

func (r *UserRepo) Save(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *user
	r.s.users[cp.ID] = &cp
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

type VehicleRepo struct{ s *Store }

func (r *VehicleRepo) Save(_ context.Context, v *domain.Vehicle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *v
	r.s.vehicles[cp.ID] = &cp
	return nil
}

func (r *VehicleRepo) FindByID(_ context.Context, id string) (*domain.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	vehicle, ok := r.s.vehicles[id]
	if !ok {
		return nil, nil
	}
	cp := *vehicle
	return &cp, nil
}

func (r *VehicleRepo) FindByCustomer(_ context.Context, customerID string) ([]domain.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Vehicle
	for _, vehicle := range r.s.vehicles {
		if vehicle.CustomerID == customerID {
			out = append(out, *vehicle)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- reservation statuses ---

type StatusRepo struct{ s *Store }

func (r *StatusRepo) ListReservationStatuses(_ context.Context) ([]domain.ReservationStatus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.ReservationStatus, 0, len(r.s.statuses))
	for _, status := range r.s.statuses {
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
