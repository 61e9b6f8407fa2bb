package domain

import (
	"time"
)

// StationStatus is the operational state of a whole station.
type StationStatus string

const (
	StationStatusActive StationStatus = "active"
	StationStatusClosed StationStatus = "closed"
)

// SocketStatus is the occupancy flag of a single socket. It doubles as the
// mutual-exclusion flag for charging sessions: a session may only start on a
// free socket, and starting flips it to occupied in the same transaction.
type SocketStatus string

const (
	SocketStatusFree     SocketStatus = "free"
	SocketStatusOccupied SocketStatus = "occupied"
)

// UnitStatus is the derived occupancy of a charging unit: occupied iff at
// least one of its sockets is occupied. The storage layer recomputes it after
// every socket mutation.
type UnitStatus string

const (
	UnitStatusFree     UnitStatus = "free"
	UnitStatusOccupied UnitStatus = "occupied"
)

// Station is a charging location owning units and tariffs.
type Station struct {
	ID        string        `json:"id" gorm:"primaryKey"`
	Name      string        `json:"name"`
	Location  string        `json:"location"`
	Latitude  *float64      `json:"latitude,omitempty"`
	Longitude *float64      `json:"longitude,omitempty"`
	Status    StationStatus `json:"status" gorm:"index"`
	Units     []Unit        `json:"units,omitempty" gorm:"foreignKey:StationID;constraint:OnDelete:CASCADE"`
	Tariffs   []Tariff      `json:"tariffs,omitempty" gorm:"foreignKey:StationID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Unit is a physical charging post containing one or more sockets.
type Unit struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	StationID string     `json:"station_id" gorm:"index"`
	Number    int        `json:"number"`
	Status    UnitStatus `json:"status"`
	Sockets   []Socket   `json:"sockets,omitempty" gorm:"foreignKey:UnitID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// HasOccupiedSocket reports whether any loaded socket is occupied. It only
// inspects the in-memory slice; the authoritative recount lives in storage.
func (u *Unit) HasOccupiedSocket() bool {
	for _, s := range u.Sockets {
		if s.Status == SocketStatusOccupied {
			return true
		}
	}
	return false
}

// Socket is a single connector point on a unit.
type Socket struct {
	ID              string         `json:"id" gorm:"primaryKey"`
	UnitID          string         `json:"unit_id" gorm:"index"`
	ConnectorTypeID string         `json:"connector_type_id" gorm:"index"`
	Status          SocketStatus   `json:"status"`
	Unit            *Unit          `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
	ConnectorType   *ConnectorType `json:"connector_type,omitempty" gorm:"foreignKey:ConnectorTypeID"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ConnectorType is immutable reference data describing the physical standard
// of a socket (e.g. Type2, CCS).
type ConnectorType struct {
	ID          string  `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"uniqueIndex"`
	MaxCurrentA float64 `json:"max_current_a"`
	MaxVoltageV float64 `json:"max_voltage_v"`
}

// Tariff is the unit price for a (station, connector type) pair. The pair is
// unique; session start captures PricePerKWh as price-at-start.
type Tariff struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	StationID       string    `json:"station_id" gorm:"uniqueIndex:uq_tariff_station_connector"`
	ConnectorTypeID string    `json:"connector_type_id" gorm:"uniqueIndex:uq_tariff_station_connector"`
	PricePerKWh     float64   `json:"price_per_kwh"`
	UpdatedAt       time.Time `json:"updated_at"`
}
