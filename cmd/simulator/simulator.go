package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Config holds the simulator parameters shared by all drivers.
type Config struct {
	BaseURL   string
	ThinkTime time.Duration
	ChargeFor time.Duration
}

// Driver is one synthetic customer: an account, a vehicle, and a loop of
// bookings and charges.
type Driver struct {
	n       int
	cfg     Config
	client  *fasthttp.Client
	token   string
	vehicle string
	log     *zap.Logger
}

func NewDriver(n int, cfg Config, log *zap.Logger) *Driver {
	return &Driver{
		n:   n,
		cfg: cfg,
		client: &fasthttp.Client{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		log: log.With(zap.Int("driver", n)),
	}
}

// Run signs the driver up and loops until stopped.
func (d *Driver) Run(stop <-chan struct{}) {
	if err := d.signup(); err != nil {
		d.log.Error("signup failed", zap.Error(err))
		return
	}

	for {
		select {
		case <-stop:
			return
		default:
		}

		var err error
		if rand.Intn(3) == 0 {
			err = d.bookReservation()
		} else {
			err = d.runChargingSession(stop)
		}
		if err != nil {
			d.log.Warn("driver action failed", zap.Error(err))
		}

		select {
		case <-stop:
			return
		case <-time.After(d.cfg.ThinkTime):
		}
	}
}

func (d *Driver) signup() error {
	email := fmt.Sprintf("driver-%d-%s@sim.chargegrid.io", d.n, uuid.New().String()[:8])
	password := "sim-password"

	_, err := d.post("/api/v1/auth/register", map[string]interface{}{
		"first_name": fmt.Sprintf("Driver %d", d.n),
		"email":      email,
		"password":   password,
	}, fasthttp.StatusCreated)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	body, err := d.post("/api/v1/auth/login", map[string]interface{}{
		"email":    email,
		"password": password,
	}, fasthttp.StatusOK)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	var loginResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return err
	}
	d.token = loginResp.AccessToken

	body, err = d.post("/api/v1/vehicles", map[string]interface{}{
		"plate": fmt.Sprintf("SIM %03d", d.n),
		"brand": "Simula",
		"model": "EV",
	}, fasthttp.StatusCreated)
	if err != nil {
		return fmt.Errorf("vehicle: %w", err)
	}
	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return err
	}
	d.vehicle = v.ID

	d.log.Info("driver ready", zap.String("email", email))
	return nil
}

type stationView struct {
	ID    string `json:"id"`
	Units []struct {
		ID      string `json:"id"`
		Sockets []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"sockets"`
	} `json:"units"`
}

func (d *Driver) stations() ([]stationView, error) {
	body, err := d.get("/api/v1/stations")
	if err != nil {
		return nil, err
	}
	var resp struct {
		Stations []stationView `json:"stations"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return resp.Stations, nil
}

// runChargingSession starts a charge on a random free socket, lets it run,
// and stops it with a random energy reading.
func (d *Driver) runChargingSession(stop <-chan struct{}) error {
	stations, err := d.stations()
	if err != nil {
		return err
	}

	socketID := pickFreeSocket(stations)
	if socketID == "" {
		return fmt.Errorf("no free socket available")
	}

	body, err := d.post("/api/v1/charging-sessions", map[string]interface{}{
		"vehicle_id": d.vehicle,
		"socket_id":  socketID,
	}, fasthttp.StatusCreated)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	var sess struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &sess); err != nil {
		return err
	}
	d.log.Info("charging", zap.String("session_id", sess.ID), zap.String("socket_id", socketID))

	select {
	case <-stop:
	case <-time.After(d.cfg.ChargeFor):
	}

	energy := 1 + rand.Float64()*40
	body, err = d.post(fmt.Sprintf("/api/v1/charging-sessions/%s/stop", sess.ID), map[string]interface{}{
		"energy_kwh": energy,
	}, fasthttp.StatusOK)
	if err != nil {
		return fmt.Errorf("stop session: %w", err)
	}
	var stopResp struct {
		Cost float64 `json:"cost"`
	}
	if err := json.Unmarshal(body, &stopResp); err != nil {
		return err
	}
	d.log.Info("charged",
		zap.String("session_id", sess.ID),
		zap.Float64("energy_kwh", energy),
		zap.Float64("cost", stopResp.Cost),
	)

	// Settle roughly half the sessions to exercise payments.
	if rand.Intn(2) == 0 {
		_, err = d.post("/api/v1/payments", map[string]interface{}{
			"session_id": sess.ID,
			"method_id":  1,
		}, fasthttp.StatusCreated)
		if err != nil {
			return fmt.Errorf("payment: %w", err)
		}
	}
	return nil
}

// bookReservation books a short future slot on a random unit. Overlap
// rejections are expected under load and logged as normal outcomes.
func (d *Driver) bookReservation() error {
	stations, err := d.stations()
	if err != nil {
		return err
	}
	unitID := pickUnit(stations)
	if unitID == "" {
		return fmt.Errorf("no unit available")
	}

	start := time.Now().Add(time.Duration(1+rand.Intn(120)) * time.Minute).Truncate(time.Minute)
	end := start.Add(30 * time.Minute)

	body, status, err := d.request(fasthttp.MethodPost, "/api/v1/reservations", map[string]interface{}{
		"unit_id":    unitID,
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	switch status {
	case fasthttp.StatusCreated:
		d.log.Info("reserved", zap.String("unit_id", unitID), zap.Time("start", start))
		return nil
	case fasthttp.StatusConflict:
		d.log.Info("slot taken", zap.String("unit_id", unitID), zap.Time("start", start))
		return nil
	default:
		return fmt.Errorf("reservation returned %d: %s", status, body)
	}
}

func pickFreeSocket(stations []stationView) string {
	var free []string
	for _, st := range stations {
		for _, u := range st.Units {
			for _, s := range u.Sockets {
				if s.Status == "free" {
					free = append(free, s.ID)
				}
			}
		}
	}
	if len(free) == 0 {
		return ""
	}
	return free[rand.Intn(len(free))]
}

func pickUnit(stations []stationView) string {
	var units []string
	for _, st := range stations {
		for _, u := range st.Units {
			units = append(units, u.ID)
		}
	}
	if len(units) == 0 {
		return ""
	}
	return units[rand.Intn(len(units))]
}

func (d *Driver) get(path string) ([]byte, error) {
	body, status, err := d.request(fasthttp.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != fasthttp.StatusOK {
		return nil, fmt.Errorf("GET %s returned %d: %s", path, status, body)
	}
	return body, nil
}

func (d *Driver) post(path string, payload interface{}, want int) ([]byte, error) {
	body, status, err := d.request(fasthttp.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	if status != want {
		return nil, fmt.Errorf("POST %s returned %d: %s", path, status, body)
	}
	return body, nil
}

func (d *Driver) request(method, path string, payload interface{}) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(d.cfg.BaseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		req.SetBody(data)
	}

	if err := d.client.Do(req, resp); err != nil {
		return nil, 0, err
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, resp.StatusCode(), nil
}
