// Package station exposes the station/unit/socket tree, geographic search
// and availability summaries.
package station

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/ports"
)

const (
	earthRadiusKm = 6371.0
	// Kilometers per degree of latitude, and per degree of longitude at the
	// equator.
	kmPerDegreeLat = 110.574
	kmPerDegreeLng = 111.32

	availabilityCacheTTL = 10 * time.Second
)

// Service implements ports.StationService.
type Service struct {
	repo  ports.StationRepository
	cache ports.Cache
	log   *zap.Logger
}

func NewService(repo ports.StationRepository, cache ports.Cache, log *zap.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Station, error) {
	station, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, fmt.Errorf("station %s: %w", id, domain.ErrNotFound)
	}
	return station, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Station, error) {
	return s.repo.FindAll(ctx)
}

// Create registers a station with its unit and socket tree.
func (s *Service) Create(ctx context.Context, station *domain.Station) error {
	if station.ID == "" {
		station.ID = uuid.New().String()
	}
	if station.Status == "" {
		station.Status = domain.StationStatusActive
	}
	now := time.Now()
	station.CreatedAt = now
	station.UpdatedAt = now
	for i := range station.Units {
		if station.Units[i].ID == "" {
			station.Units[i].ID = uuid.New().String()
		}
		if station.Units[i].Status == "" {
			station.Units[i].Status = domain.UnitStatusFree
		}
		for j := range station.Units[i].Sockets {
			if station.Units[i].Sockets[j].ID == "" {
				station.Units[i].Sockets[j].ID = uuid.New().String()
			}
			if station.Units[i].Sockets[j].Status == "" {
				station.Units[i].Sockets[j].Status = domain.SocketStatusFree
			}
		}
	}

	if err := s.repo.Save(ctx, station); err != nil {
		return fmt.Errorf("failed to save station: %w", err)
	}
	s.log.Info("Station created",
		zap.String("station_id", station.ID),
		zap.Int("units", len(station.Units)),
	)
	return nil
}

// Nearby finds active stations within radiusKm of the point, closest first.
// A cheap bounding-box query prefilters candidates; exact haversine distance
// decides membership. The longitude delta degenerates near the poles, so the
// cosine is clamped.
func (s *Service) Nearby(ctx context.Context, lat, lng, radiusKm float64, onlyAvailable bool) ([]ports.NearbyStation, error) {
	if radiusKm <= 0 {
		radiusKm = 5
	}

	latDelta := radiusKm / kmPerDegreeLat
	lngDelta := radiusKm / (kmPerDegreeLng * math.Max(0.15, math.Cos(lat*math.Pi/180)))

	candidates, err := s.repo.FindInBounds(ctx, lat-latDelta, lat+latDelta, lng-lngDelta, lng+lngDelta)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations in bounds: %w", err)
	}

	results := make([]ports.NearbyStation, 0, len(candidates))
	for i := range candidates {
		station := &candidates[i]
		if station.Latitude == nil || station.Longitude == nil {
			continue
		}
		distance := haversineKm(lat, lng, *station.Latitude, *station.Longitude)
		if distance > radiusKm {
			continue
		}
		total, free, byType := summarize(station)
		if onlyAvailable && free == 0 {
			continue
		}
		results = append(results, ports.NearbyStation{
			Station:     station,
			DistanceKm:  math.Round(distance*100) / 100,
			TotalSocket: total,
			FreeSockets: free,
			FreeByType:  byType,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].DistanceKm < results[j].DistanceKm })
	return results, nil
}

// Availability summarizes one station's occupancy, cached briefly since the
// dashboard polls it.
func (s *Service) Availability(ctx context.Context, stationID string) (*ports.StationAvailability, error) {
	cacheKey := "availability:" + stationID
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var av ports.StationAvailability
			if err := json.Unmarshal([]byte(cached), &av); err == nil {
				return &av, nil
			}
		}
	}

	station, err := s.Get(ctx, stationID)
	if err != nil {
		return nil, err
	}
	total, free, byType := summarize(station)
	av := &ports.StationAvailability{
		StationID:   stationID,
		TotalSocket: total,
		FreeSockets: free,
		FreeByType:  byType,
		AsOf:        time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, av, availabilityCacheTTL); err != nil {
			s.log.Debug("failed to cache availability", zap.Error(err))
		}
	}
	return av, nil
}

// InvalidateAvailability drops the cached summary after occupancy changes.
func (s *Service) InvalidateAvailability(ctx context.Context, stationID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, "availability:"+stationID); err != nil {
		s.log.Debug("failed to invalidate availability cache", zap.Error(err))
	}
}

func summarize(station *domain.Station) (total, free int, byType map[string]int) {
	byType = make(map[string]int)
	for _, unit := range station.Units {
		for _, socket := range unit.Sockets {
			total++
			if socket.Status != domain.SocketStatusFree {
				continue
			}
			free++
			name := socket.ConnectorTypeID
			if socket.ConnectorType != nil {
				name = socket.ConnectorType.Name
			}
			byType[name]++
		}
	}
	return total, free, byType
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
