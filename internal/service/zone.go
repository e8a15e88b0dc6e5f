package service

//go:generate mockgen -source=zone.go -destination=mocks/mock_zone.go -package=mocks

import (
	"context"
	"fmt"

	"github.com/DigitariaWebs/Safyr-sub007/internal/config"
	"github.com/DigitariaWebs/Safyr-sub007/internal/geo"
	"github.com/DigitariaWebs/Safyr-sub007/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ZoneRepository определяет контракт для работы с бд рабочих зон
type ZoneRepository interface {
	Create(ctx context.Context, zone *models.WorkZone) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.WorkZone, error)
	Update(ctx context.Context, zone *models.WorkZone) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListZones(ctx context.Context, page, pageSize int) ([]*models.WorkZone, error)
	GetZoneFromCache(ctx context.Context, id uuid.UUID) (*models.WorkZone, error)
	SetZoneCache(ctx context.Context, zone *models.WorkZone) error
	InvalidateZoneCache(ctx context.Context, id uuid.UUID) error
}

// ZoneService определяет контракт бизнес-логики управления рабочими зонами
type ZoneService interface {
	CreateZone(ctx context.Context, zone *models.WorkZone) error
	GetZone(ctx context.Context, id uuid.UUID) (*models.WorkZone, error)
	UpdateZone(ctx context.Context, zone *models.WorkZone) error
	DeactivateZone(ctx context.Context, id uuid.UUID) error
	ListZones(ctx context.Context, page, pageSize int) ([]*models.WorkZone, error)
}

type zoneService struct {
	repo   ZoneRepository
	logger *logrus.Logger
	cfg    *config.Config
}

func NewZoneService(repo ZoneRepository, logger *logrus.Logger, cfg *config.Config) ZoneService {
	return &zoneService{
		repo:   repo,
		logger: logger,
		cfg:    cfg,
	}
}

// CreateZone создает рабочую зону
func (s *zoneService) CreateZone(ctx context.Context, zone *models.WorkZone) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "zone",
		"method":  "CreateZone",
		"label":   zone.Label,
	})
	log.Info("Attempting to create a new work zone")

	zone.Status = models.ZoneStatusActive
	zone.Geohash = geo.Geohash(zone.Center, s.cfg.GeohashPrecision)
	if err := s.repo.Create(ctx, zone); err != nil {
		log.WithError(err).Error("Failed to create work zone in repository")
		return fmt.Errorf("service: could not create work zone: %w", err)
	}

	log.WithField("zone_id", zone.ID).Info("Work zone created successfully")
	return nil
}

// GetZone получает зону по ID, сначала из кеша
func (s *zoneService) GetZone(ctx context.Context, id uuid.UUID) (*models.WorkZone, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "zone",
		"method":  "GetZone",
		"zone_id": id,
	})

	cached, err := s.repo.GetZoneFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read work zone from cache")
	}
	if cached != nil {
		log.Debug("Work zone served from cache")
		return cached, nil
	}

	zone, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to get work zone in repository")
		return nil, fmt.Errorf("service: could not get work zone: %w", err)
	}

	if err := s.repo.SetZoneCache(ctx, zone); err != nil {
		log.WithError(err).Warn("Failed to cache work zone")
	}

	log.Debug("Work zone fetched successfully")
	return zone, nil
}

// UpdateZone обновляет существующую зону
func (s *zoneService) UpdateZone(ctx context.Context, zone *models.WorkZone) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "zone",
		"method":  "UpdateZone",
		"zone_id": zone.ID,
	})
	log.Info("Attempting to update work zone")

	existing, err := s.repo.GetByID(ctx, zone.ID)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent work zone")
		return fmt.Errorf("service: work zone with id %s not found for update: %w", zone.ID, err)
	}

	existing.Label = zone.Label
	existing.Center = zone.Center
	existing.RadiusMeters = zone.RadiusMeters
	existing.Geohash = geo.Geohash(zone.Center, s.cfg.GeohashPrecision)
	if zone.Status != "" {
		existing.Status = zone.Status
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		log.WithError(err).Error("Failed to update work zone in repository")
		return fmt.Errorf("service: could not update work zone: %w", err)
	}
	if err := s.repo.InvalidateZoneCache(ctx, zone.ID); err != nil {
		log.WithError(err).Warn("Failed to invalidate work zone cache")
	}

	*zone = *existing
	log.Info("Work zone updated successfully")
	return nil
}

// DeactivateZone деактивирует зону
func (s *zoneService) DeactivateZone(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "zone",
		"method":  "DeactivateZone",
		"zone_id": id,
	})
	log.Info("Attempting to deactivate work zone")

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		log.WithError(err).Warn("Attempted to deactivate a non-existent work zone")
		return fmt.Errorf("service: work zone with id %s not found for deactivate: %w", id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to deactivate work zone in repository")
		return fmt.Errorf("service: could not deactivate work zone: %w", err)
	}
	if err := s.repo.InvalidateZoneCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate work zone cache")
	}

	log.Info("Work zone deactivated successfully")
	return nil
}

// ListZones возвращает список зон с пагинацией
func (s *zoneService) ListZones(ctx context.Context, page, pageSize int) ([]*models.WorkZone, error) {
	page, pageSize = normalizePage(page, pageSize)

	log := s.logger.WithFields(logrus.Fields{
		"service":   "zone",
		"method":    "ListZones",
		"page":      page,
		"page_size": pageSize,
	})
	log.Info("Listing work zones")

	zones, err := s.repo.ListZones(ctx, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list work zones from repository")
		return nil, fmt.Errorf("service: could not list work zones: %w", err)
	}

	log.WithField("count", len(zones)).Info("Work zones listed successfully")
	return zones, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
