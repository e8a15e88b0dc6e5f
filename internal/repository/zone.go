package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DigitariaWebs/Safyr-sub007/internal/models"
	"github.com/DigitariaWebs/Safyr-sub007/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const zoneColumns = `
			id,
			label,
			ST_Y(center::geometry) AS latitude,
			ST_X(center::geometry) AS longitude,
			radius_meters,
			geohash,
			status,
			created_at,
			updated_at`

type ZoneRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewZoneRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.ZoneRepository {
	return &ZoneRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

// Create создает новую рабочую зону в бд
func (r *ZoneRepository) Create(ctx context.Context, zone *models.WorkZone) error {
	query := `
		INSERT INTO work_zones (label, center, radius_meters, geohash, status)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4, $5, $6)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		zone.Label,
		zone.Center.Longitude,
		zone.Center.Latitude,
		zone.RadiusMeters,
		zone.Geohash,
		zone.Status,
	).Scan(&zone.ID, &zone.CreatedAt, &zone.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create work zone: %w", err)
	}
	return nil
}

// GetByID возвращает зону по ее UUID
func (r *ZoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WorkZone, error) {
	query := `SELECT` + zoneColumns + `
		FROM work_zones
		WHERE id = $1;
	`
	zone, err := scanZone(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("work zone with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get work zone by id: %w", err)
	}
	return zone, nil
}

func (r *ZoneRepository) Update(ctx context.Context, zone *models.WorkZone) error {
	query := `
		UPDATE work_zones SET
			label = $1,
			center = ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography,
			radius_meters = $4,
			geohash = $5,
			status = $6,
			updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		zone.Label,
		zone.Center.Longitude,
		zone.Center.Latitude,
		zone.RadiusMeters,
		zone.Geohash,
		zone.Status,
		zone.ID,
	).Scan(&zone.UpdatedAt)
	if err != nil {
		// Ни одна строка не обновлена - зоны с таким id не существует
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("work zone with id %s for update: %w", zone.ID, models.ErrNotFound)
		}
		return fmt.Errorf("failed to update work zone: %w", err)
	}
	return nil
}

// Delete (деактивация) устанавливает статус 'inactive' для зоны
func (r *ZoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE work_zones SET
			status = 'inactive',
			updated_at = NOW()
		WHERE id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate work zone: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("work zone with id %s for deactivate: %w", id, models.ErrNotFound)
	}
	return nil
}

// ListZones возвращает список зон с пагинацией
func (r *ZoneRepository) ListZones(ctx context.Context, page, pageSize int) ([]*models.WorkZone, error) {
	offset := (page - 1) * pageSize

	query := `SELECT` + zoneColumns + `
		FROM work_zones
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list work zones: %w", err)
	}
	defer rows.Close()

	zones := make([]*models.WorkZone, 0)
	for rows.Next() {
		zone, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work zone row: %w", err)
		}
		zones = append(zones, zone)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return zones, nil
}

// GetZoneFromCache пытается получить зону из Redis, промах возвращает nil, nil
func (r *ZoneRepository) GetZoneFromCache(ctx context.Context, id uuid.UUID) (*models.WorkZone, error) {
	val, err := r.redisClient.Get(ctx, zoneCacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get work zone from cache: %w", err)
	}

	zone := &models.WorkZone{}
	if err := json.Unmarshal(val, zone); err != nil {
		return nil, fmt.Errorf("failed to unmarshal work zone from cache: %w", err)
	}
	return zone, nil
}

// SetZoneCache сохраняет зону в Redis
func (r *ZoneRepository) SetZoneCache(ctx context.Context, zone *models.WorkZone) error {
	val, err := json.Marshal(zone)
	if err != nil {
		return fmt.Errorf("failed to marshal work zone for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, zoneCacheKey(zone.ID), val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set work zone in cache: %w", err)
	}
	return nil
}

// InvalidateZoneCache удаляет зону из Redis кэша
func (r *ZoneRepository) InvalidateZoneCache(ctx context.Context, id uuid.UUID) error {
	if err := r.redisClient.Del(ctx, zoneCacheKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate work zone cache: %w", err)
	}
	return nil
}

func zoneCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("workzone:%s", id.String())
}

func scanZone(row pgx.Row) (*models.WorkZone, error) {
	zone := &models.WorkZone{}
	err := row.Scan(
		&zone.ID,
		&zone.Label,
		&zone.Center.Latitude,
		&zone.Center.Longitude,
		&zone.RadiusMeters,
		&zone.Geohash,
		&zone.Status,
		&zone.CreatedAt,
		&zone.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return zone, nil
}
