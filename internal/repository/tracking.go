package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DigitariaWebs/Safyr-sub007/internal/models"
	"github.com/DigitariaWebs/Safyr-sub007/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TrackingRepository struct {
	db *pgxpool.Pool
}

func NewTrackingRepository(db *pgxpool.Pool) service.TrackingRepository {
	return &TrackingRepository{db: db}
}

// SavePosition сохраняет полученную позицию агента
func (r *TrackingRepository) SavePosition(ctx context.Context, position *models.AgentPosition) error {
	query := `
		INSERT INTO agent_positions (agent_id, location, accuracy_meters, outside)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4, $5)
		RETURNING id, checked_at;
	`
	err := r.db.QueryRow(ctx, query,
		position.AgentID,
		position.Longitude,
		position.Latitude,
		position.Accuracy,
		position.Outside,
	).Scan(&position.ID, &position.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to save agent position: %w", err)
	}
	return nil
}

// SaveAlert сохраняет уведомление о превышении порога
func (r *TrackingRepository) SaveAlert(ctx context.Context, alert *models.ZoneAlert) error {
	query := `
		INSERT INTO zone_alerts (id, agent_id, zone_id, title, message, severity, distance_meters, outside_for_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db.Exec(ctx, query,
		alert.ID,
		alert.AgentID,
		alert.ZoneID,
		alert.Title,
		alert.Message,
		alert.Severity,
		alert.DistanceMeters,
		alert.OutsideFor.Milliseconds(),
		alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save zone alert: %w", err)
	}
	return nil
}

// ListAlerts возвращает уведомления, новые первыми. Пустой agentID - все агенты.
func (r *TrackingRepository) ListAlerts(ctx context.Context, agentID string, page, pageSize int) ([]*models.ZoneAlert, error) {
	offset := (page - 1) * pageSize

	query := `
		SELECT id, agent_id, zone_id, title, message, severity, distance_meters, outside_for_ms, created_at
		FROM zone_alerts
		WHERE ($1 = '' OR agent_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, agentID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list zone alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*models.ZoneAlert, 0)
	for rows.Next() {
		alert := &models.ZoneAlert{}
		var outsideForMs int64
		err := rows.Scan(
			&alert.ID,
			&alert.AgentID,
			&alert.ZoneID,
			&alert.Title,
			&alert.Message,
			&alert.Severity,
			&alert.DistanceMeters,
			&outsideForMs,
			&alert.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan zone alert row: %w", err)
		}
		alert.OutsideFor = time.Duration(outsideForMs) * time.Millisecond
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in ListAlerts: %w", err)
	}
	return alerts, nil
}

// GetPositionStats возвращает количество уникальных агентов, передавших позицию за последние minutes минут
func (r *TrackingRepository) GetPositionStats(ctx context.Context, minutes int) (int, error) {
	query := `
		SELECT COUNT(DISTINCT agent_id)
		FROM agent_positions
		WHERE checked_at >= NOW() - ($1 * INTERVAL '1 minute');
	`
	var count int
	err := r.db.QueryRow(ctx, query, minutes).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get position stats: %w", err)
	}
	return count, nil
}
