package service

//go:generate mockgen -source=tracking.go -destination=mocks/mock_tracking.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DigitariaWebs/Safyr-sub007/internal/config"
	"github.com/DigitariaWebs/Safyr-sub007/internal/metrics"
	"github.com/DigitariaWebs/Safyr-sub007/internal/models"
	"github.com/DigitariaWebs/Safyr-sub007/internal/monitor"
	"github.com/DigitariaWebs/Safyr-sub007/internal/webhook"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TrackingRepository определяет контракт хранения позиций и уведомлений
type TrackingRepository interface {
	SavePosition(ctx context.Context, position *models.AgentPosition) error
	SaveAlert(ctx context.Context, alert *models.ZoneAlert) error
	ListAlerts(ctx context.Context, agentID string, page, pageSize int) ([]*models.ZoneAlert, error)
	GetPositionStats(ctx context.Context, minutes int) (int, error)
}

// TrackingService определяет контракт наблюдения за агентами в рабочих зонах
type TrackingService interface {
	StartMonitoring(ctx context.Context, agentID string, zoneID uuid.UUID, threshold time.Duration) (*models.MonitoringStatus, error)
	StopMonitoring(ctx context.Context, agentID string, zoneID uuid.UUID) (*models.MonitoringStatus, error)
	ReportPosition(ctx context.Context, agentID string, position *monitor.Position) ([]*models.MonitoringStatus, error)
	GetStatus(ctx context.Context, agentID string) ([]*models.MonitoringStatus, error)
	ListAlerts(ctx context.Context, agentID string, page, pageSize int) ([]*models.ZoneAlert, error)
	GetStats(ctx context.Context) (int, error)
}

// session - наблюдение одного агента в одной зоне
type session struct {
	mu        sync.Mutex
	agentID   string
	zone      *models.WorkZone
	threshold time.Duration
	mon       *monitor.Monitor
	stopped   bool
}

func (s *session) input(position *monitor.Position, onExceeded func(float64)) monitor.Input {
	return monitor.Input{
		Enabled:             true,
		Position:            position,
		Zone:                s.zone,
		DwellThreshold:      s.threshold,
		OnThresholdExceeded: onExceeded,
	}
}

func (s *session) status(st monitor.Status) *models.MonitoringStatus {
	return &models.MonitoringStatus{
		AgentID:        s.agentID,
		ZoneID:         s.zone.ID,
		ZoneLabel:      s.zone.Label,
		Enabled:        !s.stopped,
		DwellThreshold: s.threshold,
		Outside:        st.Outside,
		DistanceMeters: st.DistanceMeters,
		OutsideFor:     st.OutsideFor,
		AlertRaised:    s.mon.State().ThresholdFired,
	}
}

type trackingService struct {
	zones     ZoneService
	repo      TrackingRepository
	publisher webhook.WebhookPublisher
	metrics   *metrics.MonitorCollector
	clock     monitor.Clock
	logger    *logrus.Logger
	cfg       *config.Config

	mu       sync.RWMutex
	sessions map[string]map[uuid.UUID]*session
}

func NewTrackingService(
	zones ZoneService,
	repo TrackingRepository,
	publisher webhook.WebhookPublisher,
	collector *metrics.MonitorCollector,
	clock monitor.Clock,
	logger *logrus.Logger,
	cfg *config.Config,
) TrackingService {
	if clock == nil {
		clock = monitor.SystemClock{}
	}
	return &trackingService{
		zones:     zones,
		repo:      repo,
		publisher: publisher,
		metrics:   collector,
		clock:     clock,
		logger:    logger,
		cfg:       cfg,
		sessions:  make(map[string]map[uuid.UUID]*session),
	}
}

// StartMonitoring включает наблюдение агента в зоне
func (s *trackingService) StartMonitoring(ctx context.Context, agentID string, zoneID uuid.UUID, threshold time.Duration) (*models.MonitoringStatus, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "tracking",
		"method":   "StartMonitoring",
		"agent_id": agentID,
		"zone_id":  zoneID,
	})
	log.Info("Starting work zone monitoring")

	zone, err := s.zones.GetZone(ctx, zoneID)
	if err != nil {
		log.WithError(err).Warn("Failed to load work zone")
		return nil, fmt.Errorf("service: could not start monitoring: %w", err)
	}
	if zone.Status != models.ZoneStatusActive {
		log.Warn("Attempted to monitor an inactive work zone")
		return nil, fmt.Errorf("service: could not start monitoring: %w", models.ErrZoneInactive)
	}
	if threshold <= 0 {
		threshold = s.cfg.DwellThreshold
	}

	s.mu.Lock()
	agentSessions, ok := s.sessions[agentID]
	if !ok {
		agentSessions = make(map[uuid.UUID]*session)
		s.sessions[agentID] = agentSessions
	}
	sess, exists := agentSessions[zoneID]
	if !exists {
		sess = &session{
			agentID:   agentID,
			zone:      zone,
			threshold: threshold,
			mon:       monitor.New(s.clock),
		}
		agentSessions[zoneID] = sess
	}
	active := s.countSessionsLocked()
	// сессию блокируем до освобождения s.mu, иначе параллельный Stop успеет её выключить
	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.mu.Unlock()
	s.metrics.SetActiveSessions(active)

	if exists {
		// Геометрия зоны изменилась - текущий выход больше не имеет смысла
		if sess.zone.Center != zone.Center || sess.zone.RadiusMeters != zone.RadiusMeters {
			sess.mon = monitor.New(s.clock)
		}
		sess.zone = zone
		sess.threshold = threshold
	}

	st := sess.mon.Evaluate(sess.input(nil, nil))
	log.WithFields(logrus.Fields{
		"threshold": threshold,
		"restarted": exists,
	}).Info("Work zone monitoring started")
	return sess.status(st), nil
}

// StopMonitoring выключает наблюдение и сбрасывает состояние
func (s *trackingService) StopMonitoring(ctx context.Context, agentID string, zoneID uuid.UUID) (*models.MonitoringStatus, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "tracking",
		"method":   "StopMonitoring",
		"agent_id": agentID,
		"zone_id":  zoneID,
	})
	log.Info("Stopping work zone monitoring")

	s.mu.Lock()
	sess, ok := s.sessions[agentID][zoneID]
	if ok {
		delete(s.sessions[agentID], zoneID)
		if len(s.sessions[agentID]) == 0 {
			delete(s.sessions, agentID)
		}
	}
	active := s.countSessionsLocked()
	s.mu.Unlock()

	if !ok {
		log.Warn("No monitoring session to stop")
		return nil, fmt.Errorf("service: could not stop monitoring: %w", models.ErrSessionNotFound)
	}
	s.metrics.SetActiveSessions(active)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.stopped = true
	st := sess.mon.Evaluate(monitor.Input{Enabled: false, Zone: sess.zone})

	log.Info("Work zone monitoring stopped")
	return sess.status(st), nil
}

// ReportPosition оценивает новую позицию агента во всех его зонах.
// position == nil означает отсутствие фиксации, состояние при этом не меняется.
func (s *trackingService) ReportPosition(ctx context.Context, agentID string, position *monitor.Position) ([]*models.MonitoringStatus, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "tracking",
		"method":   "ReportPosition",
		"agent_id": agentID,
		"has_fix":  position != nil,
	})
	log.Debug("Evaluating agent position")

	sessions := s.agentSessions(agentID)
	statuses := make([]*models.MonitoringStatus, 0, len(sessions))
	var errs []error
	anyOutside := false

	for _, sess := range sessions {
		status, alert := s.evaluate(sess, position)
		if status == nil {
			continue
		}
		statuses = append(statuses, status)
		anyOutside = anyOutside || status.Outside
		s.metrics.ObserveEvaluation(position != nil, status.Outside)

		if alert != nil {
			if err := s.raiseAlert(ctx, alert, position); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if position != nil {
		record := &models.AgentPosition{
			AgentID:   agentID,
			Latitude:  position.Point.Latitude,
			Longitude: position.Point.Longitude,
			Accuracy:  position.Accuracy,
			Outside:   anyOutside,
		}
		if err := s.repo.SavePosition(ctx, record); err != nil {
			log.WithError(err).Warn("Failed to save agent position")
		}
	}

	if err := errors.Join(errs...); err != nil {
		log.WithError(err).Error("Failed to raise work zone alerts")
		return statuses, fmt.Errorf("service: could not raise alerts: %w", err)
	}

	log.WithField("sessions", len(statuses)).Debug("Agent position evaluated")
	return statuses, nil
}

// evaluate применяет позицию к сессии и возвращает уведомление, если порог превышен
func (s *trackingService) evaluate(sess *session, position *monitor.Position) (*models.MonitoringStatus, *models.ZoneAlert) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.stopped {
		return nil, nil
	}

	exceeded := false
	var distance float64
	st := sess.mon.Evaluate(sess.input(position, func(d float64) {
		exceeded = true
		distance = d
	}))
	status := sess.status(st)
	if !exceeded {
		return status, nil
	}

	var outsideFor time.Duration
	if st.OutsideFor != nil {
		outsideFor = *st.OutsideFor
	}
	return status, buildAlert(sess.agentID, sess.zone, distance, outsideFor, s.clock.Now())
}

func (s *trackingService) raiseAlert(ctx context.Context, alert *models.ZoneAlert, position *monitor.Position) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "tracking",
		"method":   "raiseAlert",
		"agent_id": alert.AgentID,
		"zone_id":  alert.ZoneID,
		"distance": alert.DistanceMeters,
	})
	log.Warn("Agent exceeded work zone dwell threshold")
	s.metrics.IncAlerts()

	if err := s.repo.SaveAlert(ctx, alert); err != nil {
		// повторной записи нет, уведомление остаётся только в логе
		log.WithError(err).WithFields(logrus.Fields{
			"alert_id":    alert.ID,
			"title":       alert.Title,
			"message":     alert.Message,
			"severity":    alert.Severity,
			"outside_for": alert.OutsideFor,
			"latitude":    position.Point.Latitude,
			"longitude":   position.Point.Longitude,
			"created_at":  alert.CreatedAt,
		}).Error("Failed to save work zone alert")
		return fmt.Errorf("failed to save alert for agent %s: %w", alert.AgentID, err)
	}

	event := webhook.AlertEvent{
		AlertID:        alert.ID,
		AgentID:        alert.AgentID,
		ZoneID:         alert.ZoneID,
		Title:          alert.Title,
		Message:        alert.Message,
		Severity:       alert.Severity,
		DistanceMeters: alert.DistanceMeters,
		OutsideForMs:   alert.OutsideFor.Milliseconds(),
		Latitude:       position.Point.Latitude,
		Longitude:      position.Point.Longitude,
		Timestamp:      alert.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		// уведомление уже сохранено, доставку вебхука не повторяем
		log.WithError(err).Warn("Failed to publish work zone alert webhook")
	}
	return nil
}

func buildAlert(agentID string, zone *models.WorkZone, distance float64, outsideFor time.Duration, now time.Time) *models.ZoneAlert {
	return &models.ZoneAlert{
		ID:       uuid.New(),
		AgentID:  agentID,
		ZoneID:   zone.ID,
		Title:    "Agent hors zone de travail",
		Severity: models.SeverityHigh,
		Message: fmt.Sprintf("Agent %s is %.0f m away from work zone %q (radius %.0f m) for %s",
			agentID, math.Round(distance), zone.Label, zone.RadiusMeters, outsideFor.Round(time.Second)),
		DistanceMeters: distance,
		OutsideFor:     outsideFor,
		CreatedAt:      now,
	}
}

// GetStatus возвращает состояние всех наблюдений агента без их изменения
func (s *trackingService) GetStatus(ctx context.Context, agentID string) ([]*models.MonitoringStatus, error) {
	sessions := s.agentSessions(agentID)
	statuses := make([]*models.MonitoringStatus, 0, len(sessions))
	for _, sess := range sessions {
		sess.mu.Lock()
		if !sess.stopped {
			statuses = append(statuses, sess.status(sess.mon.Status()))
		}
		sess.mu.Unlock()
	}
	return statuses, nil
}

// ListAlerts возвращает уведомления с пагинацией, agentID может быть пустым
func (s *trackingService) ListAlerts(ctx context.Context, agentID string, page, pageSize int) ([]*models.ZoneAlert, error) {
	page, pageSize = normalizePage(page, pageSize)

	log := s.logger.WithFields(logrus.Fields{
		"service":   "tracking",
		"method":    "ListAlerts",
		"agent_id":  agentID,
		"page":      page,
		"page_size": pageSize,
	})
	log.Info("Listing work zone alerts")

	alerts, err := s.repo.ListAlerts(ctx, agentID, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list alerts from repository")
		return nil, fmt.Errorf("service: could not list alerts: %w", err)
	}
	return alerts, nil
}

// GetStats возвращает число агентов, передававших позицию в окне статистики
func (s *trackingService) GetStats(ctx context.Context) (int, error) {
	count, err := s.repo.GetPositionStats(ctx, s.cfg.StatsTimeWindowMinutes)
	if err != nil {
		s.logger.WithError(err).WithField("method", "GetStats").Error("Failed to get position stats")
		return 0, fmt.Errorf("service: could not get stats: %w", err)
	}
	return count, nil
}

// agentSessions возвращает сессии агента, упорядоченные по ID зоны
func (s *trackingService) agentSessions(agentID string) []*session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byZone := s.sessions[agentID]
	ids := make([]uuid.UUID, 0, len(byZone))
	for id := range byZone {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })

	out := make([]*session, 0, len(ids))
	for _, id := range ids {
		out = append(out, byZone[id])
	}
	return out
}

func (s *trackingService) countSessionsLocked() int {
	n := 0
	for _, byZone := range s.sessions {
		n += len(byZone)
	}
	return n
}
