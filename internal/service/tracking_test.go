package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DigitariaWebs/Safyr-sub007/internal/config"
	"github.com/DigitariaWebs/Safyr-sub007/internal/metrics"
	"github.com/DigitariaWebs/Safyr-sub007/internal/models"
	"github.com/DigitariaWebs/Safyr-sub007/internal/monitor"
	"github.com/DigitariaWebs/Safyr-sub007/internal/service/mocks"
	"github.com/DigitariaWebs/Safyr-sub007/internal/webhook"
	webhook_mocks "github.com/DigitariaWebs/Safyr-sub007/internal/webhook/mocks"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type trackingFixture struct {
	svc       *trackingService
	zones     *mocks.MockZoneService
	repo      *mocks.MockTrackingRepository
	publisher *webhook_mocks.MockWebhookPublisher
	collector *metrics.MonitorCollector
	clock     *testClock
	zone      *models.WorkZone
}

var (
	parisCenter = models.GeoPoint{Latitude: 48.8566, Longitude: 2.3522}
	parisNorth  = models.GeoPoint{Latitude: 48.8650, Longitude: 2.3522}
)

// newTestTrackingService - сервис с моками и управляемыми часами
func newTestTrackingService(t *testing.T) *trackingFixture {
	ctrl := gomock.NewController(t)
	zonesMock := mocks.NewMockZoneService(ctrl)
	repoMock := mocks.NewMockTrackingRepository(ctrl)
	publisherMock := webhook_mocks.NewMockWebhookPublisher(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	collector, err := metrics.NewMonitorCollector(prometheus.NewRegistry())
	require.NoError(t, err)

	cfg := &config.Config{
		DwellThreshold:         5 * time.Minute,
		StatsTimeWindowMinutes: 60,
	}
	clock := &testClock{now: time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)}

	svc := NewTrackingService(zonesMock, repoMock, publisherMock, collector, clock, logger, cfg)
	return &trackingFixture{
		svc:       svc.(*trackingService),
		zones:     zonesMock,
		repo:      repoMock,
		publisher: publisherMock,
		collector: collector,
		clock:     clock,
		zone: &models.WorkZone{
			ID:           uuid.New(),
			Label:        "Site Paris Centre",
			Center:       parisCenter,
			RadiusMeters: 450,
			Status:       models.ZoneStatusActive,
		},
	}
}

func (f *trackingFixture) start(t *testing.T, agentID string, threshold time.Duration) {
	f.zones.EXPECT().GetZone(gomock.Any(), f.zone.ID).Return(f.zone, nil).Times(1)
	status, err := f.svc.StartMonitoring(context.Background(), agentID, f.zone.ID, threshold)
	require.NoError(t, err)
	require.True(t, status.Enabled)
}

func at(p models.GeoPoint) *monitor.Position {
	return &monitor.Position{Point: p}
}

func TestStartMonitoring_Success(t *testing.T) {
	f := newTestTrackingService(t)
	f.zones.EXPECT().GetZone(gomock.Any(), f.zone.ID).Return(f.zone, nil).Times(1)

	status, err := f.svc.StartMonitoring(context.Background(), "agent-1", f.zone.ID, 0)

	require.NoError(t, err)
	assert.Equal(t, "agent-1", status.AgentID)
	assert.Equal(t, f.zone.ID, status.ZoneID)
	assert.Equal(t, 5*time.Minute, status.DwellThreshold)
	assert.False(t, status.Outside)
	assert.Nil(t, status.DistanceMeters)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.collector.ActiveSessions))
}

func TestStartMonitoring_InactiveZone(t *testing.T) {
	f := newTestTrackingService(t)
	f.zone.Status = models.ZoneStatusInactive
	f.zones.EXPECT().GetZone(gomock.Any(), f.zone.ID).Return(f.zone, nil).Times(1)

	status, err := f.svc.StartMonitoring(context.Background(), "agent-1", f.zone.ID, 0)

	assert.Nil(t, status)
	assert.ErrorIs(t, err, models.ErrZoneInactive)
}

func TestStartMonitoring_ZoneNotFound(t *testing.T) {
	f := newTestTrackingService(t)
	f.zones.EXPECT().GetZone(gomock.Any(), f.zone.ID).Return(nil, models.ErrNotFound).Times(1)

	_, err := f.svc.StartMonitoring(context.Background(), "agent-1", f.zone.ID, 0)

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReportPosition_FiresAlertOnce(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()
	f.start(t, "agent-1", 2*time.Minute)

	f.repo.EXPECT().SavePosition(ctx, gomock.Any()).Return(nil).AnyTimes()
	f.repo.EXPECT().
		SaveAlert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, alert *models.ZoneAlert) error {
			assert.Equal(t, "agent-1", alert.AgentID)
			assert.Equal(t, f.zone.ID, alert.ZoneID)
			assert.Equal(t, models.SeverityHigh, alert.Severity)
			assert.InDelta(t, 934, alert.DistanceMeters, 3)
			assert.Equal(t, 130*time.Second, alert.OutsideFor)
			assert.Contains(t, alert.Message, "Site Paris Centre")
			return nil
		}).Times(1)
	f.publisher.EXPECT().
		Publish(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, event webhook.AlertEvent) error {
			assert.Equal(t, int64(130000), event.OutsideForMs)
			assert.Equal(t, parisNorth.Latitude, event.Latitude)
			return nil
		}).Times(1)

	for i := 0; i < 5; i++ {
		statuses, err := f.svc.ReportPosition(ctx, "agent-1", at(parisNorth))
		require.NoError(t, err)
		require.Len(t, statuses, 1)
		assert.True(t, statuses[0].Outside)
		f.clock.Advance(65 * time.Second)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(f.collector.AlertsTotal))
	assert.Equal(t, 5.0, testutil.ToFloat64(f.collector.EvaluationsTotal.WithLabelValues("outside")))
}

func TestReportPosition_SavesPositionWithOutsideFlag(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()
	f.start(t, "agent-1", 0)
	accuracy := 12.5

	f.repo.EXPECT().
		SavePosition(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, p *models.AgentPosition) error {
			assert.Equal(t, "agent-1", p.AgentID)
			assert.Equal(t, parisNorth.Latitude, p.Latitude)
			assert.True(t, p.Outside)
			require.NotNil(t, p.Accuracy)
			assert.Equal(t, accuracy, *p.Accuracy)
			return nil
		}).Times(1)

	_, err := f.svc.ReportPosition(ctx, "agent-1", &monitor.Position{Point: parisNorth, Accuracy: &accuracy})
	require.NoError(t, err)
}

func TestReportPosition_SavePositionErrorIsNotFatal(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()
	f.start(t, "agent-1", 0)

	f.repo.EXPECT().SavePosition(ctx, gomock.Any()).Return(errors.New("db error")).Times(1)

	statuses, err := f.svc.ReportPosition(ctx, "agent-1", at(parisCenter))
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Outside)
}

func TestReportPosition_NoFixFreezesAndSkipsPersistence(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()
	f.start(t, "agent-1", 2*time.Minute)

	f.repo.EXPECT().SavePosition(ctx, gomock.Any()).Return(nil).Times(2)
	f.repo.EXPECT().SaveAlert(ctx, gomock.Any()).Return(nil).Times(1)
	f.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	_, err := f.svc.ReportPosition(ctx, "agent-1", at(parisNorth))
	require.NoError(t, err)

	// потеря сигнала: состояние заморожено, время продолжает идти
	f.clock.Advance(90 * time.Second)
	statuses, err := f.svc.ReportPosition(ctx, "agent-1", nil)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Outside)
	require.NotNil(t, statuses[0].OutsideFor)
	assert.Equal(t, 90*time.Second, *statuses[0].OutsideFor)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.collector.EvaluationsTotal.WithLabelValues("no_fix")))

	f.clock.Advance(40 * time.Second)
	_, err = f.svc.ReportPosition(ctx, "agent-1", at(parisNorth))
	require.NoError(t, err)
}

func TestReportPosition_AlertSaveError(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()
	f.start(t, "agent-1", time.Second)

	f.repo.EXPECT().SavePosition(ctx, gomock.Any()).Return(nil).AnyTimes()
	f.repo.EXPECT().SaveAlert(ctx, gomock.Any()).Return(errors.New("db error")).Times(1)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	_, err := f.svc.ReportPosition(ctx, "agent-1", at(parisNorth))
	require.NoError(t, err)
	f.clock.Advance(time.Second)

	statuses, err := f.svc.ReportPosition(ctx, "agent-1", at(parisNorth))
	assert.ErrorContains(t, err, "could not raise alerts")
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].AlertRaised)
}

func TestReportPosition_AlertSaveErrorLogsPayload(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()
	f.start(t, "agent-1", time.Second)

	var saved *models.ZoneAlert
	f.repo.EXPECT().SavePosition(ctx, gomock.Any()).Return(nil).AnyTimes()
	f.repo.EXPECT().
		SaveAlert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, alert *models.ZoneAlert) error {
			saved = alert
			return errors.New("db error")
		}).Times(1)

	_, err := f.svc.ReportPosition(ctx, "agent-1", at(parisNorth))
	require.NoError(t, err)
	f.clock.Advance(time.Second)

	var buf bytes.Buffer
	f.svc.logger.SetOutput(&buf)
	f.svc.logger.SetFormatter(&logrus.JSONFormatter{})

	_, err = f.svc.ReportPosition(ctx, "agent-1", at(parisNorth))
	require.Error(t, err)
	require.NotNil(t, saved)

	var entry map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var e map[string]any
		require.NoError(t, json.Unmarshal(line, &e))
		if e["msg"] == "Failed to save work zone alert" {
			entry = e
		}
	}
	require.NotNil(t, entry, "save failure must be logged")
	assert.Equal(t, saved.ID.String(), entry["alert_id"])
	assert.Equal(t, saved.Title, entry["title"])
	assert.Equal(t, saved.Message, entry["message"])
	assert.Equal(t, saved.Severity, entry["severity"])
	assert.Equal(t, parisNorth.Latitude, entry["latitude"])
	assert.Equal(t, "db error", entry["error"])
}

func TestReportPosition_PublishErrorIsNotFatal(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()
	f.start(t, "agent-1", time.Second)

	f.repo.EXPECT().SavePosition(ctx, gomock.Any()).Return(nil).AnyTimes()
	f.repo.EXPECT().SaveAlert(ctx, gomock.Any()).Return(nil).Times(1)
	f.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(errors.New("redis down")).Times(1)

	_, err := f.svc.ReportPosition(ctx, "agent-1", at(parisNorth))
	require.NoError(t, err)
	f.clock.Advance(time.Second)

	_, err = f.svc.ReportPosition(ctx, "agent-1", at(parisNorth))
	require.NoError(t, err)
}

func TestReportPosition_UnknownAgent(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()

	f.repo.EXPECT().SavePosition(ctx, gomock.Any()).Return(nil).Times(1)

	statuses, err := f.svc.ReportPosition(ctx, "nobody", at(parisCenter))
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestReportPosition_AgentsAreIndependent(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()
	f.zones.EXPECT().GetZone(gomock.Any(), f.zone.ID).Return(f.zone, nil).Times(2)
	_, err := f.svc.StartMonitoring(ctx, "agent-1", f.zone.ID, time.Minute)
	require.NoError(t, err)
	_, err = f.svc.StartMonitoring(ctx, "agent-2", f.zone.ID, time.Minute)
	require.NoError(t, err)

	f.repo.EXPECT().SavePosition(ctx, gomock.Any()).Return(nil).AnyTimes()

	_, err = f.svc.ReportPosition(ctx, "agent-1", at(parisNorth))
	require.NoError(t, err)
	_, err = f.svc.ReportPosition(ctx, "agent-2", at(parisCenter))
	require.NoError(t, err)

	statuses, err := f.svc.GetStatus(ctx, "agent-2")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Outside)

	statuses, err = f.svc.GetStatus(ctx, "agent-1")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Outside)
}

func TestStopMonitoring_ResetsState(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()
	f.start(t, "agent-1", 2*time.Minute)

	f.repo.EXPECT().SavePosition(ctx, gomock.Any()).Return(nil).AnyTimes()
	f.repo.EXPECT().SaveAlert(gomock.Any(), gomock.Any()).Times(0)

	_, err := f.svc.ReportPosition(ctx, "agent-1", at(parisNorth))
	require.NoError(t, err)
	f.clock.Advance(130 * time.Second)

	status, err := f.svc.StopMonitoring(ctx, "agent-1", f.zone.ID)
	require.NoError(t, err)
	assert.False(t, status.Enabled)
	assert.False(t, status.Outside)
	assert.Nil(t, status.DistanceMeters)
	assert.Nil(t, status.OutsideFor)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.collector.ActiveSessions))

	// после остановки позиции не оцениваются
	statuses, err := f.svc.ReportPosition(ctx, "agent-1", at(parisNorth))
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestStopMonitoring_NoSession(t *testing.T) {
	f := newTestTrackingService(t)

	_, err := f.svc.StopMonitoring(context.Background(), "agent-1", uuid.New())

	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestStartMonitoring_RestartKeepsExcursion(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()
	f.start(t, "agent-1", 10*time.Minute)

	f.repo.EXPECT().SavePosition(ctx, gomock.Any()).Return(nil).AnyTimes()
	_, err := f.svc.ReportPosition(ctx, "agent-1", at(parisNorth))
	require.NoError(t, err)
	f.clock.Advance(time.Minute)

	// тот же центр и радиус, меняется только порог
	f.start(t, "agent-1", 2*time.Minute)
	statuses, err := f.svc.GetStatus(ctx, "agent-1")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	require.NotNil(t, statuses[0].OutsideFor)
	assert.Equal(t, time.Minute, *statuses[0].OutsideFor)
	assert.Equal(t, 2*time.Minute, statuses[0].DwellThreshold)
}

func TestStartMonitoring_RestartWithMovedZoneResets(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()
	f.start(t, "agent-1", 10*time.Minute)

	f.repo.EXPECT().SavePosition(ctx, gomock.Any()).Return(nil).AnyTimes()
	_, err := f.svc.ReportPosition(ctx, "agent-1", at(parisNorth))
	require.NoError(t, err)

	moved := *f.zone
	moved.RadiusMeters = 1000
	f.zone = &moved
	f.start(t, "agent-1", 10*time.Minute)

	statuses, err := f.svc.GetStatus(ctx, "agent-1")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Outside)
	assert.Nil(t, statuses[0].OutsideFor)
}

func TestReportPosition_ConcurrentAgents(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()
	agents := []string{"agent-1", "agent-2", "agent-3", "agent-4"}
	f.zones.EXPECT().GetZone(gomock.Any(), f.zone.ID).Return(f.zone, nil).Times(len(agents))
	for _, a := range agents {
		_, err := f.svc.StartMonitoring(ctx, a, f.zone.ID, time.Hour)
		require.NoError(t, err)
	}
	f.repo.EXPECT().SavePosition(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	var wg sync.WaitGroup
	for _, a := range agents {
		wg.Add(1)
		go func(agentID string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, err := f.svc.ReportPosition(ctx, agentID, at(parisNorth))
				assert.NoError(t, err)
			}
		}(a)
	}
	wg.Wait()

	assert.Equal(t, 200.0, testutil.ToFloat64(f.collector.EvaluationsTotal.WithLabelValues("outside")))
}

func TestStartMonitoring_ConcurrentStopNeverDisables(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()
	f.zones.EXPECT().GetZone(gomock.Any(), f.zone.ID).Return(f.zone, nil).AnyTimes()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			status, err := f.svc.StartMonitoring(ctx, "agent-1", f.zone.ID, time.Minute)
			if assert.NoError(t, err) {
				assert.True(t, status.Enabled)
			}
		}()
		go func() {
			defer wg.Done()
			status, err := f.svc.StopMonitoring(ctx, "agent-1", f.zone.ID)
			if err != nil {
				assert.ErrorIs(t, err, models.ErrSessionNotFound)
				return
			}
			assert.False(t, status.Enabled)
		}()
	}
	wg.Wait()

	status, err := f.svc.StartMonitoring(ctx, "agent-1", f.zone.ID, time.Minute)
	require.NoError(t, err)
	require.True(t, status.Enabled)
	statuses, err := f.svc.GetStatus(ctx, "agent-1")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Enabled)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.collector.ActiveSessions))
}

func TestListAlerts_NormalizesPaging(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()
	alerts := []*models.ZoneAlert{{ID: uuid.New(), AgentID: "agent-1"}}

	f.repo.EXPECT().ListAlerts(ctx, "agent-1", 1, 20).Return(alerts, nil).Times(1)

	result, err := f.svc.ListAlerts(ctx, "agent-1", -3, 0)
	require.NoError(t, err)
	assert.Equal(t, alerts, result)
}

func TestListAlerts_RepositoryError(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()

	f.repo.EXPECT().ListAlerts(ctx, "", 1, 10).Return(nil, errors.New("db error")).Times(1)

	_, err := f.svc.ListAlerts(ctx, "", 1, 10)
	assert.ErrorContains(t, err, "could not list alerts")
}

func TestGetStats(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()

	f.repo.EXPECT().GetPositionStats(ctx, 60).Return(7, nil).Times(1)

	count, err := f.svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestGetStats_Error(t *testing.T) {
	f := newTestTrackingService(t)
	ctx := context.Background()

	f.repo.EXPECT().GetPositionStats(ctx, 60).Return(0, errors.New("db error")).Times(1)

	_, err := f.svc.GetStats(ctx)
	assert.ErrorContains(t, err, "could not get stats")
}

func TestBuildAlert(t *testing.T) {
	zone := &models.WorkZone{ID: uuid.New(), Label: "Site Paris Centre", RadiusMeters: 450}
	now := time.Date(2026, time.March, 2, 8, 2, 10, 0, time.UTC)

	alert := buildAlert("agent-9", zone, 933.6, 130*time.Second, now)

	assert.NotEqual(t, uuid.Nil, alert.ID)
	assert.Equal(t, now, alert.CreatedAt)
	assert.Equal(t, `Agent agent-9 is 934 m away from work zone "Site Paris Centre" (radius 450 m) for 2m10s`, alert.Message)
}
