package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DigitariaWebs/Safyr-sub007/internal/config"
	"github.com/DigitariaWebs/Safyr-sub007/internal/models"
	"github.com/DigitariaWebs/Safyr-sub007/internal/service/mocks"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestZoneService - вспомогательная функция для создания инстанса сервиса с моками.
func newTestZoneService(t *testing.T) (*zoneService, *mocks.MockZoneRepository) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockZoneRepository(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{GeohashPrecision: 6}

	svc := NewZoneService(repoMock, logger, cfg)
	return svc.(*zoneService), repoMock
}

func TestGetZone_Success_FromCache(t *testing.T) {
	svc, repoMock := newTestZoneService(t)
	ctx := context.Background()
	zoneID := uuid.New()
	expected := &models.WorkZone{ID: zoneID, Label: "Site La Défense"}

	repoMock.EXPECT().GetZoneFromCache(ctx, zoneID).Return(expected, nil).Times(1)

	zone, err := svc.GetZone(ctx, zoneID)

	require.NoError(t, err)
	assert.Equal(t, expected, zone)
}

func TestGetZone_Success_FromDB(t *testing.T) {
	svc, repoMock := newTestZoneService(t)
	ctx := context.Background()
	zoneID := uuid.New()
	expected := &models.WorkZone{ID: zoneID, Label: "Entrepôt Gennevilliers"}

	// 1. Промах кеша
	repoMock.EXPECT().GetZoneFromCache(ctx, zoneID).Return(nil, nil).Times(1)
	// 2. Попадание в БД
	repoMock.EXPECT().GetByID(ctx, zoneID).Return(expected, nil).Times(1)
	// 3. Запись в кеш
	repoMock.EXPECT().SetZoneCache(ctx, expected).Return(nil).Times(1)

	zone, err := svc.GetZone(ctx, zoneID)

	require.NoError(t, err)
	assert.Equal(t, expected, zone)
}

func TestGetZone_CacheErrorFallsBackToDB(t *testing.T) {
	svc, repoMock := newTestZoneService(t)
	ctx := context.Background()
	zoneID := uuid.New()
	expected := &models.WorkZone{ID: zoneID}

	repoMock.EXPECT().GetZoneFromCache(ctx, zoneID).Return(nil, errors.New("redis down")).Times(1)
	repoMock.EXPECT().GetByID(ctx, zoneID).Return(expected, nil).Times(1)
	repoMock.EXPECT().SetZoneCache(ctx, expected).Return(errors.New("redis down")).Times(1)

	zone, err := svc.GetZone(ctx, zoneID)

	require.NoError(t, err)
	assert.Equal(t, expected, zone)
}

func TestGetZone_NotFound(t *testing.T) {
	svc, repoMock := newTestZoneService(t)
	ctx := context.Background()
	zoneID := uuid.New()

	repoMock.EXPECT().GetZoneFromCache(ctx, zoneID).Return(nil, nil).Times(1)
	repoMock.EXPECT().GetByID(ctx, zoneID).Return(nil, fmt.Errorf("zone: %w", models.ErrNotFound)).Times(1)

	zone, err := svc.GetZone(ctx, zoneID)

	require.Error(t, err)
	assert.Nil(t, zone)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorContains(t, err, "could not get work zone")
}

func TestCreateZone_Success(t *testing.T) {
	svc, repoMock := newTestZoneService(t)
	ctx := context.Background()
	zone := &models.WorkZone{
		Label:        "Site Paris Centre",
		Center:       models.GeoPoint{Latitude: 48.8566, Longitude: 2.3522},
		RadiusMeters: 450,
	}

	repoMock.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, z *models.WorkZone) error {
			// Симулируем, что БД присвоила ID
			z.ID = uuid.New()
			return nil
		}).Times(1)

	err := svc.CreateZone(ctx, zone)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, zone.ID)
	assert.Equal(t, models.ZoneStatusActive, zone.Status)
	assert.Equal(t, "u09tvw", zone.Geohash)
}

func TestCreateZone_RepositoryError(t *testing.T) {
	svc, repoMock := newTestZoneService(t)
	ctx := context.Background()

	repoMock.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("db error")).Times(1)

	err := svc.CreateZone(ctx, &models.WorkZone{Label: "Zone"})

	assert.ErrorContains(t, err, "could not create work zone")
}

func TestUpdateZone_Success(t *testing.T) {
	svc, repoMock := newTestZoneService(t)
	ctx := context.Background()
	zoneID := uuid.New()
	existing := &models.WorkZone{
		ID:           zoneID,
		Label:        "Ancien site",
		Center:       models.GeoPoint{Latitude: 45.764, Longitude: 4.8357},
		RadiusMeters: 200,
		Status:       models.ZoneStatusActive,
	}
	update := &models.WorkZone{
		ID:           zoneID,
		Label:        "Site Paris Centre",
		Center:       models.GeoPoint{Latitude: 48.8566, Longitude: 2.3522},
		RadiusMeters: 450,
		Status:       models.ZoneStatusInactive,
	}

	repoMock.EXPECT().GetByID(ctx, zoneID).Return(existing, nil).Times(1)
	repoMock.EXPECT().
		Update(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, z *models.WorkZone) error {
			assert.Equal(t, "Site Paris Centre", z.Label)
			assert.Equal(t, 450.0, z.RadiusMeters)
			assert.Equal(t, models.ZoneStatusInactive, z.Status)
			assert.Equal(t, "u09tvw", z.Geohash)
			return nil
		}).Times(1)
	repoMock.EXPECT().InvalidateZoneCache(ctx, zoneID).Return(nil).Times(1)

	err := svc.UpdateZone(ctx, update)

	require.NoError(t, err)
	assert.Equal(t, "u09tvw", update.Geohash)
}

func TestUpdateZone_NotFound(t *testing.T) {
	svc, repoMock := newTestZoneService(t)
	ctx := context.Background()
	zoneID := uuid.New()

	repoMock.EXPECT().GetByID(ctx, zoneID).Return(nil, models.ErrNotFound).Times(1)
	repoMock.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

	err := svc.UpdateZone(ctx, &models.WorkZone{ID: zoneID})

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeactivateZone_Success(t *testing.T) {
	svc, repoMock := newTestZoneService(t)
	ctx := context.Background()
	zoneID := uuid.New()

	repoMock.EXPECT().GetByID(ctx, zoneID).Return(&models.WorkZone{ID: zoneID}, nil).Times(1)
	repoMock.EXPECT().Delete(ctx, zoneID).Return(nil).Times(1)
	repoMock.EXPECT().InvalidateZoneCache(ctx, zoneID).Return(nil).Times(1)

	require.NoError(t, svc.DeactivateZone(ctx, zoneID))
}

func TestDeactivateZone_DeleteError(t *testing.T) {
	svc, repoMock := newTestZoneService(t)
	ctx := context.Background()
	zoneID := uuid.New()

	repoMock.EXPECT().GetByID(ctx, zoneID).Return(&models.WorkZone{ID: zoneID}, nil).Times(1)
	repoMock.EXPECT().Delete(ctx, zoneID).Return(errors.New("db error")).Times(1)
	repoMock.EXPECT().InvalidateZoneCache(gomock.Any(), gomock.Any()).Times(0)

	assert.ErrorContains(t, svc.DeactivateZone(ctx, zoneID), "could not deactivate work zone")
}

func TestListZones_NormalizesPaging(t *testing.T) {
	svc, repoMock := newTestZoneService(t)
	ctx := context.Background()
	zones := []*models.WorkZone{{ID: uuid.New()}, {ID: uuid.New()}}

	repoMock.EXPECT().ListZones(ctx, 1, 20).Return(zones, nil).Times(1)

	result, err := svc.ListZones(ctx, 0, 500)

	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestListZones_RepositoryError(t *testing.T) {
	svc, repoMock := newTestZoneService(t)
	ctx := context.Background()

	repoMock.EXPECT().ListZones(ctx, 2, 10).Return(nil, errors.New("db error")).Times(1)

	result, err := svc.ListZones(ctx, 2, 10)

	assert.Nil(t, result)
	assert.ErrorContains(t, err, "could not list work zones")
}
