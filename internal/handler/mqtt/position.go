package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/DigitariaWebs/Safyr-sub007/internal/models"
	"github.com/DigitariaWebs/Safyr-sub007/internal/monitor"
	"github.com/DigitariaWebs/Safyr-sub007/internal/service"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const handleTimeout = 10 * time.Second

// positionMessage - позиция агента из MQTT. Без координат - нет фиксации.
type positionMessage struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	Accuracy  *float64 `json:"accuracy" validate:"omitempty,gte=0"`
}

// PositionSubscriber принимает позиции агентов из топика вида agents/<agentID>/position
type PositionSubscriber struct {
	client   mqtt.Client
	topic    string
	tracking service.TrackingService
	logger   *logrus.Logger
	validate *validator.Validate
}

func NewPositionSubscriber(client mqtt.Client, topic string, tracking service.TrackingService, logger *logrus.Logger) *PositionSubscriber {
	return &PositionSubscriber{
		client:   client,
		topic:    topic,
		tracking: tracking,
		logger:   logger,
		validate: validator.New(),
	}
}

func (s *PositionSubscriber) Start() error {
	token := s.client.Subscribe(s.topic, 1, s.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.topic, err)
	}
	s.logger.WithField("topic", s.topic).Info("Subscribed to agent positions")
	return nil
}

func (s *PositionSubscriber) Stop() {
	if token := s.client.Unsubscribe(s.topic); token.Wait() && token.Error() != nil {
		s.logger.WithError(token.Error()).Warn("Failed to unsubscribe from agent positions")
	}
}

func (s *PositionSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	log := s.logger.WithFields(logrus.Fields{
		"handler": "mqtt",
		"topic":   msg.Topic(),
	})

	agentID, ok := agentFromTopic(msg.Topic())
	if !ok {
		log.Warn("Cannot extract agent ID from topic")
		return
	}
	log = log.WithField("agent_id", agentID)

	position, err := s.decode(msg.Payload())
	if err != nil {
		log.WithError(err).Warn("Invalid position message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if _, err := s.tracking.ReportPosition(ctx, agentID, position); err != nil {
		log.WithError(err).Error("Failed to report position from MQTT")
	}
}

func (s *PositionSubscriber) decode(payload []byte) (*monitor.Position, error) {
	var raw positionMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if err := s.validate.Struct(raw); err != nil {
		return nil, err
	}
	if (raw.Latitude == nil) != (raw.Longitude == nil) {
		return nil, fmt.Errorf("latitude and longitude must be provided together")
	}
	if raw.Latitude == nil {
		return nil, nil
	}
	return &monitor.Position{
		Point:    models.GeoPoint{Latitude: *raw.Latitude, Longitude: *raw.Longitude},
		Accuracy: raw.Accuracy,
	}, nil
}

// agentFromTopic берет сегмент, следующий за "agents"
func agentFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "agents" && parts[i+1] != "" {
			return parts[i+1], true
		}
	}
	return "", false
}
