package webhook_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DigitariaWebs/Safyr-sub007/internal/webhook"
	"github.com/DigitariaWebs/Safyr-sub007/internal/webhook/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestFanoutPublisher_PublishesToAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocks.NewMockWebhookPublisher(ctrl)
	second := mocks.NewMockWebhookPublisher(ctrl)
	event := webhook.AlertEvent{AlertID: uuid.New(), AgentID: "agent-7"}

	first.EXPECT().Publish(gomock.Any(), event).Return(nil).Times(1)
	second.EXPECT().Publish(gomock.Any(), event).Return(nil).Times(1)

	assert.NoError(t, webhook.FanoutPublisher{first, second}.Publish(context.Background(), event))
}

func TestFanoutPublisher_ContinuesAfterError(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocks.NewMockWebhookPublisher(ctrl)
	second := mocks.NewMockWebhookPublisher(ctrl)
	event := webhook.AlertEvent{AlertID: uuid.New()}

	first.EXPECT().Publish(gomock.Any(), event).Return(errors.New("redis down")).Times(1)
	second.EXPECT().Publish(gomock.Any(), event).Return(nil).Times(1)

	err := webhook.FanoutPublisher{first, second}.Publish(context.Background(), event)

	assert.ErrorContains(t, err, "redis down")
}
