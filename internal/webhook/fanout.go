package webhook

import (
	"context"
	"errors"
)

// FanoutPublisher публикует событие во все издатели, ошибки объединяются
type FanoutPublisher []WebhookPublisher

func (f FanoutPublisher) Publish(ctx context.Context, event AlertEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
