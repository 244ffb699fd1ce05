package testutil

import (
	"context"
	"sync"

	"github.com/gudcity/loyalty/internal/types"
	webhookPublisher "github.com/gudcity/loyalty/internal/webhook/publisher"
)

var _ webhookPublisher.WebhookPublisher = (*InMemoryWebhookPublisher)(nil)

// InMemoryWebhookPublisher captures notification events so tests can
// assert what was published.
type InMemoryWebhookPublisher struct {
	mu     sync.RWMutex
	events []*types.WebhookEvent
}

func NewInMemoryWebhookPublisher() *InMemoryWebhookPublisher {
	return &InMemoryWebhookPublisher{}
}

func (p *InMemoryWebhookPublisher) PublishWebhook(ctx context.Context, event *types.WebhookEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *InMemoryWebhookPublisher) Close() error {
	return nil
}

// Events returns all captured events in publication order.
func (p *InMemoryWebhookPublisher) Events() []*types.WebhookEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*types.WebhookEvent{}, p.events...)
}

// EventsByName returns captured events with the given name.
func (p *InMemoryWebhookPublisher) EventsByName(name string) []*types.WebhookEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var result []*types.WebhookEvent
	for _, e := range p.events {
		if e.EventName == name {
			result = append(result, e)
		}
	}
	return result
}

func (p *InMemoryWebhookPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
