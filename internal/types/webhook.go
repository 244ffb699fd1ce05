package types

import (
	"context"
	"encoding/json"
	"time"
)

// WebhookEvent is the envelope published to the notification dispatcher
type WebhookEvent struct {
	ID        string          `json:"id"`
	EventName string          `json:"event_name"`
	TenantID  string          `json:"tenant_id"`
	ActorID   string          `json:"actor_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewWebhookEvent builds the envelope for a notification payload, filling
// tenant and actor from context.
func NewWebhookEvent(ctx context.Context, eventName string, payload interface{}) (*WebhookEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &WebhookEvent{
		ID:        GenerateUUIDWithPrefix(UUID_PREFIX_WEBHOOK),
		EventName: eventName,
		TenantID:  GetTenantID(ctx),
		ActorID:   GetActorID(ctx),
		Timestamp: time.Now().UTC(),
		Payload:   data,
	}, nil
}

// Common webhook event names
const (
	WebhookEventCustomerEnrolled   = "customer.enrolled"
	WebhookEventEnrollmentCanceled = "enrollment.cancelled"
	WebhookEventProgramDeleted     = "program.deleted"
	WebhookEventPromoRedeemed      = "promotion.redeemed"
	WebhookEventRewardRedeemed     = "reward.redeemed"
)
