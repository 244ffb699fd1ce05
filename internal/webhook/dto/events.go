package webhookDto

import "github.com/shopspring/decimal"

// EnrollmentWebhookPayload notifies a customer that they joined a program
type EnrollmentWebhookPayload struct {
	EventType    string `json:"event_type"`
	CustomerID   string `json:"customer_id"`
	ProgramID    string `json:"program_id"`
	ProgramName  string `json:"program_name"`
	WelcomeBonus int64  `json:"welcome_bonus,omitempty"`
}

// ProgramDeletedWebhookPayload notifies an affected customer that their
// program was deleted, carrying the balance they held when it happened.
type ProgramDeletedWebhookPayload struct {
	EventType    string `json:"event_type"`
	CustomerID   string `json:"customer_id"`
	ProgramID    string `json:"program_id"`
	ProgramName  string `json:"program_name"`
	PriorBalance int64  `json:"prior_balance"`
}

// PromoRedeemedWebhookPayload notifies a customer of a successful promo
// code redemption
type PromoRedeemedWebhookPayload struct {
	EventType     string          `json:"event_type"`
	CustomerID    string          `json:"customer_id"`
	BusinessID    string          `json:"business_id"`
	PromotionName string          `json:"promotion_name"`
	Value         decimal.Decimal `json:"value"`
	Currency      string          `json:"currency,omitempty"`
}

// RewardRedeemedWebhookPayload notifies a customer of a successful reward
// tier redemption
type RewardRedeemedWebhookPayload struct {
	EventType  string `json:"event_type"`
	CustomerID string `json:"customer_id"`
	ProgramID  string `json:"program_id"`
	TierID     string `json:"tier_id"`
	Reward     string `json:"reward"`
	Threshold  int64  `json:"threshold"`
	NewBalance int64  `json:"new_balance"`
}
