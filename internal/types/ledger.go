package types

// LedgerSource identifies the event that produced a ledger entry
type LedgerSource string

const (
	LedgerSourceAward        LedgerSource = "award"
	LedgerSourceRedemption   LedgerSource = "redemption"
	LedgerSourceExpiration   LedgerSource = "expiration"
	LedgerSourceAdjustment   LedgerSource = "adjustment"
	LedgerSourceWelcomeBonus LedgerSource = "welcome_bonus"
)

func (s LedgerSource) Validate() bool {
	switch s {
	case LedgerSourceAward, LedgerSourceRedemption, LedgerSourceExpiration,
		LedgerSourceAdjustment, LedgerSourceWelcomeBonus:
		return true
	default:
		return false
	}
}

// LedgerEntryFilter narrows ledger history queries. A zero filter returns
// the full history for the pair, oldest first, so balances are replayable.
type LedgerEntryFilter struct {
	CustomerID string       `json:"customer_id" form:"customer_id"`
	ProgramID  string       `json:"program_id" form:"program_id"`
	Source     LedgerSource `json:"source,omitempty" form:"source"`
	Limit      int          `json:"limit,omitempty" form:"limit"`
	Offset     int          `json:"offset,omitempty" form:"offset"`
}
