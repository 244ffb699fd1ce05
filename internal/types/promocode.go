package types

// PromoCodeType is the kind of value a promo code grants on redemption
type PromoCodeType string

const (
	PromoCodeTypePoints   PromoCodeType = "points"
	PromoCodeTypeDiscount PromoCodeType = "discount"
	PromoCodeTypeCashback PromoCodeType = "cashback"
)

func (t PromoCodeType) Validate() bool {
	switch t {
	case PromoCodeTypePoints, PromoCodeTypeDiscount, PromoCodeTypeCashback:
		return true
	default:
		return false
	}
}

// PromoCodeStatus tracks the single-use lifecycle of a promo code.
// active -> consumed happens exactly once; active -> expired is set by the
// expiry sweep.
type PromoCodeStatus string

const (
	PromoCodeStatusActive   PromoCodeStatus = "active"
	PromoCodeStatusExpired  PromoCodeStatus = "expired"
	PromoCodeStatusConsumed PromoCodeStatus = "consumed"
)
