package domain

// RedemptionTier maps a point cost to a fixed discount amount and the prefix
// of the promotion codes it mints.
type RedemptionTier struct {
	Points     int64  `json:"points"`
	Discount   int64  `json:"discount"`
	CodePrefix string `json:"code_prefix"`
}

// LoyaltyBalance is the result of a balance lookup.
type LoyaltyBalance struct {
	Points        int64            `json:"points"`
	TotalEarned   int64            `json:"totalEarned"`
	TotalRedeemed int64            `json:"totalRedeemed"`
	Tiers         []RedemptionTier `json:"redemptionTiers"`
	CustomerID    string           `json:"customerId,omitempty"`
}
