package domain

import "time"

// Customer is the projection of a backend customer record. Metadata is the
// backend's free-form blob; the loyalty counters live inside it.
type Customer struct {
	ID        string                 `json:"id"`
	Email     string                 `json:"email"`
	FirstName string                 `json:"first_name,omitempty"`
	LastName  string                 `json:"last_name,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at,omitempty"`
}

// LoyaltyPoints reads the loyalty balance out of the metadata blob. Counters
// arrive as float64 after JSON decoding.
func (c Customer) LoyaltyPoints() int64 {
	return metaInt(c.Metadata, "loyalty_points")
}

// TotalPointsEarned reads the lifetime earned counter.
func (c Customer) TotalPointsEarned() int64 {
	return metaInt(c.Metadata, "total_points_earned")
}

// TotalPointsRedeemed reads the lifetime redeemed counter.
func (c Customer) TotalPointsRedeemed() int64 {
	return metaInt(c.Metadata, "total_points_redeemed")
}

func metaInt(meta map[string]interface{}, key string) int64 {
	if meta == nil {
		return 0
	}
	switch v := meta[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
