package models

// HistoryRecord is an immutable snapshot of a finalized order. It is
// constructed once, written once, and never updated in place; re-reading
// history produces fresh copies.
type HistoryRecord struct {
	ID             string     `json:"id"`
	RestaurantName string     `json:"restaurantName"`
	Items          []MenuItem `json:"items"`
	TotalPrice     int        `json:"totalPrice"`
	TotalCalories  float64    `json:"totalCalories"`
	Timestamp      int64      `json:"timestamp"` // epoch milliseconds
	// OwnerID partitions storage per user. It is opaque to all business
	// logic and excluded from the persisted record body.
	OwnerID string `json:"-"`
}
