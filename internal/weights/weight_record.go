package weights

import "time"

type WeightRecord struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	WeightKg   float64   `json:"weightKg"`
	RecordedAt time.Time `json:"recordedAt"`
	Notes      string    `json:"notes,omitempty"`
}
