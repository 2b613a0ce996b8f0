package models

import "time"

// DailyStats holds anonymous aggregate counters for one UTC day. It never
// references a user.
type DailyStats struct {
	// Day is the UTC date, truncated to midnight.
	Day       time.Time `gorm:"primaryKey;type:date" json:"day"`
	Matches   int64     `gorm:"not null;default:0" json:"matches"`
	Messages  int64     `gorm:"not null;default:0" json:"messages"`
	Rotations int64     `gorm:"not null;default:0" json:"rotations"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DailyStats) TableName() string { return "daily_stats" }

// UsageDelta is an increment to apply to a DailyStats row.
type UsageDelta struct {
	Matches   int64
	Messages  int64
	Rotations int64
}

// IsZero reports whether the delta carries nothing to apply.
func (d UsageDelta) IsZero() bool {
	return d.Matches == 0 && d.Messages == 0 && d.Rotations == 0
}
