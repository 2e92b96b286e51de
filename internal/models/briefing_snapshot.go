package models

import (
	"time"

	"gorm.io/datatypes"
)

// BriefingSnapshot is a persisted briefing for one user and one calendar
// day. Date is always UTC midnight; the composite unique index guarantees
// at most one snapshot per user per day.
type BriefingSnapshot struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"not null;size:36;uniqueIndex:idx_user_date" json:"user_id"`
	Date      time.Time      `gorm:"not null;uniqueIndex:idx_user_date" json:"date"`
	Data      datatypes.JSON `json:"data"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for BriefingSnapshot
func (BriefingSnapshot) TableName() string {
	return "briefing_snapshots"
}
