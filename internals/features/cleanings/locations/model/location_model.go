package model

import (
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// LocationModel represents a cleaning location (Departure Hall, Arrival Hall, ...)
type LocationModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;index" json:"name"`
	Status    string    `gorm:"type:varchar(10);not null;default:'active'" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	ChecklistItems []ChecklistItemModel `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE" json:"checklist_items,omitempty"`
}

func (LocationModel) TableName() string {
	return "locations"
}

func IsValidStatus(status string) bool {
	return status == StatusActive || status == StatusInactive
}
