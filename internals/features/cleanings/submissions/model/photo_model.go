package model

import "time"

// PhotoModel is one stored evidence image for a task rating. Image holds the
// path relative to MEDIA_ROOT; the file itself is removed best-effort after
// the row is deleted.
type PhotoModel struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TaskRatingID uint      `gorm:"not null;index" json:"task_rating"`
	Image        string    `gorm:"size:500;not null" json:"image"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PhotoModel) TableName() string {
	return "photos"
}
