package model

import (
	"time"

	locationModel "cleantrack_backend/internals/features/cleanings/locations/model"
)

// TaskRatingModel is a 0-10 score plus notes for one checklist item within a
// submission. Unique per (submission, checklist_item): repeat writes upsert.
type TaskRatingModel struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SubmissionID    uint      `gorm:"not null;uniqueIndex:idx_task_ratings_submission_item" json:"submission"`
	ChecklistItemID uint      `gorm:"not null;uniqueIndex:idx_task_ratings_submission_item" json:"checklist_item"`
	Rating          int       `gorm:"not null;default:0" json:"rating"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	ChecklistItem locationModel.ChecklistItemModel `gorm:"foreignKey:ChecklistItemID;constraint:OnDelete:CASCADE" json:"-"`
	Photos        []PhotoModel                     `gorm:"foreignKey:TaskRatingID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`
}

func (TaskRatingModel) TableName() string {
	return "task_ratings"
}
