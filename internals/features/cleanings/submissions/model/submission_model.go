package model

import (
	"math"
	"time"

	"gorm.io/datatypes"

	userModel "cleantrack_backend/internals/features/accounts/user/model"
	locationModel "cleantrack_backend/internals/features/cleanings/locations/model"
)

// SubmissionModel is one staff member's report for one location on one
// calendar date. The composite unique index enforces at most one per
// (location, staff, date) even under concurrent creates.
type SubmissionModel struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	LocationID uint           `gorm:"not null;uniqueIndex:idx_submissions_location_staff_date" json:"location"`
	StaffID    uint           `gorm:"not null;uniqueIndex:idx_submissions_location_staff_date" json:"staff"`
	Date       datatypes.Date `gorm:"not null;uniqueIndex:idx_submissions_location_staff_date;index" json:"date"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	Location    locationModel.LocationModel `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE" json:"-"`
	Staff       userModel.UserModel         `gorm:"foreignKey:StaffID;constraint:OnDelete:CASCADE" json:"-"`
	TaskRatings []TaskRatingModel           `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"task_ratings,omitempty"`
}

func (SubmissionModel) TableName() string {
	return "submissions"
}

// CompletionRate is the mean task rating expressed as a percentage of the
// 10-point maximum, 0 when no ratings are loaded. Callers must preload
// TaskRatings first.
func (m *SubmissionModel) CompletionRate() int {
	if len(m.TaskRatings) == 0 {
		return 0
	}
	total := 0
	for _, tr := range m.TaskRatings {
		total += tr.Rating
	}
	possible := len(m.TaskRatings) * 10
	return int(math.Round(float64(total) / float64(possible) * 100))
}

// DateValue returns the calendar date as time.Time for formatting and path building.
func (m *SubmissionModel) DateValue() time.Time {
	return time.Time(m.Date)
}
