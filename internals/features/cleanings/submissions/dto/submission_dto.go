package dto

import (
	"time"

	"cleantrack_backend/internals/features/cleanings/submissions/model"
)

/* ===============================
   Write side
=================================*/

// TaskRatingEntry is one element of the task_ratings_data JSON field on
// submission create/update. Photo files ride alongside in the multipart body.
type TaskRatingEntry struct {
	ChecklistItem uint   `json:"checklist_item" validate:"required"`
	Rating        int    `json:"rating" validate:"min=0,max=10"`
	Notes         string `json:"notes"`
}

/* ===============================
   Read side
=================================*/

type PhotoResponse struct {
	ID        uint      `json:"id"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

func ToPhotoResponse(m *model.PhotoModel) PhotoResponse {
	return PhotoResponse{
		ID:        m.ID,
		Image:     "/media/" + m.Image,
		CreatedAt: m.CreatedAt,
	}
}

type TaskRatingResponse struct {
	ID                 uint            `json:"id"`
	Submission         uint            `json:"submission"`
	ChecklistItem      uint            `json:"checklist_item"`
	ChecklistItemTitle string          `json:"checklist_item_title"`
	Rating             int             `json:"rating"`
	Notes              string          `json:"notes"`
	Photos             []PhotoResponse `json:"photos"`
}

// ToTaskRatingResponse renders a task rating with the checklist title in the
// requested language. ChecklistItem and Photos must be preloaded.
func ToTaskRatingResponse(m *model.TaskRatingModel, language string) TaskRatingResponse {
	photos := make([]PhotoResponse, 0, len(m.Photos))
	for i := range m.Photos {
		photos = append(photos, ToPhotoResponse(&m.Photos[i]))
	}
	return TaskRatingResponse{
		ID:                 m.ID,
		Submission:         m.SubmissionID,
		ChecklistItem:      m.ChecklistItemID,
		ChecklistItemTitle: m.ChecklistItem.Title(language),
		Rating:             m.Rating,
		Notes:              m.Notes,
		Photos:             photos,
	}
}

type SubmissionResponse struct {
	ID             uint                 `json:"id"`
	Location       uint                 `json:"location"`
	LocationName   string               `json:"location_name"`
	Staff          uint                 `json:"staff"`
	StaffUsername  string               `json:"staff_username"`
	Date           string               `json:"date"`
	TaskRatings    []TaskRatingResponse `json:"task_ratings"`
	CompletionRate int                  `json:"completion_rate"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// ToSubmissionResponse needs Location, Staff and TaskRatings (with their
// ChecklistItem and Photos) preloaded.
func ToSubmissionResponse(m *model.SubmissionModel, language string) SubmissionResponse {
	ratings := make([]TaskRatingResponse, 0, len(m.TaskRatings))
	for i := range m.TaskRatings {
		ratings = append(ratings, ToTaskRatingResponse(&m.TaskRatings[i], language))
	}
	return SubmissionResponse{
		ID:             m.ID,
		Location:       m.LocationID,
		LocationName:   m.Location.Name,
		Staff:          m.StaffID,
		StaffUsername:  m.Staff.Username,
		Date:           m.DateValue().Format("2006-01-02"),
		TaskRatings:    ratings,
		CompletionRate: m.CompletionRate(),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// SubmissionListResponse is the compact shape for list views.
type SubmissionListResponse struct {
	ID             uint      `json:"id"`
	Location       uint      `json:"location"`
	LocationName   string    `json:"location_name"`
	Staff          uint      `json:"staff"`
	StaffUsername  string    `json:"staff_username"`
	Date           string    `json:"date"`
	CompletionRate int       `json:"completion_rate"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToSubmissionListResponse(m *model.SubmissionModel) SubmissionListResponse {
	return SubmissionListResponse{
		ID:             m.ID,
		Location:       m.LocationID,
		LocationName:   m.Location.Name,
		Staff:          m.StaffID,
		StaffUsername:  m.Staff.Username,
		Date:           m.DateValue().Format("2006-01-02"),
		CompletionRate: m.CompletionRate(),
		CreatedAt:      m.CreatedAt,
	}
}

func ToSubmissionListResponses(models []model.SubmissionModel) []SubmissionListResponse {
	result := make([]SubmissionListResponse, 0, len(models))
	for i := range models {
		result = append(result, ToSubmissionListResponse(&models[i]))
	}
	return result
}

/* ===============================
   Stats
=================================*/

type LocationStatsResponse struct {
	SubmissionCount   int64                    `json:"submission_count"`
	AvgCompletionRate float64                  `json:"avg_completion_rate"`
	StaffCount        int64                    `json:"staff_count"`
	RecentSubmissions []SubmissionListResponse `json:"recent_submissions"`
}

type LocationCount struct {
	LocationName string `json:"location_name"`
	Count        int64  `json:"count"`
}

type GlobalStatsResponse struct {
	SubmissionCount       int64           `json:"submission_count"`
	AvgCompletionRate     float64         `json:"avg_completion_rate"`
	ActiveUsers           int64           `json:"active_users"`
	SubmissionsByLocation []LocationCount `json:"submissions_by_location"`
}
