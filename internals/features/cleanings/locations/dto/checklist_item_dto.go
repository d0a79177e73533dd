package dto

import (
	"time"

	"cleantrack_backend/internals/features/cleanings/locations/model"
)

type CreateChecklistItemRequest struct {
	Location uint   `json:"location" form:"location" validate:"required"`
	TitleEn  string `json:"title_en" form:"title_en" validate:"required,min=1,max=255"`
	TitleAm  string `json:"title_am" form:"title_am" validate:"omitempty,max=255"`
	TitleRu  string `json:"title_ru" form:"title_ru" validate:"omitempty,max=255"`
}

type UpdateChecklistItemRequest struct {
	TitleEn *string `json:"title_en" form:"title_en" validate:"omitempty,min=1,max=255"`
	TitleAm *string `json:"title_am" form:"title_am" validate:"omitempty,max=255"`
	TitleRu *string `json:"title_ru" form:"title_ru" validate:"omitempty,max=255"`
}

type ChecklistItemResponse struct {
	ID        uint      `json:"id"`
	Location  uint      `json:"location"`
	Title     string    `json:"title"`
	TitleEn   string    `json:"title_en"`
	TitleAm   string    `json:"title_am"`
	TitleRu   string    `json:"title_ru"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToChecklistItemResponse carries all translations plus the resolved title
// for the requested language.
func ToChecklistItemResponse(m *model.ChecklistItemModel, language string) ChecklistItemResponse {
	return ChecklistItemResponse{
		ID:        m.ID,
		Location:  m.LocationID,
		Title:     m.Title(language),
		TitleEn:   m.TitleEn,
		TitleAm:   m.TitleAm,
		TitleRu:   m.TitleRu,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToChecklistItemResponseList(models []model.ChecklistItemModel, language string) []ChecklistItemResponse {
	result := make([]ChecklistItemResponse, 0, len(models))
	for i := range models {
		result = append(result, ToChecklistItemResponse(&models[i], language))
	}
	return result
}
