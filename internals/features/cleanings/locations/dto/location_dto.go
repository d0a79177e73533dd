package dto

import (
	"time"

	"cleantrack_backend/internals/features/cleanings/locations/model"
)

/* ===============================
   Request
=================================*/

type CreateLocationRequest struct {
	Name   string `json:"name" form:"name" validate:"required,min=1,max=100"`
	Status string `json:"status" form:"status" validate:"omitempty,oneof=active inactive"`
}

type UpdateLocationRequest struct {
	Name   *string `json:"name" form:"name" validate:"omitempty,min=1,max=100"`
	Status *string `json:"status" form:"status" validate:"omitempty,oneof=active inactive"`
}

/* ===============================
   Response
=================================*/

type LocationResponse struct {
	ID                  uint                    `json:"id"`
	Name                string                  `json:"name"`
	Status              string                  `json:"status"`
	ChecklistItems      []ChecklistItemResponse `json:"checklist_items"`
	ChecklistItemsCount int                     `json:"checklist_items_count"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

// ToLocationResponse renders a location with its checklist. ChecklistItems
// must be preloaded.
func ToLocationResponse(m *model.LocationModel, language string) LocationResponse {
	items := make([]ChecklistItemResponse, 0, len(m.ChecklistItems))
	for i := range m.ChecklistItems {
		items = append(items, ToChecklistItemResponse(&m.ChecklistItems[i], language))
	}
	return LocationResponse{
		ID:                  m.ID,
		Name:                m.Name,
		Status:              m.Status,
		ChecklistItems:      items,
		ChecklistItemsCount: len(items),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func ToLocationResponseList(models []model.LocationModel, language string) []LocationResponse {
	result := make([]LocationResponse, 0, len(models))
	for i := range models {
		result = append(result, ToLocationResponse(&models[i], language))
	}
	return result
}
