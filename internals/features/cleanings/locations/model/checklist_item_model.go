package model

import "time"

// ChecklistItemModel is one inspectable task on a location's checklist,
// localized into up to three languages (English is the fallback).
type ChecklistItemModel struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LocationID uint      `gorm:"not null;index" json:"location"`
	TitleEn    string    `gorm:"size:255;not null" json:"title_en"`
	TitleAm    string    `gorm:"size:255" json:"title_am"`
	TitleRu    string    `gorm:"size:255" json:"title_ru"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ChecklistItemModel) TableName() string {
	return "checklist_items"
}

// Title returns the localized title, falling back to English when the
// requested translation is empty.
func (m *ChecklistItemModel) Title(language string) string {
	switch language {
	case "am":
		if m.TitleAm != "" {
			return m.TitleAm
		}
	case "ru":
		if m.TitleRu != "" {
			return m.TitleRu
		}
	}
	return m.TitleEn
}
