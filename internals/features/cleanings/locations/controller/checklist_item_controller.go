package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cleantrack_backend/internals/features/cleanings/locations/dto"
	"cleantrack_backend/internals/features/cleanings/locations/model"
	submissionModel "cleantrack_backend/internals/features/cleanings/submissions/model"
	helper "cleantrack_backend/internals/helpers"
	storage "cleantrack_backend/internals/helpers/storage"
)

type ChecklistItemController struct {
	DB     *gorm.DB
	Photos *storage.PhotoStore
}

func NewChecklistItemController(db *gorm.DB, photos *storage.PhotoStore) *ChecklistItemController {
	return &ChecklistItemController{DB: db, Photos: photos}
}

// GET /api/cleanings/checklist-items
func (ctrl *ChecklistItemController) ListChecklistItems(c *fiber.Ctx) error {
	q := ctrl.DB.Model(&model.ChecklistItemModel{})
	if v := c.Query("location"); v != "" {
		q = q.Where("location_id = ?", v)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("title_en LIKE ? OR title_am LIKE ? OR title_ru LIKE ?", like, like, like)
	}

	switch ordering := c.Query("ordering", "id"); ordering {
	case "id":
		q = q.Order("id ASC")
	case "title_en":
		q = q.Order("title_en ASC")
	case "-title_en":
		q = q.Order("title_en DESC")
	case "created_at":
		q = q.Order("created_at ASC")
	case "-created_at":
		q = q.Order("created_at DESC")
	default:
		return helper.JsonValidationError(c, map[string][]string{"ordering": {"unsupported ordering field"}})
	}

	var items []model.ChecklistItemModel
	if err := q.Find(&items).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list checklist items")
	}
	return helper.JsonOK(c, "Checklist items fetched", dto.ToChecklistItemResponseList(items, c.Query("language", "en")))
}

// GET /api/cleanings/checklist-items/:id
func (ctrl *ChecklistItemController) GetChecklistItem(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Checklist item not found")
	}
	var item model.ChecklistItemModel
	if err := ctrl.DB.First(&item, id).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Checklist item not found")
	}
	return helper.JsonOK(c, "Checklist item fetched", dto.ToChecklistItemResponse(&item, c.Query("language", "en")))
}

// POST /api/cleanings/checklist-items (admin)
func (ctrl *ChecklistItemController) CreateChecklistItem(c *fiber.Ctx) error {
	var req dto.CreateChecklistItemRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}

	var location model.LocationModel
	if err := ctrl.DB.First(&location, req.Location).Error; err != nil {
		return helper.JsonValidationError(c, map[string][]string{"location": {"location does not exist"}})
	}

	item := model.ChecklistItemModel{
		LocationID: req.Location,
		TitleEn:    req.TitleEn,
		TitleAm:    req.TitleAm,
		TitleRu:    req.TitleRu,
	}
	if err := ctrl.DB.Create(&item).Error; err != nil {
		log.Printf("[ERROR] create checklist item: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create checklist item")
	}
	return helper.JsonCreated(c, "Checklist item created", dto.ToChecklistItemResponse(&item, "en"))
}

// PUT /api/cleanings/checklist-items/:id (admin)
func (ctrl *ChecklistItemController) UpdateChecklistItem(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Checklist item not found")
	}
	var item model.ChecklistItemModel
	if err := ctrl.DB.First(&item, id).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Checklist item not found")
	}

	var req dto.UpdateChecklistItemRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}

	updates := map[string]interface{}{}
	if req.TitleEn != nil {
		updates["title_en"] = *req.TitleEn
	}
	if req.TitleAm != nil {
		updates["title_am"] = *req.TitleAm
	}
	if req.TitleRu != nil {
		updates["title_ru"] = *req.TitleRu
	}
	if len(updates) > 0 {
		if err := ctrl.DB.Model(&item).Updates(updates).Error; err != nil {
			log.Printf("[ERROR] update checklist item %d: %v", item.ID, err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update checklist item")
		}
	}
	return helper.JsonUpdated(c, "Checklist item updated", dto.ToChecklistItemResponse(&item, "en"))
}

// DELETE /api/cleanings/checklist-items/:id (admin)
// Ratings referencing the item go with it so submissions never carry dangling
// checklist references.
func (ctrl *ChecklistItemController) DeleteChecklistItem(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Checklist item not found")
	}
	var item model.ChecklistItemModel
	if err := ctrl.DB.First(&item, id).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Checklist item not found")
	}

	var photoPaths []string
	if err := ctrl.DB.Model(&submissionModel.PhotoModel{}).
		Joins("JOIN task_ratings ON task_ratings.id = photos.task_rating_id").
		Where("task_ratings.checklist_item_id = ?", item.ID).
		Pluck("photos.image", &photoPaths).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete checklist item")
	}

	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_rating_id IN (?)",
			tx.Model(&submissionModel.TaskRatingModel{}).Select("id").Where("checklist_item_id = ?", item.ID),
		).Delete(&submissionModel.PhotoModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("checklist_item_id = ?", item.ID).Delete(&submissionModel.TaskRatingModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		log.Printf("[ERROR] delete checklist item %d: %v", item.ID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete checklist item")
	}
	ctrl.Photos.RemoveAll(photoPaths)
	return helper.JsonDeleted(c, "Checklist item deleted", fiber.Map{"id": item.ID})
}
