package controller

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cleantrack_backend/internals/features/cleanings/submissions/dto"
	"cleantrack_backend/internals/features/cleanings/submissions/model"
	"cleantrack_backend/internals/features/cleanings/submissions/service"
	helper "cleantrack_backend/internals/helpers"
	authz "cleantrack_backend/internals/helpers/auth"
	storage "cleantrack_backend/internals/helpers/storage"
)

type PhotoController struct {
	DB      *gorm.DB
	Service *service.SubmissionService
	Policy  authz.Policy
}

func NewPhotoController(db *gorm.DB, photos *storage.PhotoStore) *PhotoController {
	return &PhotoController{
		DB:      db,
		Service: service.NewSubmissionService(db, photos),
		Policy:  authz.NewPolicy(),
	}
}

// scopedPhotos resolves ownership transitively: photo → task rating →
// submission → staff.
func (ctrl *PhotoController) scopedPhotos(caller authz.Caller) *gorm.DB {
	q := ctrl.DB.Model(&model.PhotoModel{})
	if caller.IsAdmin() {
		return q
	}
	return q.
		Joins("JOIN task_ratings ON task_ratings.id = photos.task_rating_id").
		Joins("JOIN submissions ON submissions.id = task_ratings.submission_id").
		Where("submissions.staff_id = ?", caller.ID)
}

func (ctrl *PhotoController) findVisible(caller authz.Caller, id string) (*model.PhotoModel, error) {
	var photo model.PhotoModel
	err := ctrl.scopedPhotos(caller).
		Where("photos.id = ?", id).
		First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// GET /api/cleanings/photos
func (ctrl *PhotoController) ListPhotos(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	q := ctrl.scopedPhotos(caller)
	if v := c.Query("task_rating"); v != "" {
		q = q.Where("photos.task_rating_id = ?", v)
	}

	var photos []model.PhotoModel
	if err := q.Order("photos.id ASC").Find(&photos).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list photos")
	}

	out := make([]dto.PhotoResponse, 0, len(photos))
	for i := range photos {
		out = append(out, dto.ToPhotoResponse(&photos[i]))
	}
	return helper.JsonOK(c, "Photos fetched", out)
}

// GET /api/cleanings/photos/:id
func (ctrl *PhotoController) GetPhoto(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	photo, err := ctrl.findVisible(caller, c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Photo not found")
	}
	return helper.JsonOK(c, "Photo fetched", dto.ToPhotoResponse(photo))
}

// POST /api/cleanings/photos
func (ctrl *PhotoController) CreatePhoto(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	ratingID, err := strconv.Atoi(c.FormValue("task_rating"))
	if err != nil || ratingID <= 0 {
		return helper.JsonValidationError(c, map[string][]string{"task_rating": {"this field is required"}})
	}

	// ownership via the owning submission
	var rating model.TaskRatingModel
	q := ctrl.DB.Model(&model.TaskRatingModel{})
	if !caller.IsAdmin() {
		q = q.Joins("JOIN submissions ON submissions.id = task_ratings.submission_id").
			Where("submissions.staff_id = ?", caller.ID)
	}
	if err := q.Where("task_ratings.id = ?", ratingID).First(&rating).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Task rating not found")
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return helper.JsonValidationError(c, map[string][]string{"image": {"this field is required"}})
	}

	photo, err := ctrl.Service.AddPhoto(&rating, fh)
	if err != nil {
		if errors.Is(err, storage.ErrNotAnImage) {
			return helper.JsonError(c, fiber.StatusBadRequest, "uploaded file is not a valid image")
		}
		log.Printf("[ERROR] add photo: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to store photo")
	}
	return helper.JsonCreated(c, "Photo stored", dto.ToPhotoResponse(photo))
}

// DELETE /api/cleanings/photos/:id
func (ctrl *PhotoController) DeletePhoto(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	photo, err := ctrl.findVisible(caller, c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Photo not found")
	}

	if err := ctrl.Service.DeletePhoto(photo); err != nil {
		log.Printf("[ERROR] delete photo %d: %v", photo.ID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete photo")
	}
	return helper.JsonDeleted(c, "Photo deleted", fiber.Map{"id": photo.ID})
}
