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

type TaskRatingController struct {
	DB      *gorm.DB
	Service *service.SubmissionService
	Policy  authz.Policy
}

func NewTaskRatingController(db *gorm.DB, photos *storage.PhotoStore) *TaskRatingController {
	return &TaskRatingController{
		DB:      db,
		Service: service.NewSubmissionService(db, photos),
		Policy:  authz.NewPolicy(),
	}
}

// scopedRatings narrows the task_ratings query through the owning submission,
// so non-admins only ever see ratings on their own submissions.
func (ctrl *TaskRatingController) scopedRatings(caller authz.Caller) *gorm.DB {
	q := ctrl.DB.Model(&model.TaskRatingModel{})
	if caller.IsAdmin() {
		return q
	}
	return q.
		Joins("JOIN submissions ON submissions.id = task_ratings.submission_id").
		Where("submissions.staff_id = ?", caller.ID)
}

func (ctrl *TaskRatingController) findVisible(caller authz.Caller, id string) (*model.TaskRatingModel, error) {
	var rating model.TaskRatingModel
	err := ctrl.scopedRatings(caller).
		Where("task_ratings.id = ?", id).
		Preload("ChecklistItem").
		Preload("Photos").
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// GET /api/cleanings/task-ratings
func (ctrl *TaskRatingController) ListTaskRatings(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	q := ctrl.scopedRatings(caller)
	if v := c.Query("submission"); v != "" {
		q = q.Where("task_ratings.submission_id = ?", v)
	}
	if v := c.Query("checklist_item"); v != "" {
		q = q.Where("task_ratings.checklist_item_id = ?", v)
	}

	var ratings []model.TaskRatingModel
	err = q.
		Preload("ChecklistItem").
		Preload("Photos").
		Order("task_ratings.checklist_item_id ASC").
		Find(&ratings).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list task ratings")
	}

	language := c.Query("language", "en")
	out := make([]dto.TaskRatingResponse, 0, len(ratings))
	for i := range ratings {
		out = append(out, dto.ToTaskRatingResponse(&ratings[i], language))
	}
	return helper.JsonOK(c, "Task ratings fetched", out)
}

// GET /api/cleanings/task-ratings/:id
func (ctrl *TaskRatingController) GetTaskRating(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	rating, err := ctrl.findVisible(caller, c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Task rating not found")
	}
	return helper.JsonOK(c, "Task rating fetched", dto.ToTaskRatingResponse(rating, c.Query("language", "en")))
}

// POST /api/cleanings/task-ratings
// Upserts by (submission, checklist_item); photos in uploaded_images append.
func (ctrl *TaskRatingController) CreateTaskRating(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	submissionID, err := strconv.Atoi(c.FormValue("submission"))
	if err != nil || submissionID <= 0 {
		return helper.JsonValidationError(c, map[string][]string{"submission": {"this field is required"}})
	}
	checklistItemID, err := strconv.Atoi(c.FormValue("checklist_item"))
	if err != nil || checklistItemID <= 0 {
		return helper.JsonValidationError(c, map[string][]string{"checklist_item": {"this field is required"}})
	}
	ratingValue, err := strconv.Atoi(c.FormValue("rating", "0"))
	if err != nil || ratingValue < 0 || ratingValue > 10 {
		return helper.JsonValidationError(c, map[string][]string{"rating": {"rating must be 0-10"}})
	}

	var submission model.SubmissionModel
	if err := ctrl.Policy.ScopeSubmissions(ctrl.DB, caller).
		Where("id = ?", submissionID).
		First(&submission).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Submission not found")
	}

	entry := service.RatingEntry{
		ChecklistItemID: uint(checklistItemID),
		Rating:          ratingValue,
		Notes:           c.FormValue("notes"),
	}
	if form, err := c.MultipartForm(); err == nil && form != nil {
		entry.Images = form.File["uploaded_images"]
	}

	if err := ctrl.Service.Update(&submission, []service.RatingEntry{entry}); err != nil {
		if errors.Is(err, storage.ErrNotAnImage) {
			return helper.JsonError(c, fiber.StatusBadRequest, "uploaded file is not a valid image")
		}
		log.Printf("[ERROR] upsert task rating: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to save task rating")
	}

	var rating model.TaskRatingModel
	if err := ctrl.DB.
		Where("submission_id = ? AND checklist_item_id = ?", submission.ID, checklistItemID).
		Preload("ChecklistItem").
		Preload("Photos").
		First(&rating).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load task rating")
	}
	return helper.JsonCreated(c, "Task rating saved", dto.ToTaskRatingResponse(&rating, c.Query("language", "en")))
}

// PUT /api/cleanings/task-ratings/:id
func (ctrl *TaskRatingController) UpdateTaskRating(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	rating, err := ctrl.findVisible(caller, c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Task rating not found")
	}

	ratingValue := rating.Rating
	if v := c.FormValue("rating"); v != "" {
		parsed, convErr := strconv.Atoi(v)
		if convErr != nil || parsed < 0 || parsed > 10 {
			return helper.JsonValidationError(c, map[string][]string{"rating": {"rating must be 0-10"}})
		}
		ratingValue = parsed
	}
	notes := rating.Notes
	if v := c.FormValue("notes"); v != "" {
		notes = v
	}

	var submission model.SubmissionModel
	if err := ctrl.DB.First(&submission, rating.SubmissionID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load submission")
	}

	entry := service.RatingEntry{
		ChecklistItemID: rating.ChecklistItemID,
		Rating:          ratingValue,
		Notes:           notes,
	}
	if form, err := c.MultipartForm(); err == nil && form != nil {
		entry.Images = form.File["uploaded_images"]
	}

	if err := ctrl.Service.Update(&submission, []service.RatingEntry{entry}); err != nil {
		if errors.Is(err, storage.ErrNotAnImage) {
			return helper.JsonError(c, fiber.StatusBadRequest, "uploaded file is not a valid image")
		}
		log.Printf("[ERROR] update task rating %d: %v", rating.ID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update task rating")
	}

	updated, err := ctrl.findVisible(caller, c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load task rating")
	}
	return helper.JsonUpdated(c, "Task rating updated", dto.ToTaskRatingResponse(updated, c.Query("language", "en")))
}

// DELETE /api/cleanings/task-ratings/:id
func (ctrl *TaskRatingController) DeleteTaskRating(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	rating, err := ctrl.findVisible(caller, c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Task rating not found")
	}

	if err := ctrl.Service.DeleteTaskRating(rating); err != nil {
		log.Printf("[ERROR] delete task rating %d: %v", rating.ID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete task rating")
	}
	return helper.JsonDeleted(c, "Task rating deleted", fiber.Map{"id": rating.ID})
}
