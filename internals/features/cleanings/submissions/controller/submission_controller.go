package controller

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	locationModel "cleantrack_backend/internals/features/cleanings/locations/model"
	"cleantrack_backend/internals/features/cleanings/submissions/dto"
	"cleantrack_backend/internals/features/cleanings/submissions/model"
	"cleantrack_backend/internals/features/cleanings/submissions/service"
	helper "cleantrack_backend/internals/helpers"
	authz "cleantrack_backend/internals/helpers/auth"
	storage "cleantrack_backend/internals/helpers/storage"
)

var validate = validator.New()

type SubmissionController struct {
	DB      *gorm.DB
	Service *service.SubmissionService
	Stats   *service.StatsService
	Policy  authz.Policy
}

func NewSubmissionController(db *gorm.DB, photos *storage.PhotoStore) *SubmissionController {
	return &SubmissionController{
		DB:      db,
		Service: service.NewSubmissionService(db, photos),
		Stats:   service.NewStatsService(db),
		Policy:  authz.NewPolicy(),
	}
}

func callerFromCtx(c *fiber.Ctx) (authz.Caller, error) {
	id, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return authz.Caller{}, err
	}
	role, err := helper.GetRoleFromLocals(c)
	if err != nil {
		return authz.Caller{}, err
	}
	return authz.Caller{ID: id, Role: role}, nil
}

// scopedQuery returns the submissions base query already narrowed to what the
// caller may see.
func (ctrl *SubmissionController) scopedQuery(caller authz.Caller) *gorm.DB {
	return ctrl.Policy.ScopeSubmissions(ctrl.DB.Model(&model.SubmissionModel{}), caller)
}

// findVisible loads one submission through the ownership scope; rows the
// caller may not see come back as not-found, never as forbidden.
func (ctrl *SubmissionController) findVisible(caller authz.Caller, id string) (*model.SubmissionModel, error) {
	var submission model.SubmissionModel
	err := ctrl.Policy.ScopeSubmissions(ctrl.DB, caller).
		Where("id = ?", id).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

/* ===============================
   Multipart parsing
=================================*/

// parseRatingEntries reads the task_ratings_data JSON field and joins each
// entry with its files, named task_ratings_data[i].uploaded_images[j].
func parseRatingEntries(c *fiber.Ctx) ([]service.RatingEntry, error) {
	raw := strings.TrimSpace(c.FormValue("task_ratings_data"))
	if raw == "" {
		return nil, nil
	}

	var parsed []dto.TaskRatingEntry
	if err := sonic.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, errors.New("task_ratings_data is not valid JSON")
	}
	for i := range parsed {
		if err := validate.Struct(&parsed[i]); err != nil {
			return nil, fmt.Errorf("task_ratings_data[%d]: rating must be 0-10 and checklist_item is required", i)
		}
	}

	var files map[string][]*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File
	}

	entries := make([]service.RatingEntry, 0, len(parsed))
	for i, p := range parsed {
		entry := service.RatingEntry{
			ChecklistItemID: p.ChecklistItem,
			Rating:          p.Rating,
			Notes:           p.Notes,
		}
		for j := 0; ; j++ {
			key := fmt.Sprintf("task_ratings_data[%d].uploaded_images[%d]", i, j)
			fhs, ok := files[key]
			if !ok || len(fhs) == 0 {
				break
			}
			entry.Images = append(entry.Images, fhs...)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseDateField(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}

/* ===============================
   Handlers
=================================*/

// POST /api/cleanings/submissions
func (ctrl *SubmissionController) CreateSubmission(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	locationID, err := strconv.Atoi(c.FormValue("location"))
	if err != nil || locationID <= 0 {
		return helper.JsonValidationError(c, map[string][]string{"location": {"this field is required"}})
	}

	date, err := parseDateField(c.FormValue("date"))
	if err != nil {
		return helper.JsonValidationError(c, map[string][]string{"date": {"date must be YYYY-MM-DD"}})
	}

	var location locationModel.LocationModel
	if err := ctrl.DB.First(&location, locationID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Location not found")
	}

	// staff defaults to the caller; only admins may submit on someone's behalf
	staffID := caller.ID
	if v := c.FormValue("staff"); v != "" && caller.IsAdmin() {
		parsed, convErr := strconv.Atoi(v)
		if convErr != nil || parsed <= 0 {
			return helper.JsonError(c, fiber.StatusBadRequest, "staff must be an id")
		}
		staffID = uint(parsed)
	}

	entries, err := parseRatingEntries(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := ctrl.Service.Create(uint(locationID), staffID, date, entries)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateSubmission) {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, storage.ErrNotAnImage) {
			return helper.JsonError(c, fiber.StatusBadRequest, "uploaded file is not a valid image")
		}
		log.Printf("[ERROR] create submission: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create submission")
	}

	full, err := ctrl.loadDetail(submission.ID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load submission")
	}
	return helper.JsonCreated(c, "Submission created", dto.ToSubmissionResponse(full, c.Query("language", "en")))
}

// PUT /api/cleanings/submissions/:id
func (ctrl *SubmissionController) UpdateSubmission(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	submission, err := ctrl.findVisible(caller, c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Submission not found")
	}

	entries, err := parseRatingEntries(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if len(entries) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "task_ratings_data is required")
	}

	if err := ctrl.Service.Update(submission, entries); err != nil {
		if errors.Is(err, storage.ErrNotAnImage) {
			return helper.JsonError(c, fiber.StatusBadRequest, "uploaded file is not a valid image")
		}
		log.Printf("[ERROR] update submission %d: %v", submission.ID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update submission")
	}

	full, err := ctrl.loadDetail(submission.ID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load submission")
	}
	return helper.JsonUpdated(c, "Submission updated", dto.ToSubmissionResponse(full, c.Query("language", "en")))
}

// GET /api/cleanings/submissions
func (ctrl *SubmissionController) ListSubmissions(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	q := ctrl.scopedQuery(caller)

	if v := c.Query("location"); v != "" {
		q = q.Where("location_id = ?", v)
	}
	if v := c.Query("staff"); v != "" {
		q = q.Where("staff_id = ?", v)
	}
	if v := c.Query("date"); v != "" {
		date, err := parseDateField(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		q = q.Where("date = ?", date)
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list submissions")
	}

	var submissions []model.SubmissionModel
	err = q.
		Preload("TaskRatings").
		Preload("Location").
		Preload("Staff").
		Order("date DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&submissions).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list submissions")
	}

	return helper.JsonList(c, "Submissions fetched",
		dto.ToSubmissionListResponses(submissions),
		helper.BuildPaginationFromPage(total, page, perPage))
}

// GET /api/cleanings/submissions/:id
func (ctrl *SubmissionController) GetSubmission(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	submission, err := ctrl.findVisible(caller, c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Submission not found")
	}

	full, err := ctrl.loadDetail(submission.ID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load submission")
	}
	return helper.JsonOK(c, "Submission fetched", dto.ToSubmissionResponse(full, c.Query("language", "en")))
}

// DELETE /api/cleanings/submissions/:id
func (ctrl *SubmissionController) DeleteSubmission(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	submission, err := ctrl.findVisible(caller, c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Submission not found")
	}

	if err := ctrl.Service.Delete(submission); err != nil {
		log.Printf("[ERROR] delete submission %d: %v", submission.ID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete submission")
	}
	return helper.JsonDeleted(c, "Submission deleted", fiber.Map{"id": submission.ID})
}

// GET /api/cleanings/submissions/today
func (ctrl *SubmissionController) TodaySubmissions(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	today := service.DateOnly(time.Now().UTC())

	var submissions []model.SubmissionModel
	err = ctrl.scopedQuery(caller).
		Where("date = ?", today).
		Preload("TaskRatings").
		Preload("Location").
		Preload("Staff").
		Order("id DESC").
		Find(&submissions).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list submissions")
	}

	return helper.JsonOK(c, "Today's submissions fetched", dto.ToSubmissionListResponses(submissions))
}

// GET /api/cleanings/submissions/stats?days=N
func (ctrl *SubmissionController) GlobalStats(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	days, err := service.ParseDays(c.Query("days"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := ctrl.Stats.GlobalStats(ctrl.scopedQuery(caller), days)
	if err != nil {
		log.Printf("[ERROR] global stats: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to compute stats")
	}
	return helper.JsonOK(c, "Stats computed", stats)
}

func (ctrl *SubmissionController) loadDetail(id uint) (*model.SubmissionModel, error) {
	var submission model.SubmissionModel
	err := ctrl.DB.
		Preload("TaskRatings", func(db *gorm.DB) *gorm.DB {
			return db.Order("task_ratings.checklist_item_id ASC")
		}).
		Preload("TaskRatings.ChecklistItem").
		Preload("TaskRatings.Photos").
		Preload("Location").
		Preload("Staff").
		First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}
