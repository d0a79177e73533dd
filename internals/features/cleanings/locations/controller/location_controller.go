package controller

import (
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cleantrack_backend/internals/features/cleanings/locations/dto"
	"cleantrack_backend/internals/features/cleanings/locations/model"
	submissionModel "cleantrack_backend/internals/features/cleanings/submissions/model"
	"cleantrack_backend/internals/features/cleanings/submissions/service"
	helper "cleantrack_backend/internals/helpers"
	authz "cleantrack_backend/internals/helpers/auth"
	storage "cleantrack_backend/internals/helpers/storage"
)

var validate = validator.New()

type LocationController struct {
	DB          *gorm.DB
	Submissions *service.SubmissionService
	Stats       *service.StatsService
	Policy      authz.Policy
}

func NewLocationController(db *gorm.DB, photos *storage.PhotoStore) *LocationController {
	return &LocationController{
		DB:          db,
		Submissions: service.NewSubmissionService(db, photos),
		Stats:       service.NewStatsService(db),
		Policy:      authz.NewPolicy(),
	}
}

// GET /api/cleanings/locations
func (ctrl *LocationController) ListLocations(c *fiber.Ctx) error {
	q := ctrl.DB.Model(&model.LocationModel{}).Preload("ChecklistItems")

	if status := c.Query("status"); status != "" {
		if !model.IsValidStatus(status) {
			return helper.JsonValidationError(c, map[string][]string{"status": {"status must be active or inactive"}})
		}
		q = q.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	ordering := c.Query("ordering", "name")
	switch ordering {
	case "name":
		q = q.Order("name ASC")
	case "-name":
		q = q.Order("name DESC")
	case "created_at":
		q = q.Order("created_at ASC")
	case "-created_at":
		q = q.Order("created_at DESC")
	default:
		return helper.JsonValidationError(c, map[string][]string{"ordering": {"unsupported ordering field"}})
	}

	var locations []model.LocationModel
	if err := q.Find(&locations).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list locations")
	}
	return helper.JsonOK(c, "Locations fetched", dto.ToLocationResponseList(locations, c.Query("language", "en")))
}

// GET /api/cleanings/locations/:id
func (ctrl *LocationController) GetLocation(c *fiber.Ctx) error {
	var location model.LocationModel
	if err := ctrl.DB.Preload("ChecklistItems").First(&location, "id = ?", c.Params("id")).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Location not found")
	}
	return helper.JsonOK(c, "Location fetched", dto.ToLocationResponse(&location, c.Query("language", "en")))
}

// POST /api/cleanings/locations (admin)
func (ctrl *LocationController) CreateLocation(c *fiber.Ctx) error {
	var req dto.CreateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}
	if req.Status == "" {
		req.Status = model.StatusActive
	}

	location := model.LocationModel{Name: req.Name, Status: req.Status}
	if err := ctrl.DB.Create(&location).Error; err != nil {
		log.Printf("[ERROR] create location: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create location")
	}
	return helper.JsonCreated(c, "Location created", dto.ToLocationResponse(&location, "en"))
}

// PUT /api/cleanings/locations/:id (admin)
func (ctrl *LocationController) UpdateLocation(c *fiber.Ctx) error {
	var location model.LocationModel
	if err := ctrl.DB.First(&location, "id = ?", c.Params("id")).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Location not found")
	}

	var req dto.UpdateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) > 0 {
		if err := ctrl.DB.Model(&location).Updates(updates).Error; err != nil {
			log.Printf("[ERROR] update location %d: %v", location.ID, err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update location")
		}
	}

	if err := ctrl.DB.Preload("ChecklistItems").First(&location, location.ID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load location")
	}
	return helper.JsonUpdated(c, "Location updated", dto.ToLocationResponse(&location, "en"))
}

// DELETE /api/cleanings/locations/:id (admin)
// Cascades: submissions (with their ratings, photo rows and files), then the
// checklist, then the location itself.
func (ctrl *LocationController) DeleteLocation(c *fiber.Ctx) error {
	var location model.LocationModel
	if err := ctrl.DB.First(&location, "id = ?", c.Params("id")).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Location not found")
	}

	if err := ctrl.Submissions.DeleteAllForLocation(location.ID); err != nil {
		log.Printf("[ERROR] cascade submissions for location %d: %v", location.ID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete location")
	}

	err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("location_id = ?", location.ID).Delete(&model.ChecklistItemModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&location).Error
	})
	if err != nil {
		log.Printf("[ERROR] delete location %d: %v", location.ID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete location")
	}
	return helper.JsonDeleted(c, "Location deleted", fiber.Map{"id": location.ID})
}

// GET /api/cleanings/locations/:id/stats
func (ctrl *LocationController) LocationStats(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	role, err := helper.GetRoleFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	caller := authz.Caller{ID: userID, Role: role}

	var location model.LocationModel
	if err := ctrl.DB.First(&location, "id = ?", c.Params("id")).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Location not found")
	}

	days, err := service.ParseDays(c.Query("days"))
	if err != nil {
		return helper.JsonValidationError(c, map[string][]string{"days": {err.Error()}})
	}

	base := ctrl.Policy.ScopeSubmissions(ctrl.DB.Model(&submissionModel.SubmissionModel{}), caller)
	stats, err := ctrl.Stats.LocationStats(base, location.ID, days)
	if err != nil {
		log.Printf("[ERROR] location stats %d: %v", location.ID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to compute stats")
	}
	return helper.JsonOK(c, "Location stats fetched", stats)
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, fiber.ErrNotFound
	}
	return uint(id), nil
}
