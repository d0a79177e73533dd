package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authService "cleantrack_backend/internals/features/accounts/auth/service"
	"cleantrack_backend/internals/features/accounts/user/dto"
	"cleantrack_backend/internals/features/accounts/user/model"
	helper "cleantrack_backend/internals/helpers"
	authz "cleantrack_backend/internals/helpers/auth"
)

var validate = validator.New()

type UserController struct {
	DB     *gorm.DB
	Policy authz.Policy
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db, Policy: authz.NewPolicy()}
}

func (ctrl *UserController) caller(c *fiber.Ctx) (authz.Caller, error) {
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

// GET /api/accounts/me
func (ctrl *UserController) GetMe(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var user model.UserModel
	if err := ctrl.DB.First(&user, userID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "User not found")
	}

	return helper.JsonOK(c, "Profile fetched", dto.ToUserResponse(&user))
}

// PUT /api/accounts/me
func (ctrl *UserController) UpdateMe(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var user model.UserModel
	if err := ctrl.DB.First(&user, userID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "User not found")
	}

	var req dto.UpdateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}

	updates := map[string]interface{}{}
	if req.Email != nil {
		var count int64
		ctrl.DB.Model(&model.UserModel{}).
			Where("email = ? AND id <> ?", *req.Email, user.ID).Count(&count)
		if count > 0 {
			return helper.JsonValidationError(c, map[string][]string{
				"email": {"email already registered"},
			})
		}
		updates["email"] = *req.Email
	}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Password != nil {
		hashed, err := authService.HashPassword(*req.Password)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update profile")
		}
		updates["password"] = hashed
	}

	if len(updates) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "No fields to update")
	}

	if err := ctrl.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("[ERROR] update profile: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update profile")
	}

	if err := ctrl.DB.First(&user, userID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to reload profile")
	}

	return helper.JsonUpdated(c, "Profile updated", dto.ToUserResponse(&user))
}

// GET /api/accounts/users
// Admins list everyone; everyone else gets a query already narrowed to their
// own row, so nothing can leak through the response shaping.
func (ctrl *UserController) ListUsers(c *fiber.Ctx) error {
	caller, err := ctrl.caller(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	q := ctrl.Policy.ScopeUsers(ctrl.DB.Model(&model.UserModel{}), caller)

	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("username LIKE ? OR email LIKE ?", like, like)
	}

	var users []model.UserModel
	if err := q.Order("username ASC").Find(&users).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list users")
	}

	return helper.JsonOK(c, "Users fetched", dto.ToUserResponseList(users))
}
