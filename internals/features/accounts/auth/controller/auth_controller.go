package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cleantrack_backend/internals/constants"
	"cleantrack_backend/internals/features/accounts/auth/dto"
	"cleantrack_backend/internals/features/accounts/auth/service"
	userDto "cleantrack_backend/internals/features/accounts/user/dto"
	userModel "cleantrack_backend/internals/features/accounts/user/model"
	helper "cleantrack_backend/internals/helpers"
)

var validate = validator.New()

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

// POST /api/accounts/login
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}

	var user userModel.UserModel
	if err := ctrl.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid username or password")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Login failed")
	}

	if !service.CheckPassword(user.Password, req.Password) {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid username or password")
	}
	if !user.IsActive {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Account has been deactivated")
	}

	access, refresh, err := service.IssueTokenPair(ctrl.DB, &user)
	if err != nil {
		log.Printf("[ERROR] issue token pair: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Login failed")
	}

	return helper.JsonOK(c, "Login successful", dto.TokenPairResponse{
		Access:  access,
		Refresh: refresh,
	})
}

// POST /api/accounts/refresh
func (ctrl *AuthController) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}

	user, err := service.RotateRefreshToken(ctrl.DB, req.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrRefreshInvalid) || errors.Is(err, service.ErrRefreshUnknown) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Refresh token invalid")
		}
		log.Printf("[ERROR] rotate refresh token: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Refresh failed")
	}
	if !user.IsActive {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Account has been deactivated")
	}

	access, refresh, err := service.IssueTokenPair(ctrl.DB, user)
	if err != nil {
		log.Printf("[ERROR] issue token pair: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Refresh failed")
	}

	return helper.JsonOK(c, "Token refreshed", dto.TokenPairResponse{
		Access:  access,
		Refresh: refresh,
	})
}

// POST /api/accounts/register  (admin only, enforced at the route group)
func (ctrl *AuthController) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorMap(err))
	}

	// duplicate checks up front so the caller gets field errors, not a bare
	// constraint violation
	fieldErrors := map[string][]string{}
	var count int64
	ctrl.DB.Model(&userModel.UserModel{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		fieldErrors["username"] = append(fieldErrors["username"], "username already taken")
	}
	count = 0
	ctrl.DB.Model(&userModel.UserModel{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		fieldErrors["email"] = append(fieldErrors["email"], "email already registered")
	}
	if len(fieldErrors) > 0 {
		return helper.JsonValidationError(c, fieldErrors)
	}

	hashed, err := service.HashPassword(req.Password)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Registration failed")
	}

	role := req.Role
	if role == "" {
		role = constants.RoleStaff
	}

	user := userModel.UserModel{
		Username:  req.Username,
		Email:     req.Email,
		Password:  hashed,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		Phone:     req.Phone,
		IsActive:  true,
	}
	if err := ctrl.DB.Create(&user).Error; err != nil {
		log.Printf("[ERROR] create user: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Registration failed")
	}

	return helper.JsonCreated(c, "User registered", userDto.ToUserResponse(&user))
}
