package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cleantrack_backend/internals/constants"
	"cleantrack_backend/internals/features/accounts/auth/controller"
	authMiddleware "cleantrack_backend/internals/middlewares/auth"
)

// AuthPublicRoutes: token endpoints, no auth required.
func AuthPublicRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAuthController(db)

	accounts := api.Group("/accounts")
	accounts.Post("/login", ctrl.Login)
	accounts.Post("/refresh", ctrl.Refresh)
}

// AuthAdminRoutes: registration is restricted to admins.
func AuthAdminRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAuthController(db)

	accounts := api.Group("/accounts",
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("user registration"), constants.AdminOnly...),
	)
	accounts.Post("/register", ctrl.Register)
}
