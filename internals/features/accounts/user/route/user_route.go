package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cleantrack_backend/internals/features/accounts/user/controller"
)

// UserRoutes: profile and user listing for any authenticated caller. The
// listing itself is ownership-scoped, so no extra role gate here.
func UserRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewUserController(db)

	accounts := api.Group("/accounts")
	accounts.Get("/me", ctrl.GetMe)
	accounts.Put("/me", ctrl.UpdateMe)
	accounts.Get("/users", ctrl.ListUsers)
}
