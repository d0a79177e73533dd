package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"cleantrack_backend/internals/middlewares/logger"
)

// SetupMiddlewares registers the base middleware chain for every request.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(logger.RequestLogger())
}
