// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cleantrack_backend/internals/configs"
	authRoute "cleantrack_backend/internals/features/accounts/auth/route"
	userRoute "cleantrack_backend/internals/features/accounts/user/route"
	locationRoute "cleantrack_backend/internals/features/cleanings/locations/route"
	submissionRoute "cleantrack_backend/internals/features/cleanings/submissions/route"
	storage "cleantrack_backend/internals/helpers/storage"
	authMiddleware "cleantrack_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()
	photos := storage.NewPhotoStore(configs.MediaRoot)

	BaseRoutes(app, db)

	// ===================== PUBLIC =====================
	log.Println("[INFO] Setting up PUBLIC routes...")
	public := app.Group("/api")
	authRoute.AuthPublicRoutes(public, db)

	// ===================== AUTHENTICATED =====================
	log.Println("[INFO] Setting up AUTHENTICATED routes...")
	private := app.Group("/api", authMiddleware.AuthMiddleware(db))

	userRoute.UserRoutes(private, db)
	authRoute.AuthAdminRoutes(private, db)

	cleanings := private.Group("/cleanings")
	locationRoute.LocationUserRoutes(cleanings, db, photos)
	locationRoute.LocationAdminRoutes(cleanings, db, photos)
	submissionRoute.SubmissionRoutes(cleanings, db, photos)
}
