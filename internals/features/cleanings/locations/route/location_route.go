package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cleantrack_backend/internals/constants"
	"cleantrack_backend/internals/features/cleanings/locations/controller"
	storage "cleantrack_backend/internals/helpers/storage"
	authMiddleware "cleantrack_backend/internals/middlewares/auth"
)

// LocationUserRoutes: catalog reads plus per-location stats for any
// authenticated caller.
func LocationUserRoutes(api fiber.Router, db *gorm.DB, photos *storage.PhotoStore) {
	locationCtrl := controller.NewLocationController(db, photos)
	checklistCtrl := controller.NewChecklistItemController(db, photos)

	locations := api.Group("/locations")
	locations.Get("/", locationCtrl.ListLocations)
	locations.Get("/:id", locationCtrl.GetLocation)
	locations.Get("/:id/stats", locationCtrl.LocationStats)

	items := api.Group("/checklist-items")
	items.Get("/", checklistCtrl.ListChecklistItems)
	items.Get("/:id", checklistCtrl.GetChecklistItem)
}

// LocationAdminRoutes: catalog writes, admin only.
func LocationAdminRoutes(api fiber.Router, db *gorm.DB, photos *storage.PhotoStore) {
	locationCtrl := controller.NewLocationController(db, photos)
	checklistCtrl := controller.NewChecklistItemController(db, photos)

	adminGate := authMiddleware.OnlyRoles(constants.RoleErrorAdmin("the cleaning catalog"), constants.AdminOnly...)

	locations := api.Group("/locations", adminGate)
	locations.Post("/", locationCtrl.CreateLocation)
	locations.Put("/:id", locationCtrl.UpdateLocation)
	locations.Delete("/:id", locationCtrl.DeleteLocation)

	items := api.Group("/checklist-items", adminGate)
	items.Post("/", checklistCtrl.CreateChecklistItem)
	items.Put("/:id", checklistCtrl.UpdateChecklistItem)
	items.Delete("/:id", checklistCtrl.DeleteChecklistItem)
}
