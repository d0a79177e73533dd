package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cleantrack_backend/internals/features/cleanings/submissions/controller"
	storage "cleantrack_backend/internals/helpers/storage"
)

// SubmissionRoutes mounts the submission family for authenticated callers.
// Ownership is enforced inside the controllers (query scoping), not here.
func SubmissionRoutes(api fiber.Router, db *gorm.DB, photos *storage.PhotoStore) {
	submissionCtrl := controller.NewSubmissionController(db, photos)
	ratingCtrl := controller.NewTaskRatingController(db, photos)
	photoCtrl := controller.NewPhotoController(db, photos)

	submissions := api.Group("/submissions")
	// literal paths before /:id so "today" and "stats" never bind as ids
	submissions.Get("/today", submissionCtrl.TodaySubmissions)
	submissions.Get("/stats", submissionCtrl.GlobalStats)
	submissions.Get("/", submissionCtrl.ListSubmissions)
	submissions.Post("/", submissionCtrl.CreateSubmission)
	submissions.Get("/:id", submissionCtrl.GetSubmission)
	submissions.Put("/:id", submissionCtrl.UpdateSubmission)
	submissions.Delete("/:id", submissionCtrl.DeleteSubmission)

	ratings := api.Group("/task-ratings")
	ratings.Get("/", ratingCtrl.ListTaskRatings)
	ratings.Post("/", ratingCtrl.CreateTaskRating)
	ratings.Get("/:id", ratingCtrl.GetTaskRating)
	ratings.Put("/:id", ratingCtrl.UpdateTaskRating)
	ratings.Delete("/:id", ratingCtrl.DeleteTaskRating)

	photoGroup := api.Group("/photos")
	photoGroup.Get("/", photoCtrl.ListPhotos)
	photoGroup.Post("/", photoCtrl.CreatePhoto)
	photoGroup.Get("/:id", photoCtrl.GetPhoto)
	photoGroup.Delete("/:id", photoCtrl.DeletePhoto)
}
