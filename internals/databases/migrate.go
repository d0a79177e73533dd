package database

import (
	"log"

	"gorm.io/gorm"

	authModel "cleantrack_backend/internals/features/accounts/auth/model"
	userModel "cleantrack_backend/internals/features/accounts/user/model"
	locationModel "cleantrack_backend/internals/features/cleanings/locations/model"
	submissionModel "cleantrack_backend/internals/features/cleanings/submissions/model"
)

// Migrate runs the schema migration for every model in dependency order.
func Migrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&userModel.UserModel{},
		&authModel.RefreshTokenModel{},
		&locationModel.LocationModel{},
		&locationModel.ChecklistItemModel{},
		&submissionModel.SubmissionModel{},
		&submissionModel.TaskRatingModel{},
		&submissionModel.PhotoModel{},
	)
	if err != nil {
		log.Fatalf("[ERROR] migration failed: %v", err)
	}
	log.Println("[INFO] migrations applied")
}
