package seeds

import (
	"log"

	"gorm.io/gorm"

	"cleantrack_backend/internals/configs"
	"cleantrack_backend/internals/constants"
	authService "cleantrack_backend/internals/features/accounts/auth/service"
	userModel "cleantrack_backend/internals/features/accounts/user/model"
)

// EnsureDefaultAdmin bootstraps the first admin account when the users table
// is empty. Registration is admin-gated, so without this a fresh deployment
// has no way in.
func EnsureDefaultAdmin(db *gorm.DB) {
	var count int64
	if err := db.Model(&userModel.UserModel{}).Count(&count).Error; err != nil {
		log.Printf("[ERROR] admin seed count: %v", err)
		return
	}
	if count > 0 {
		return
	}

	username := configs.GetEnv("ADMIN_USERNAME", "admin")
	password := configs.GetEnv("ADMIN_PASSWORD", "admin12345")
	if password == "admin12345" {
		log.Println("[WARN] seeding admin with the default password, set ADMIN_PASSWORD")
	}

	hashed, err := authService.HashPassword(password)
	if err != nil {
		log.Printf("[ERROR] admin seed hash: %v", err)
		return
	}

	admin := userModel.UserModel{
		Username: username,
		Email:    configs.GetEnv("ADMIN_EMAIL", username+"@localhost"),
		Password: hashed,
		Role:     constants.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("[ERROR] admin seed create: %v", err)
		return
	}
	log.Printf("[INFO] seeded default admin %q", username)
}
