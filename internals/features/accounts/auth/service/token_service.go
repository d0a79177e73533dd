// internals/features/accounts/auth/service/token_service.go
package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"cleantrack_backend/internals/configs"
	authModel "cleantrack_backend/internals/features/accounts/auth/model"
	userModel "cleantrack_backend/internals/features/accounts/user/model"
)

const (
	AccessTTL  = 24 * time.Hour
	RefreshTTL = 7 * 24 * time.Hour
)

var (
	ErrRefreshInvalid = errors.New("refresh token invalid")
	ErrRefreshUnknown = errors.New("refresh token unknown or expired")
)

func getJWTSecret() (string, error) {
	secret := strings.TrimSpace(configs.JWTSecret)
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	return secret, nil
}

func getRefreshSecret() (string, error) {
	secret := strings.TrimSpace(configs.JWTRefreshSecret)
	if secret == "" {
		return "", errors.New("JWT_REFRESH_SECRET is not set")
	}
	return secret, nil
}

// IssueTokenPair signs a new access+refresh pair and persists the refresh
// token so it can be rotated and revoked.
func IssueTokenPair(db *gorm.DB, user *userModel.UserModel) (access string, refresh string, err error) {
	jwtSecret, err := getJWTSecret()
	if err != nil {
		return "", "", err
	}
	refreshSecret, err := getRefreshSecret()
	if err != nil {
		return "", "", err
	}

	now := time.Now().UTC()

	accessClaims := jwt.MapClaims{
		"sub":       user.ID,
		"user_name": user.Username,
		"role":      user.Role,
		"typ":       "access",
		"iat":       now.Unix(),
		"exp":       now.Add(AccessTTL).Unix(),
	}
	access, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(jwtSecret))
	if err != nil {
		return "", "", err
	}

	refreshExp := now.Add(RefreshTTL)
	refreshClaims := jwt.MapClaims{
		"sub": user.ID,
		"typ": "refresh",
		"iat": now.Unix(),
		"exp": refreshExp.Unix(),
	}
	refresh, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(refreshSecret))
	if err != nil {
		return "", "", err
	}

	row := authModel.RefreshTokenModel{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: refreshExp,
	}
	if err := db.Create(&row).Error; err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

// RotateRefreshToken validates a refresh token, deletes its row and returns
// the owning user. The caller issues a fresh pair afterwards.
func RotateRefreshToken(db *gorm.DB, refreshToken string) (*userModel.UserModel, error) {
	refreshSecret, err := getRefreshSecret()
	if err != nil {
		return nil, err
	}

	tok, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(refreshSecret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrRefreshInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != "refresh" {
		return nil, ErrRefreshInvalid
	}

	var row authModel.RefreshTokenModel
	if err := db.Where("token = ?", refreshToken).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshUnknown
		}
		return nil, err
	}
	if time.Now().After(row.ExpiresAt) {
		_ = db.Delete(&row).Error
		return nil, ErrRefreshUnknown
	}

	// rotation: a refresh token is single-use
	if err := db.Delete(&row).Error; err != nil {
		return nil, err
	}

	var user userModel.UserModel
	if err := db.First(&user, row.UserID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// PurgeExpiredRefreshTokens drops refresh rows past their expiry.
func PurgeExpiredRefreshTokens(db *gorm.DB) error {
	return db.Where("expires_at < ?", time.Now()).
		Delete(&authModel.RefreshTokenModel{}).Error
}
