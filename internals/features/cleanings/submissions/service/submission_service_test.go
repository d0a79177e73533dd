package service

import (
	"bytes"
	"image"
	"image/color"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authModel "cleantrack_backend/internals/features/accounts/auth/model"
	userModel "cleantrack_backend/internals/features/accounts/user/model"
	locationModel "cleantrack_backend/internals/features/cleanings/locations/model"
	"cleantrack_backend/internals/features/cleanings/submissions/model"
	storage "cleantrack_backend/internals/helpers/storage"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userModel.UserModel{},
		&authModel.RefreshTokenModel{},
		&locationModel.LocationModel{},
		&locationModel.ChecklistItemModel{},
		&model.SubmissionModel{},
		&model.TaskRatingModel{},
		&model.PhotoModel{},
	))
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) (staff userModel.UserModel, location locationModel.LocationModel, items []locationModel.ChecklistItemModel) {
	t.Helper()
	staff = userModel.UserModel{Username: "staff1", Email: "staff1@example.com", Password: "x", Role: "staff", IsActive: true}
	require.NoError(t, db.Create(&staff).Error)

	location = locationModel.LocationModel{Name: "Departure Hall", Status: locationModel.StatusActive}
	require.NoError(t, db.Create(&location).Error)

	items = []locationModel.ChecklistItemModel{
		{LocationID: location.ID, TitleEn: "Floors"},
		{LocationID: location.ID, TitleEn: "Windows"},
	}
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
	}
	return staff, location, items
}

// makeImageUpload builds a real multipart file header carrying a decodable JPEG.
func makeImageUpload(t *testing.T) *multipart.FileHeader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 40, A: 255})
		}
	}
	var encoded bytes.Buffer
	require.NoError(t, imaging.Encode(&encoded, img, imaging.JPEG))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "upload.jpg")
	require.NoError(t, err)
	_, err = part.Write(encoded.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(bytes.NewReader(body.Bytes()), writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	return form.File["file"][0]
}

func newTestService(t *testing.T, db *gorm.DB) *SubmissionService {
	t.Helper()
	return NewSubmissionService(db, storage.NewPhotoStore(t.TempDir()))
}

func TestCreateSubmissionComputesCompletionRate(t *testing.T) {
	db := setupTestDB(t)
	staff, location, items := seedCatalog(t, db)
	svc := newTestService(t, db)

	submission, err := svc.Create(location.ID, staff.ID, time.Now(), []RatingEntry{
		{ChecklistItemID: items[0].ID, Rating: 8},
		{ChecklistItemID: items[1].ID, Rating: 6},
	})
	require.NoError(t, err)

	var loaded model.SubmissionModel
	require.NoError(t, db.Preload("TaskRatings").First(&loaded, submission.ID).Error)
	assert.Len(t, loaded.TaskRatings, 2)
	// (8+6) / 20 possible = 70%
	assert.Equal(t, 70, loaded.CompletionRate())
}

func TestCreateSubmissionRejectsDuplicate(t *testing.T) {
	db := setupTestDB(t)
	staff, location, items := seedCatalog(t, db)
	svc := newTestService(t, db)

	date := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)
	_, err := svc.Create(location.ID, staff.ID, date, []RatingEntry{{ChecklistItemID: items[0].ID, Rating: 5}})
	require.NoError(t, err)

	// same calendar day at a different clock time is still the same triple
	_, err = svc.Create(location.ID, staff.ID, date.Add(3*time.Hour), nil)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	var count int64
	db.Model(&model.SubmissionModel{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateUpsertsByChecklistItem(t *testing.T) {
	db := setupTestDB(t)
	staff, location, items := seedCatalog(t, db)
	svc := newTestService(t, db)

	submission, err := svc.Create(location.ID, staff.ID, time.Now(), []RatingEntry{
		{ChecklistItemID: items[0].ID, Rating: 3, Notes: "first pass"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Update(submission, []RatingEntry{
		{ChecklistItemID: items[0].ID, Rating: 9, Notes: "re-cleaned"},
		{ChecklistItemID: items[1].ID, Rating: 7},
	}))

	var ratings []model.TaskRatingModel
	require.NoError(t, db.Where("submission_id = ?", submission.ID).Order("checklist_item_id").Find(&ratings).Error)
	require.Len(t, ratings, 2)
	assert.Equal(t, 9, ratings[0].Rating)
	assert.Equal(t, "re-cleaned", ratings[0].Notes)
	assert.Equal(t, 7, ratings[1].Rating)
}

func TestUpdateAppendsPhotos(t *testing.T) {
	db := setupTestDB(t)
	staff, location, items := seedCatalog(t, db)
	svc := newTestService(t, db)

	submission, err := svc.Create(location.ID, staff.ID, time.Now(), []RatingEntry{
		{ChecklistItemID: items[0].ID, Rating: 5, Images: []*multipart.FileHeader{makeImageUpload(t)}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Update(submission, []RatingEntry{
		{ChecklistItemID: items[0].ID, Rating: 6, Images: []*multipart.FileHeader{makeImageUpload(t)}},
	}))

	var photos []model.PhotoModel
	require.NoError(t, db.Find(&photos).Error)
	assert.Len(t, photos, 2, "photos accumulate, updates never drop them")
	for _, p := range photos {
		assert.FileExists(t, filepath.Join(svc.Photos.Root, filepath.FromSlash(p.Image)))
	}
}

func TestCreateRollsBackFilesOnBadImage(t *testing.T) {
	db := setupTestDB(t)
	staff, location, items := seedCatalog(t, db)
	svc := newTestService(t, db)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("definitely not a jpeg"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	form, err := multipart.NewReader(bytes.NewReader(body.Bytes()), writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	badFile := form.File["file"][0]

	_, err = svc.Create(location.ID, staff.ID, time.Now(), []RatingEntry{
		{ChecklistItemID: items[0].ID, Rating: 5, Images: []*multipart.FileHeader{makeImageUpload(t), badFile}},
	})
	assert.ErrorIs(t, err, storage.ErrNotAnImage)

	var count int64
	db.Model(&model.SubmissionModel{}).Count(&count)
	assert.Equal(t, int64(0), count, "the whole submission rolls back")
}

func TestDeleteSubmissionCascades(t *testing.T) {
	db := setupTestDB(t)
	staff, location, items := seedCatalog(t, db)
	svc := newTestService(t, db)

	submission, err := svc.Create(location.ID, staff.ID, time.Now(), []RatingEntry{
		{ChecklistItemID: items[0].ID, Rating: 8, Images: []*multipart.FileHeader{makeImageUpload(t)}},
		{ChecklistItemID: items[1].ID, Rating: 4},
	})
	require.NoError(t, err)

	var photo model.PhotoModel
	require.NoError(t, db.First(&photo).Error)
	photoPath := filepath.Join(svc.Photos.Root, filepath.FromSlash(photo.Image))
	require.FileExists(t, photoPath)

	require.NoError(t, svc.Delete(submission))

	var submissions, ratings, photos int64
	db.Model(&model.SubmissionModel{}).Count(&submissions)
	db.Model(&model.TaskRatingModel{}).Count(&ratings)
	db.Model(&model.PhotoModel{}).Count(&photos)
	assert.Zero(t, submissions)
	assert.Zero(t, ratings)
	assert.Zero(t, photos)

	_, err = os.Stat(photoPath)
	assert.True(t, os.IsNotExist(err), "stored file goes with the rows")
}

func TestDeleteAllForLocation(t *testing.T) {
	db := setupTestDB(t)
	staff, location, items := seedCatalog(t, db)
	svc := newTestService(t, db)

	_, err := svc.Create(location.ID, staff.ID, time.Now(), []RatingEntry{{ChecklistItemID: items[0].ID, Rating: 5}})
	require.NoError(t, err)
	_, err = svc.Create(location.ID, staff.ID, time.Now().AddDate(0, 0, -1), []RatingEntry{{ChecklistItemID: items[1].ID, Rating: 6}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAllForLocation(location.ID))

	var count int64
	db.Model(&model.SubmissionModel{}).Count(&count)
	assert.Zero(t, count)
}

func TestCompletionRateEmptySubmission(t *testing.T) {
	db := setupTestDB(t)
	staff, location, _ := seedCatalog(t, db)
	svc := newTestService(t, db)

	submission, err := svc.Create(location.ID, staff.ID, time.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, submission.CompletionRate())
}
