package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	userModel "cleantrack_backend/internals/features/accounts/user/model"
	locationModel "cleantrack_backend/internals/features/cleanings/locations/model"
	"cleantrack_backend/internals/features/cleanings/submissions/model"
	"cleantrack_backend/internals/features/cleanings/submissions/route"
	storage "cleantrack_backend/internals/helpers/storage"
)

type testEnv struct {
	db     *gorm.DB
	photos *storage.PhotoStore

	admin  userModel.UserModel
	staff1 userModel.UserModel
	staff2 userModel.UserModel

	location locationModel.LocationModel
	items    []locationModel.ChecklistItemModel
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userModel.UserModel{},
		&locationModel.LocationModel{},
		&locationModel.ChecklistItemModel{},
		&model.SubmissionModel{},
		&model.TaskRatingModel{},
		&model.PhotoModel{},
	))

	env := &testEnv{db: db, photos: storage.NewPhotoStore(t.TempDir())}

	env.admin = userModel.UserModel{Username: "boss", Email: "boss@example.com", Password: "x", Role: "admin", IsActive: true}
	env.staff1 = userModel.UserModel{Username: "staff1", Email: "staff1@example.com", Password: "x", Role: "staff", IsActive: true}
	env.staff2 = userModel.UserModel{Username: "staff2", Email: "staff2@example.com", Password: "x", Role: "staff", IsActive: true}
	for _, u := range []*userModel.UserModel{&env.admin, &env.staff1, &env.staff2} {
		require.NoError(t, db.Create(u).Error)
	}

	env.location = locationModel.LocationModel{Name: "Departure Hall", Status: locationModel.StatusActive}
	require.NoError(t, db.Create(&env.location).Error)
	env.items = []locationModel.ChecklistItemModel{
		{LocationID: env.location.ID, TitleEn: "Floors"},
		{LocationID: env.location.ID, TitleEn: "Windows"},
	}
	for i := range env.items {
		require.NoError(t, db.Create(&env.items[i]).Error)
	}
	return env
}

// appAs builds the route tree behind a stub auth layer acting as the given user.
func (env *testEnv) appAs(user userModel.UserModel) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", user.ID)
		c.Locals("user_name", user.Username)
		c.Locals("userRole", user.Role)
		return c.Next()
	})
	api := app.Group("/api/cleanings")
	route.SubmissionRoutes(api, env.db, env.photos)
	return app
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

type ratingPayload struct {
	ChecklistItem uint   `json:"checklist_item"`
	Rating        int    `json:"rating"`
	Notes         string `json:"notes,omitempty"`
}

// submissionRequest builds the multipart body the web client sends: a
// task_ratings_data JSON field plus indexed image parts.
func submissionRequest(t *testing.T, method, target string, fields map[string]string, ratings []ratingPayload, imagesPerEntry map[int][][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if ratings != nil {
		encoded, err := json.Marshal(ratings)
		require.NoError(t, err)
		require.NoError(t, writer.WriteField("task_ratings_data", string(encoded)))
	}
	for entryIdx, blobs := range imagesPerEntry {
		for j, blob := range blobs {
			part, err := writer.CreateFormFile(
				fmt.Sprintf("task_ratings_data[%d].uploaded_images[%d]", entryIdx, j),
				fmt.Sprintf("photo-%d-%d.jpg", entryIdx, j),
			)
			require.NoError(t, err)
			_, err = part.Write(blob)
			require.NoError(t, err)
		}
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func TestCreateSubmissionWithRatingsAndPhotos(t *testing.T) {
	env := newTestEnv(t)
	app := env.appAs(env.staff1)

	req := submissionRequest(t, http.MethodPost, "/api/cleanings/submissions",
		map[string]string{
			"location": fmt.Sprintf("%d", env.location.ID),
			"date":     time.Now().UTC().Format("2006-01-02"),
		},
		[]ratingPayload{
			{ChecklistItem: env.items[0].ID, Rating: 8, Notes: "ok"},
			{ChecklistItem: env.items[1].ID, Rating: 6},
		},
		map[int][][]byte{0: {jpegBytes(t)}},
	)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var data struct {
		ID             uint `json:"id"`
		CompletionRate int  `json:"completion_rate"`
		TaskRatings    []struct {
			Rating int `json:"rating"`
			Photos []struct {
				Image string `json:"image"`
			} `json:"photos"`
		} `json:"task_ratings"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &data))
	assert.Equal(t, 70, data.CompletionRate)
	require.Len(t, data.TaskRatings, 2)
	require.Len(t, data.TaskRatings[0].Photos, 1)
	assert.Contains(t, data.TaskRatings[0].Photos[0].Image, "/media/submissions/")
}

func TestCreateSubmissionDuplicateRejected(t *testing.T) {
	env := newTestEnv(t)
	app := env.appAs(env.staff1)
	date := time.Now().UTC().Format("2006-01-02")

	fields := map[string]string{"location": fmt.Sprintf("%d", env.location.ID), "date": date}
	resp, err := app.Test(submissionRequest(t, http.MethodPost, "/api/cleanings/submissions", fields,
		[]ratingPayload{{ChecklistItem: env.items[0].ID, Rating: 5}}, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(submissionRequest(t, http.MethodPost, "/api/cleanings/submissions", fields,
		[]ratingPayload{{ChecklistItem: env.items[0].ID, Rating: 7}}, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateSubmissionUnknownLocation(t *testing.T) {
	env := newTestEnv(t)
	app := env.appAs(env.staff1)

	resp, err := app.Test(submissionRequest(t, http.MethodPost, "/api/cleanings/submissions",
		map[string]string{"location": "9999", "date": "2026-01-01"}, nil, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateSubmissionInvalidRating(t *testing.T) {
	env := newTestEnv(t)
	app := env.appAs(env.staff1)

	resp, err := app.Test(submissionRequest(t, http.MethodPost, "/api/cleanings/submissions",
		map[string]string{"location": fmt.Sprintf("%d", env.location.ID), "date": "2026-01-01"},
		[]ratingPayload{{ChecklistItem: env.items[0].ID, Rating: 11}}, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmissionOwnershipScoping(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.appAs(env.staff1).Test(submissionRequest(t, http.MethodPost, "/api/cleanings/submissions",
		map[string]string{"location": fmt.Sprintf("%d", env.location.ID), "date": "2026-08-01"},
		[]ratingPayload{{ChecklistItem: env.items[0].ID, Rating: 5}}, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var data struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &data))
	detail := fmt.Sprintf("/api/cleanings/submissions/%d", data.ID)

	// another staff member sees not-found, never forbidden
	resp, err = env.appAs(env.staff2).Test(httptest.NewRequest(http.MethodGet, detail, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = env.appAs(env.admin).Test(httptest.NewRequest(http.MethodGet, detail, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// staff2's list is empty, the owner's has one row
	resp, err = env.appAs(env.staff2).Test(httptest.NewRequest(http.MethodGet, "/api/cleanings/submissions", nil), -1)
	require.NoError(t, err)
	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &list))
	assert.Empty(t, list)

	resp, err = env.appAs(env.staff1).Test(httptest.NewRequest(http.MethodGet, "/api/cleanings/submissions", nil), -1)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &list))
	assert.Len(t, list, 1)
}

func TestTodayReturnsOnlyTodaysSubmissions(t *testing.T) {
	env := newTestEnv(t)
	app := env.appAs(env.staff1)

	today := time.Now().UTC().Format("2006-01-02")
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	for _, date := range []string{today, yesterday} {
		resp, err := app.Test(submissionRequest(t, http.MethodPost, "/api/cleanings/submissions",
			map[string]string{"location": fmt.Sprintf("%d", env.location.ID), "date": date},
			[]ratingPayload{{ChecklistItem: env.items[0].ID, Rating: 5}}, nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/cleanings/submissions/today", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list []struct {
		Date string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, today, list[0].Date)
}

func TestGlobalStatsRejectsBadDays(t *testing.T) {
	env := newTestEnv(t)
	app := env.appAs(env.staff1)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/cleanings/submissions/stats?days=abc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/cleanings/submissions/stats", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUpdateSubmissionRequiresRatings(t *testing.T) {
	env := newTestEnv(t)
	app := env.appAs(env.staff1)

	resp, err := app.Test(submissionRequest(t, http.MethodPost, "/api/cleanings/submissions",
		map[string]string{"location": fmt.Sprintf("%d", env.location.ID), "date": "2026-08-01"},
		[]ratingPayload{{ChecklistItem: env.items[0].ID, Rating: 5}}, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var data struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &data))

	resp, err = app.Test(submissionRequest(t, http.MethodPut,
		fmt.Sprintf("/api/cleanings/submissions/%d", data.ID), map[string]string{}, nil, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTaskRatingPostUpserts(t *testing.T) {
	env := newTestEnv(t)
	app := env.appAs(env.staff1)

	resp, err := app.Test(submissionRequest(t, http.MethodPost, "/api/cleanings/submissions",
		map[string]string{"location": fmt.Sprintf("%d", env.location.ID), "date": "2026-08-01"},
		[]ratingPayload{}, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var data struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &data))

	post := func(rating string) *http.Response {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		require.NoError(t, writer.WriteField("submission", fmt.Sprintf("%d", data.ID)))
		require.NoError(t, writer.WriteField("checklist_item", fmt.Sprintf("%d", env.items[0].ID)))
		require.NoError(t, writer.WriteField("rating", rating))
		require.NoError(t, writer.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/cleanings/task-ratings", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	require.Equal(t, fiber.StatusCreated, post("4").StatusCode)
	require.Equal(t, fiber.StatusCreated, post("9").StatusCode)

	var ratings []model.TaskRatingModel
	require.NoError(t, env.db.Where("submission_id = ?", data.ID).Find(&ratings).Error)
	require.Len(t, ratings, 1, "second post replaces, never duplicates")
	assert.Equal(t, 9, ratings[0].Rating)
}

func TestPhotoUploadAndDelete(t *testing.T) {
	env := newTestEnv(t)
	app := env.appAs(env.staff1)

	resp, err := app.Test(submissionRequest(t, http.MethodPost, "/api/cleanings/submissions",
		map[string]string{"location": fmt.Sprintf("%d", env.location.ID), "date": "2026-08-01"},
		[]ratingPayload{{ChecklistItem: env.items[0].ID, Rating: 5}}, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var rating model.TaskRatingModel
	require.NoError(t, env.db.First(&rating).Error)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("task_rating", fmt.Sprintf("%d", rating.ID)))
	part, err := writer.CreateFormFile("image", "evidence.jpg")
	require.NoError(t, err)
	_, err = part.Write(jpegBytes(t))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/cleanings/photos", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var photo struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &photo))

	// other staff cannot see or delete it
	target := fmt.Sprintf("/api/cleanings/photos/%d", photo.ID)
	resp, err = env.appAs(env.staff2).Test(httptest.NewRequest(http.MethodDelete, target, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, target, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	env.db.Model(&model.PhotoModel{}).Count(&count)
	assert.Zero(t, count)
}
