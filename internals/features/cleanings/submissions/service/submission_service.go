// internals/features/cleanings/submissions/service/submission_service.go
package service

import (
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cleantrack_backend/internals/features/cleanings/submissions/model"
	storage "cleantrack_backend/internals/helpers/storage"
)

var (
	// ErrDuplicateSubmission: the (location, staff, date) triple already exists.
	ErrDuplicateSubmission = errors.New("a submission for this location, staff and date already exists")
)

// RatingEntry is one checklist-item write within a submission create/update,
// already joined with its uploaded photo files.
type RatingEntry struct {
	ChecklistItemID uint
	Rating          int
	Notes           string
	Images          []*multipart.FileHeader
}

/*
SubmissionService owns the write side of the submission family. Every
create/update runs inside one transaction so a reader never observes a
submission with a partial rating set; photo files written for a failed
transaction are removed again.
*/
type SubmissionService struct {
	DB     *gorm.DB
	Photos *storage.PhotoStore
}

func NewSubmissionService(db *gorm.DB, photos *storage.PhotoStore) *SubmissionService {
	return &SubmissionService{DB: db, Photos: photos}
}

// DateOnly truncates to a UTC calendar date so equality and range filters
// behave the same on every driver.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// Create persists a submission with all its task ratings and photos as one
// atomic unit.
func (s *SubmissionService) Create(locationID, staffID uint, date time.Time, entries []RatingEntry) (*model.SubmissionModel, error) {
	date = DateOnly(date)

	var count int64
	s.DB.Model(&model.SubmissionModel{}).
		Where("location_id = ? AND staff_id = ? AND date = ?", locationID, staffID, date).
		Count(&count)
	if count > 0 {
		return nil, ErrDuplicateSubmission
	}

	submission := &model.SubmissionModel{
		LocationID: locationID,
		StaffID:    staffID,
		Date:       datatypes.Date(date),
	}

	var savedFiles []string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateSubmission
			}
			return err
		}
		for _, entry := range entries {
			rating := model.TaskRatingModel{
				SubmissionID:    submission.ID,
				ChecklistItemID: entry.ChecklistItemID,
				Rating:          entry.Rating,
				Notes:           entry.Notes,
			}
			if err := tx.Create(&rating).Error; err != nil {
				return err
			}
			saved, err := s.attachPhotos(tx, date, submission.ID, rating.ID, entry.Images)
			savedFiles = append(savedFiles, saved...)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// the rows rolled back; take the orphaned files with them
		s.Photos.RemoveAll(savedFiles)
		return nil, err
	}
	return submission, nil
}

// Update upserts each entry by (submission, checklist_item): rating and notes
// are replaced, photos are appended and never removed here.
func (s *SubmissionService) Update(submission *model.SubmissionModel, entries []RatingEntry) error {
	date := DateOnly(submission.DateValue())

	var savedFiles []string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			var rating model.TaskRatingModel
			err := tx.Where("submission_id = ? AND checklist_item_id = ?",
				submission.ID, entry.ChecklistItemID).First(&rating).Error
			switch {
			case err == nil:
				if err := tx.Model(&rating).Updates(map[string]interface{}{
					"rating": entry.Rating,
					"notes":  entry.Notes,
				}).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				rating = model.TaskRatingModel{
					SubmissionID:    submission.ID,
					ChecklistItemID: entry.ChecklistItemID,
					Rating:          entry.Rating,
					Notes:           entry.Notes,
				}
				if err := tx.Create(&rating).Error; err != nil {
					return err
				}
			default:
				return err
			}

			saved, err := s.attachPhotos(tx, date, submission.ID, rating.ID, entry.Images)
			savedFiles = append(savedFiles, saved...)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.Photos.RemoveAll(savedFiles)
		return err
	}
	return nil
}

// attachPhotos stores each uploaded image and creates its row inside tx.
// Returns every path written so the caller can clean up after a rollback.
func (s *SubmissionService) attachPhotos(tx *gorm.DB, date time.Time, submissionID, ratingID uint, images []*multipart.FileHeader) ([]string, error) {
	var saved []string
	for _, fh := range images {
		relPath, err := s.Photos.Save(date, submissionID, fh)
		if err != nil {
			return saved, err
		}
		saved = append(saved, relPath)
		photo := model.PhotoModel{
			TaskRatingID: ratingID,
			Image:        relPath,
		}
		if err := tx.Create(&photo).Error; err != nil {
			return saved, err
		}
	}
	return saved, nil
}

// Delete cascades a submission: rows first, files after. The explicit cascade
// keeps file removal deterministic instead of relying on the store's FK
// behavior alone.
func (s *SubmissionService) Delete(submission *model.SubmissionModel) error {
	paths, err := s.photoPathsForSubmission(submission.ID)
	if err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return deleteSubmissionRows(tx, submission.ID)
	})
	if err != nil {
		return err
	}

	s.Photos.RemoveAll(paths)
	return nil
}

// DeleteTaskRating cascades one task rating and its photos.
func (s *SubmissionService) DeleteTaskRating(rating *model.TaskRatingModel) error {
	var photos []model.PhotoModel
	if err := s.DB.Where("task_rating_id = ?", rating.ID).Find(&photos).Error; err != nil {
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_rating_id = ?", rating.ID).Delete(&model.PhotoModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(rating).Error
	})
	if err != nil {
		return err
	}

	for _, p := range photos {
		s.Photos.Remove(p.Image)
	}
	return nil
}

// AddPhoto stores one uploaded image for an existing task rating.
func (s *SubmissionService) AddPhoto(rating *model.TaskRatingModel, fh *multipart.FileHeader) (*model.PhotoModel, error) {
	var submission model.SubmissionModel
	if err := s.DB.First(&submission, rating.SubmissionID).Error; err != nil {
		return nil, err
	}

	relPath, err := s.Photos.Save(submission.DateValue(), submission.ID, fh)
	if err != nil {
		return nil, err
	}

	photo := &model.PhotoModel{
		TaskRatingID: rating.ID,
		Image:        relPath,
	}
	if err := s.DB.Create(photo).Error; err != nil {
		s.Photos.Remove(relPath)
		return nil, err
	}
	return photo, nil
}

// DeletePhoto removes one photo row, then its file.
func (s *SubmissionService) DeletePhoto(photo *model.PhotoModel) error {
	if err := s.DB.Delete(photo).Error; err != nil {
		return err
	}
	s.Photos.Remove(photo.Image)
	return nil
}

// DeleteAllForLocation cascades every submission under a location. Used by
// the catalog when a location is deleted.
func (s *SubmissionService) DeleteAllForLocation(locationID uint) error {
	var submissions []model.SubmissionModel
	if err := s.DB.Where("location_id = ?", locationID).Find(&submissions).Error; err != nil {
		return err
	}
	for i := range submissions {
		if err := s.Delete(&submissions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *SubmissionService) photoPathsForSubmission(submissionID uint) ([]string, error) {
	var paths []string
	err := s.DB.Model(&model.PhotoModel{}).
		Joins("JOIN task_ratings ON task_ratings.id = photos.task_rating_id").
		Where("task_ratings.submission_id = ?", submissionID).
		Pluck("photos.image", &paths).Error
	return paths, err
}

func deleteSubmissionRows(tx *gorm.DB, submissionID uint) error {
	if err := tx.Where("task_rating_id IN (?)",
		tx.Model(&model.TaskRatingModel{}).Select("id").Where("submission_id = ?", submissionID),
	).Delete(&model.PhotoModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("submission_id = ?", submissionID).Delete(&model.TaskRatingModel{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.SubmissionModel{}, submissionID).Error
}
