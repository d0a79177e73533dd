// file: internals/helpers/storage/photo_storage.go
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ErrNotAnImage is returned when an uploaded file cannot be decoded as an image.
var ErrNotAnImage = errors.New("uploaded file is not a valid image")

// maxPhotoEdge caps the longest edge of stored photos.
const maxPhotoEdge = 1600

/*
PhotoStore writes submission evidence photos to local disk under Root.

Stored layout: submissions/YYYY-MM-DD/<submission_id>/<uuid>.jpg
The uuid filename makes concurrent uploads for the same submission/day
collision-free. Paths returned to callers are relative to Root so the DB
stays portable across MEDIA_ROOT changes.
*/
type PhotoStore struct {
	Root string
}

func NewPhotoStore(root string) *PhotoStore {
	return &PhotoStore{Root: root}
}

// Save decodes, normalizes and stores one uploaded image, returning the
// relative path for the photos row.
func (s *PhotoStore) Save(date time.Time, submissionID uint, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrNotAnImage
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrNotAnImage
	}

	// Large camera uploads get scaled down; anything already inside the
	// bounding box passes through untouched.
	img = imaging.Fit(img, maxPhotoEdge, maxPhotoEdge, imaging.Lanczos)

	relPath := filepath.Join(
		"submissions",
		date.Format("2006-01-02"),
		fmt.Sprintf("%d", submissionID),
		uuid.New().String()+".jpg",
	)

	absPath := filepath.Join(s.Root, relPath)
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", err
	}

	out, err := os.Create(absPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := imaging.Encode(out, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		_ = os.Remove(absPath)
		return "", err
	}

	return filepath.ToSlash(relPath), nil
}

// Remove deletes a stored file. The DB row is already gone when this runs, so
// a missing file is fine and any other failure is only logged.
func (s *PhotoStore) Remove(relPath string) {
	if relPath == "" {
		return
	}
	absPath := filepath.Join(s.Root, filepath.FromSlash(relPath))
	if err := os.Remove(absPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[WARN] failed to remove photo file %s: %v", relPath, err)
	}
}

// RemoveAll removes a batch of stored files best-effort.
func (s *PhotoStore) RemoveAll(relPaths []string) {
	for _, p := range relPaths {
		s.Remove(p)
	}
}
