package storage

import (
	"bytes"
	"image"
	"image/color"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeaderFromBytes(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(bytes.NewReader(body.Bytes()), writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	return form.File["file"][0]
}

func jpegFileHeader(t *testing.T, width, height int) *multipart.FileHeader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 7 {
		for y := 0; y < height; y += 7 {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return fileHeaderFromBytes(t, "photo.jpg", buf.Bytes())
}

func TestSaveStoresUnderDatedSubmissionDir(t *testing.T) {
	store := NewPhotoStore(t.TempDir())
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	relPath, err := store.Save(date, 42, jpegFileHeader(t, 64, 48))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(relPath, "submissions/2026-08-28/42/"), relPath)
	assert.True(t, strings.HasSuffix(relPath, ".jpg"))
	assert.NotContains(t, relPath, "\\", "stored paths always use forward slashes")
	assert.FileExists(t, filepath.Join(store.Root, filepath.FromSlash(relPath)))
}

func TestSaveResizesOversizedImages(t *testing.T) {
	store := NewPhotoStore(t.TempDir())

	relPath, err := store.Save(time.Now(), 1, jpegFileHeader(t, 2400, 1200))
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(store.Root, filepath.FromSlash(relPath)))
	require.NoError(t, err)
	defer f.Close()
	stored, err := imaging.Decode(f)
	require.NoError(t, err)

	bounds := stored.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), maxPhotoEdge)
	assert.LessOrEqual(t, bounds.Dy(), maxPhotoEdge)
	// aspect ratio survives the fit
	assert.Equal(t, maxPhotoEdge, bounds.Dx())
	assert.Equal(t, maxPhotoEdge/2, bounds.Dy())
}

func TestSaveRejectsNonImage(t *testing.T) {
	store := NewPhotoStore(t.TempDir())

	_, err := store.Save(time.Now(), 1, fileHeaderFromBytes(t, "notes.txt", []byte("plain text")))
	assert.ErrorIs(t, err, ErrNotAnImage)

	_, err = store.Save(time.Now(), 1, nil)
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestRemoveToleratesMissingFile(t *testing.T) {
	store := NewPhotoStore(t.TempDir())
	store.Remove("submissions/2026-01-01/1/gone.jpg")
	store.Remove("")
	store.RemoveAll([]string{"a.jpg", "b.jpg"})
}

func TestRemoveDeletesStoredFile(t *testing.T) {
	store := NewPhotoStore(t.TempDir())
	relPath, err := store.Save(time.Now(), 7, jpegFileHeader(t, 32, 32))
	require.NoError(t, err)

	absPath := filepath.Join(store.Root, filepath.FromSlash(relPath))
	require.FileExists(t, absPath)

	store.Remove(relPath)
	_, statErr := os.Stat(absPath)
	assert.True(t, os.IsNotExist(statErr))
}
