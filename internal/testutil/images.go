// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"sync"
	"time"

	"litreview/internal/models"
)

// PhotoRepoStub is an in-memory photo repository implementation for tests.
type PhotoRepoStub struct {
	mu     sync.Mutex
	items  map[uint]*models.Photo
	nextID uint
}

// NewPhotoRepoStub creates an in-memory photo repository stub for tests.
func NewPhotoRepoStub() *PhotoRepoStub {
	return &PhotoRepoStub{items: make(map[uint]*models.Photo), nextID: 1}
}

// Create stores photo metadata in-memory.
func (s *PhotoRepoStub) Create(_ context.Context, photo *models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if photo.ID == 0 {
		photo.ID = s.nextID
		s.nextID++
	}
	photo.CreatedAt = time.Now().UTC()
	s.items[photo.ID] = photo
	return nil
}

// GetByID fetches a photo by id.
func (s *PhotoRepoStub) GetByID(_ context.Context, id uint) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, models.NewNotFoundError("Photo", id)
	}
	return item, nil
}

// Delete removes a photo; unknown ids are ignored.
func (s *PhotoRepoStub) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Len returns the number of stored photos.
func (s *PhotoRepoStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

type fatalHelper interface {
	Helper()
	Fatalf(string, ...any)
}

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t fatalHelper, w, h int) []byte {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, solid(w, h)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// TinyJPEG returns an in-memory JPEG byte slice with the requested dimensions.
func TinyJPEG(t fatalHelper, w, h int) []byte {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, solid(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// TinyGIF returns an in-memory GIF byte slice with the requested dimensions.
func TinyGIF(t fatalHelper, w, h int) []byte {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if err := gif.Encode(buf, solid(w, h), nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}
