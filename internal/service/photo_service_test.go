package service

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"litreview/internal/config"
	"litreview/internal/models"
	"litreview/internal/testutil"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFile(t *testing.T, path string) (image.Image, string) {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	img, format, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img, format
}

func TestPhotoServiceUploadFitsBoundingBox(t *testing.T) {
	repo := testutil.NewPhotoRepoStub()
	cfg := &config.Config{UploadDir: t.TempDir(), ImageMaxUploadSizeMB: 5}
	svc := NewPhotoService(repo, cfg)

	photo, err := svc.Upload(context.Background(), UploadPhotoInput{
		UserID:  42,
		Content: testutil.TinyPNG(t, 1200, 600),
	})
	require.NoError(t, err)
	assert.NotZero(t, photo.ID)
	assert.Equal(t, 400, photo.Width)
	assert.Equal(t, 200, photo.Height)
	assert.Equal(t, "image/png", photo.MimeType)
	assert.True(t, strings.HasPrefix(photo.URL, PhotoURLPrefix))
	assert.True(t, strings.HasSuffix(photo.Path, ".png"))

	img, format := decodeFile(t, filepath.Join(cfg.UploadDir, photo.Path))
	assert.Equal(t, "png", format)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
	assert.Equal(t, 1, repo.Len())
}

func TestPhotoServiceUploadFormats(t *testing.T) {
	tests := []struct {
		name    string
		content func(t *testing.T) []byte
		mime    string
		ext     string
	}{
		{"jpeg stays jpeg", func(t *testing.T) []byte { return testutil.TinyJPEG(t, 300, 900) }, "image/jpeg", ".jpg"},
		{"gif is stored as png", func(t *testing.T) []byte { return testutil.TinyGIF(t, 50, 40) }, "image/png", ".png"},
		{"webp stays webp", func(t *testing.T) []byte {
			var buf bytes.Buffer
			require.NoError(t, webp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 500, 500)), &webp.Options{Quality: 80}))
			return buf.Bytes()
		}, "image/webp", ".webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPhotoService(testutil.NewPhotoRepoStub(), &config.Config{UploadDir: t.TempDir(), ImageMaxUploadSizeMB: 5})
			photo, err := svc.Upload(context.Background(), UploadPhotoInput{UserID: 1, Content: tt.content(t)})
			require.NoError(t, err)
			assert.Equal(t, tt.mime, photo.MimeType)
			assert.True(t, strings.HasSuffix(photo.Path, tt.ext), photo.Path)
			assert.LessOrEqual(t, photo.Width, models.PhotoMaxWidth)
			assert.LessOrEqual(t, photo.Height, models.PhotoMaxHeight)
		})
	}
}

func TestPhotoServiceUploadSmallImageKeepsSize(t *testing.T) {
	svc := NewPhotoService(testutil.NewPhotoRepoStub(), &config.Config{UploadDir: t.TempDir(), ImageMaxUploadSizeMB: 1})
	photo, err := svc.Upload(context.Background(), UploadPhotoInput{UserID: 1, Content: testutil.TinyPNG(t, 120, 80)})
	require.NoError(t, err)
	assert.Equal(t, 120, photo.Width)
	assert.Equal(t, 80, photo.Height)
}

func TestPhotoServiceUploadRejects(t *testing.T) {
	svc := NewPhotoService(testutil.NewPhotoRepoStub(), &config.Config{UploadDir: t.TempDir(), ImageMaxUploadSizeMB: 1})
	tests := []struct {
		name string
		in   UploadPhotoInput
	}{
		{"no user", UploadPhotoInput{Content: testutil.TinyPNG(t, 10, 10)}},
		{"empty", UploadPhotoInput{UserID: 1}},
		{"not an image", UploadPhotoInput{UserID: 1, Content: []byte("plain text, definitely not a picture")}},
		{"too large", UploadPhotoInput{UserID: 1, Content: make([]byte, 2*1024*1024)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, models.HasCode(err, models.CodeValidation))
		})
	}
}

func TestPhotoServiceDelete(t *testing.T) {
	repo := testutil.NewPhotoRepoStub()
	cfg := &config.Config{UploadDir: t.TempDir(), ImageMaxUploadSizeMB: 1}
	svc := NewPhotoService(repo, cfg)
	ctx := context.Background()

	photo, err := svc.Upload(ctx, UploadPhotoInput{UserID: 1, Content: testutil.TinyPNG(t, 20, 20)})
	require.NoError(t, err)
	path := filepath.Join(cfg.UploadDir, photo.Path)

	err = svc.Delete(ctx, 2, photo.ID)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeForbidden))

	require.NoError(t, svc.Delete(ctx, 1, photo.ID))
	assert.Zero(t, repo.Len())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	_, err = svc.Get(ctx, photo.ID)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPhotoServiceDeleteKeepsIdenticalUpload(t *testing.T) {
	repo := testutil.NewPhotoRepoStub()
	cfg := &config.Config{UploadDir: t.TempDir(), ImageMaxUploadSizeMB: 1}
	svc := NewPhotoService(repo, cfg)
	ctx := context.Background()
	content := testutil.TinyPNG(t, 50, 50)

	a, err := svc.Upload(ctx, UploadPhotoInput{UserID: 1, Content: content})
	require.NoError(t, err)
	b, err := svc.Upload(ctx, UploadPhotoInput{UserID: 2, Content: content})
	require.NoError(t, err)
	again, err := svc.Upload(ctx, UploadPhotoInput{UserID: 2, Content: content})
	require.NoError(t, err)
	assert.NotEqual(t, a.Path, b.Path)
	assert.NotEqual(t, b.Path, again.Path)
	assert.True(t, strings.HasPrefix(b.Path, "2/"), b.Path)

	require.NoError(t, svc.Delete(ctx, 1, a.ID))
	_, statErr := os.Stat(filepath.Join(cfg.UploadDir, a.Path))
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, svc.Delete(ctx, 2, again.ID))
	_, err = os.Stat(filepath.Join(cfg.UploadDir, filepath.FromSlash(b.Path)))
	require.NoError(t, err)
	img, _ := decodeFile(t, filepath.Join(cfg.UploadDir, filepath.FromSlash(b.Path)))
	assert.Equal(t, 50, img.Bounds().Dx())
}
