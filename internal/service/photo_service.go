package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"litreview/internal/config"
	"litreview/internal/middleware"
	"litreview/internal/models"
	"litreview/internal/observability"
	"litreview/internal/repository"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultPhotoUploadDir       = "./media"
	DefaultPhotoMaxUploadSizeMB = 10
	JPEGQuality                 = 85
	WebPQuality                 = 80
	PhotoURLPrefix              = "/media/"
)

type UploadPhotoInput struct {
	UserID  uint
	Content []byte
}

// PhotoService stores uploaded photos on disk, fitted into the photo bounding box.
type PhotoService struct {
	repo               repository.PhotoRepository
	uploadDir          string
	maxUploadSizeBytes int64
}

// NewPhotoService returns a PhotoService. cfg may be nil to use defaults.
func NewPhotoService(repo repository.PhotoRepository, cfg *config.Config) *PhotoService {
	uploadDir := DefaultPhotoUploadDir
	maxUploadSizeMB := DefaultPhotoMaxUploadSizeMB

	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}

	return &PhotoService{
		repo:               repo,
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// UploadDir returns the directory photos are written to.
func (s *PhotoService) UploadDir() string {
	return s.uploadDir
}

// Upload validates, resizes and stores a photo owned by in.UserID.
func (s *PhotoService) Upload(ctx context.Context, in UploadPhotoInput) (*models.Photo, error) {
	photo, err := s.upload(ctx, in)
	switch {
	case err == nil:
		observability.PhotoUploads.WithLabelValues("ok").Inc()
	case models.HasCode(err, models.CodeValidation):
		observability.PhotoUploads.WithLabelValues("rejected").Inc()
	default:
		observability.PhotoUploads.WithLabelValues("error").Inc()
	}
	return photo, err
}

func (s *PhotoService) upload(ctx context.Context, in UploadPhotoInput) (*models.Photo, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(in.Content)) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	fitted := resizeToFit(decoded, models.PhotoMaxWidth, models.PhotoMaxHeight)
	encoded, ext, mimeType, err := encodeForFormat(fitted, format)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	// one file per upload; identical images from different uploads never share a path
	rel := path.Join(strconv.FormatUint(uint64(in.UserID), 10), uuid.NewString()+"."+ext)
	abs := filepath.Join(s.uploadDir, filepath.FromSlash(rel))
	if err := writeBytesToFile(abs, encoded); err != nil {
		return nil, models.NewInternalError(err)
	}

	b := fitted.Bounds()
	photo := &models.Photo{
		UserID:    in.UserID,
		Path:      rel,
		URL:       PhotoURLPrefix + rel,
		MimeType:  mimeType,
		Width:     b.Dx(),
		Height:    b.Dy(),
		SizeBytes: int64(len(encoded)),
	}
	if err := s.repo.Create(ctx, photo); err != nil {
		_ = os.Remove(abs)
		return nil, err
	}
	return photo, nil
}

// Get returns photo metadata by id.
func (s *PhotoService) Get(ctx context.Context, photoID uint) (*models.Photo, error) {
	return s.repo.GetByID(ctx, photoID)
}

// Delete removes a photo uploaded by userID and its file. Tickets referencing it are detached.
func (s *PhotoService) Delete(ctx context.Context, userID, photoID uint) error {
	photo, err := s.repo.GetByID(ctx, photoID)
	if err != nil {
		return err
	}
	if photo.UserID != userID {
		return models.NewForbiddenError("You can only delete your own photos")
	}
	if err := s.repo.Delete(ctx, photo.ID); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.uploadDir, filepath.FromSlash(photo.Path))); err != nil && !errors.Is(err, os.ErrNotExist) {
		middleware.Logger.WarnContext(ctx, "photo file removal failed",
			slog.Uint64("photo_id", uint64(photo.ID)), slog.String("error", err.Error()))
	}
	return nil
}

// encodeForFormat re-encodes img in its source format. GIF is stored as PNG.
func encodeForFormat(img image.Image, format string) (data []byte, ext, mimeType string, err error) {
	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
		ext, mimeType = "jpg", "image/jpeg"
	case "webp":
		err = webp.Encode(&buf, img, &webp.Options{Quality: WebPQuality})
		ext, mimeType = "webp", "image/webp"
	case "png", "gif":
		err = png.Encode(&buf, img)
		ext, mimeType = "png", "image/png"
	default:
		return nil, "", "", fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return nil, "", "", err
	}
	return buf.Bytes(), ext, mimeType, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func isAllowedImageMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

// writeBytesToFile writes through a temp file in the target directory and renames it into place.
func writeBytesToFile(dst string, data []byte) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp := filepath.Join(dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
