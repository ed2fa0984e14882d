package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusfind/backend/internal/imaging"
)

// ImageService turns an uploaded photo into the URL a listing stores. With a
// bucket it uploads to Firebase Storage; without one it inlines a data URI.
type ImageService struct {
	gcs       *storage.Client
	bucket    string
	moderator ImageModerator
	logger    *zap.Logger
	newID     func() string
}

// NewImageService returns a service that inlines photos. gcs may be nil.
func NewImageService(gcs *storage.Client, bucket string, moderator ImageModerator, logger *zap.Logger) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gcs == nil {
		bucket = ""
	}
	return &ImageService{
		gcs:       gcs,
		bucket:    bucket,
		moderator: moderator,
		logger:    logger.Named("images"),
		newID:     uuid.NewString,
	}
}

// Store processes the photo, runs moderation when configured, and returns the
// URL to put on the listing.
func (s *ImageService) Store(ctx context.Context, userID, filename string, r io.Reader) (string, error) {
	img, err := imaging.Process(r)
	if err != nil {
		return "", fmt.Errorf("process %s: %w", filename, err)
	}

	if s.moderator != nil {
		if err := s.moderator.Check(ctx, img.Data); err != nil {
			return "", err
		}
	}

	if s.bucket == "" {
		return img.DataURI(), nil
	}

	name := objectName(userID, s.newID())
	token := s.newID()
	if err := s.upload(ctx, name, token, img); err != nil {
		s.logger.Error("upload failed", zap.String("object", name), zap.Error(err))
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	s.logger.Info("image stored", zap.String("object", name), zap.String("userId", userID))
	return firebaseDownloadURL(s.bucket, name, token), nil
}

func (s *ImageService) upload(ctx context.Context, name, token string, img *imaging.Result) error {
	w := s.gcs.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = img.MIME
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := w.Write(img.Data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func objectName(userID, id string) string {
	userID = strings.Trim(strings.ReplaceAll(userID, "/", "_"), ".")
	if userID == "" {
		userID = "anonymous"
	}
	return fmt.Sprintf("listings/%s/%s.jpg", userID, id)
}

func firebaseDownloadURL(bucket, objectName, token string) string {
	return fmt.Sprintf(
		"https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket,
		url.PathEscape(objectName),
		url.QueryEscape(token),
	)
}
