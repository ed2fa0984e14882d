package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// ErrImageRejected is returned when SafeSearch flags an image as unsafe.
var ErrImageRejected = errors.New("image rejected: violates community guidelines")

// ImageModerator decides whether a photo may be attached to a listing.
type ImageModerator interface {
	Check(ctx context.Context, jpeg []byte) error
}

type SafeSearchResult struct {
	Adult    string
	Violence string
	Racy     string
}

func isUnsafeLikelyOrHigher(l string) bool {
	return l == "LIKELY" || l == "VERY_LIKELY"
}

func (r *SafeSearchResult) IsUnsafe() bool {
	return isUnsafeLikelyOrHigher(r.Adult) || isUnsafeLikelyOrHigher(r.Violence) || isUnsafeLikelyOrHigher(r.Racy)
}

// SafeSearch runs Vision SAFE_SEARCH_DETECTION on inline image bytes.
type SafeSearch struct {
	svc    *vision.Service
	logger *zap.Logger
}

// NewSafeSearch uses Application Default Credentials unless opts say otherwise.
func NewSafeSearch(ctx context.Context, logger *zap.Logger, opts ...option.ClientOption) (*SafeSearch, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append([]option.ClientOption{option.WithScopes(vision.CloudPlatformScope)}, opts...)
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &SafeSearch{svc: svc, logger: logger.Named("safesearch")}, nil
}

func (s *SafeSearch) Detect(ctx context.Context, data []byte) (*SafeSearchResult, error) {
	req := &vision.AnnotateImageRequest{
		Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(data)},
		Features: []*vision.Feature{
			{Type: "SAFE_SEARCH_DETECTION"},
		},
	}

	resp, err := s.svc.Images.Annotate(&vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{req},
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Responses) == 0 {
		return &SafeSearchResult{}, nil
	}
	r := resp.Responses[0]
	if r.Error != nil && r.Error.Message != "" {
		return nil, fmt.Errorf("vision: %s", r.Error.Message)
	}
	ss := r.SafeSearchAnnotation
	if ss == nil {
		return &SafeSearchResult{}, nil
	}
	return &SafeSearchResult{Adult: ss.Adult, Violence: ss.Violence, Racy: ss.Racy}, nil
}

// Check rejects unsafe photos with ErrImageRejected. A Vision failure also
// rejects the photo.
func (s *SafeSearch) Check(ctx context.Context, data []byte) error {
	res, err := s.Detect(ctx, data)
	if err != nil {
		s.logger.Warn("SafeSearch failed", zap.Error(err))
		return fmt.Errorf("safesearch: %w", err)
	}

	s.logger.Debug("SafeSearch result",
		zap.String("adult", res.Adult),
		zap.String("violence", res.Violence),
		zap.String("racy", res.Racy))

	if res.IsUnsafe() {
		s.logger.Info("image rejected by SafeSearch")
		return ErrImageRejected
	}
	return nil
}
