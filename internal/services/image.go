package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

type imageService struct {
	store          domain.ObjectStore
	repo           domain.EventImageRepository
	attendanceRepo domain.AttendanceImageRepository
}

// NewImageService creates an ImageService that uploads payloads to the
// object store and keeps one URL row per image in the database. The URL
// rows ride on the caller's transaction; the uploaded objects do not, so a
// rolled-back event can leave unreferenced objects in the store.
func NewImageService(store domain.ObjectStore, repo domain.EventImageRepository, attendanceRepo domain.AttendanceImageRepository) domain.ImageService {
	return &imageService{
		store:          store,
		repo:           repo,
		attendanceRepo: attendanceRepo,
	}
}

func (s *imageService) Store(ctx context.Context, eventID int, uploads []domain.ImageUpload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, up := range uploads {
		key := fmt.Sprintf("events/%d/%s_%s", eventID, uuid.New().String(), up.Filename)
		url, err := s.store.Upload(ctx, key, up.ContentType, up.Data)
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", up.Filename, err)
		}
		urls = append(urls, url)
	}
	if err := s.repo.InsertBatch(ctx, eventID, urls); err != nil {
		return nil, fmt.Errorf("insert image rows: %w", err)
	}
	return urls, nil
}

func (s *imageService) DeleteAll(ctx context.Context, eventID int) error {
	if err := s.repo.DeleteAllByEvent(ctx, eventID); err != nil {
		return fmt.Errorf("delete image rows: %w", err)
	}
	return nil
}

func (s *imageService) ListURLs(ctx context.Context, eventID int) ([]string, error) {
	urls, err := s.repo.ListURLsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list image rows: %w", err)
	}
	return urls, nil
}

func (s *imageService) StoreAttendance(ctx context.Context, eventID, userID int, up domain.ImageUpload) (*domain.AttendanceImage, error) {
	key := fmt.Sprintf("attendance/%d/%d/%s_%s", eventID, userID, uuid.New().String(), up.Filename)
	url, err := s.store.Upload(ctx, key, up.ContentType, up.Data)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", up.Filename, err)
	}
	img := &domain.AttendanceImage{
		UserID:    userID,
		EventID:   eventID,
		ImageURL:  url,
		CreatedAt: time.Now(),
	}
	if err := s.attendanceRepo.Insert(ctx, img); err != nil {
		return nil, fmt.Errorf("insert attendance image row: %w", err)
	}
	return img, nil
}

func (s *imageService) ListAttendance(ctx context.Context, eventID, userID int) ([]*domain.AttendanceImage, error) {
	images, err := s.attendanceRepo.ListByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendance image rows: %w", err)
	}
	return images, nil
}
