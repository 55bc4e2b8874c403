package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sifan077/Rinku/internal/app/model"
	"github.com/sifan077/Rinku/internal/app/repository"
	promMetrics "github.com/sifan077/Rinku/internal/infra/prometheus"
	"go.uber.org/zap"
)

// BookmarkService defines behaviour-level operations on bookmarks.
type BookmarkService interface {
	ListBookmarks(ctx context.Context) ([]model.Bookmark, error)
	CreateBookmark(ctx context.Context, input BookmarkInput) (*model.Bookmark, error)
	UpdateBookmark(ctx context.Context, id int64, input BookmarkInput) (*model.Bookmark, error)
	DeleteBookmark(ctx context.Context, id int64) error
}

// BookmarkInput carries the writable fields. Nil means null; no field is
// required and values are stored exactly as given.
type BookmarkInput struct {
	Title       *string
	URL         *string
	Description *string
}

type bookmarkService struct {
	repo      repository.BookmarkRepository
	publisher EventPublisher
	logger    *zap.Logger
}

// NewBookmarkService returns a service backed by the given repository.
// publisher may be nil when event publishing is disabled.
func NewBookmarkService(repo repository.BookmarkRepository, publisher EventPublisher, logger *zap.Logger) BookmarkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &bookmarkService{repo: repo, publisher: publisher, logger: logger}
}

func (s *bookmarkService) ListBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	bookmarks, err := s.repo.List(ctx)
	observe("list", err)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return bookmarks, nil
}

func (s *bookmarkService) CreateBookmark(ctx context.Context, input BookmarkInput) (*model.Bookmark, error) {
	bookmark := &model.Bookmark{
		Title:       input.Title,
		URL:         input.URL,
		Description: input.Description,
	}

	err := s.repo.Create(ctx, bookmark)
	observe("create", err)
	if err != nil {
		return nil, fmt.Errorf("create bookmark: %w", err)
	}

	s.publish(model.BookmarkCreated, *bookmark)
	return bookmark, nil
}

func (s *bookmarkService) UpdateBookmark(ctx context.Context, id int64, input BookmarkInput) (*model.Bookmark, error) {
	bookmark := &model.Bookmark{
		ID:          id,
		Title:       input.Title,
		URL:         input.URL,
		Description: input.Description,
	}

	err := s.repo.Update(ctx, bookmark)
	observe("update", err)
	if err != nil {
		return nil, fmt.Errorf("update bookmark: %w", err)
	}

	s.publish(model.BookmarkUpdated, *bookmark)
	return bookmark, nil
}

func (s *bookmarkService) DeleteBookmark(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	observe("delete", err)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}

	s.publish(model.BookmarkDeleted, model.Bookmark{ID: id})
	return nil
}

// publish never fails the request; the store write has already committed.
func (s *bookmarkService) publish(eventType model.BookmarkEventType, bookmark model.Bookmark) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(eventType, bookmark); err != nil {
		s.logger.Warn("failed to publish bookmark event",
			zap.String("type", string(eventType)),
			zap.Int64("bookmark_id", bookmark.ID),
			zap.Error(err),
		)
	}
}

func observe(operation string, err error) {
	result := promMetrics.Result(err)
	if errors.Is(err, repository.ErrBookmarkNotFound) {
		result = "not_found"
	}
	promMetrics.BookmarkOperations.WithLabelValues(operation, result).Inc()
}
