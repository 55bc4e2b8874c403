package repository

import (
	"context"
	"errors"

	"github.com/sifan077/Rinku/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrBookmarkNotFound signals that no bookmark matches the requested id.
	ErrBookmarkNotFound = errors.New("bookmark not found")
)

// BookmarkRepository defines the data access contract for bookmarks.
type BookmarkRepository interface {
	List(ctx context.Context) ([]model.Bookmark, error)
	Create(ctx context.Context, bookmark *model.Bookmark) error
	Update(ctx context.Context, bookmark *model.Bookmark) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type bookmarkRepository struct {
	db *gorm.DB
}

// NewBookmarkRepository returns a GORM-backed BookmarkRepository.
func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) List(ctx context.Context) ([]model.Bookmark, error) {
	var result []model.Bookmark
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&result).Error; err != nil {
		return nil, err
	}
	if result == nil {
		result = []model.Bookmark{}
	}
	return result, nil
}

func (r *bookmarkRepository) Create(ctx context.Context, bookmark *model.Bookmark) error {
	bookmark.ID = 0
	return r.db.WithContext(ctx).Create(bookmark).Error
}

// Update overwrites title, url and description of the row matching
// bookmark.ID and reloads the stored record into bookmark.
func (r *bookmarkRepository) Update(ctx context.Context, bookmark *model.Bookmark) error {
	result := r.db.WithContext(ctx).
		Model(&model.Bookmark{}).
		Where("id = ?", bookmark.ID).
		Updates(map[string]interface{}{
			"title":       bookmark.Title,
			"url":         bookmark.URL,
			"description": bookmark.Description,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookmarkNotFound
	}

	if err := r.db.WithContext(ctx).Where("id = ?", bookmark.ID).First(bookmark).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookmarkNotFound
		}
		return err
	}
	return nil
}

func (r *bookmarkRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Bookmark{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}

func (r *bookmarkRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Bookmark{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
