package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sifan077/Rinku/internal/app/model"
	"github.com/sifan077/Rinku/internal/app/repository"
	promMetrics "github.com/sifan077/Rinku/internal/infra/prometheus"
)

type mockBookmarkRepository struct {
	listFn   func(ctx context.Context) ([]model.Bookmark, error)
	createFn func(ctx context.Context, bookmark *model.Bookmark) error
	updateFn func(ctx context.Context, bookmark *model.Bookmark) error
	deleteFn func(ctx context.Context, id int64) error
	countFn  func(ctx context.Context) (int64, error)
}

func (m *mockBookmarkRepository) List(ctx context.Context) ([]model.Bookmark, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Bookmark{}, nil
}

func (m *mockBookmarkRepository) Create(ctx context.Context, bookmark *model.Bookmark) error {
	if m.createFn != nil {
		return m.createFn(ctx, bookmark)
	}
	return nil
}

func (m *mockBookmarkRepository) Update(ctx context.Context, bookmark *model.Bookmark) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, bookmark)
	}
	return repository.ErrBookmarkNotFound
}

func (m *mockBookmarkRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockBookmarkRepository) Count(ctx context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type publishedEvent struct {
	eventType model.BookmarkEventType
	bookmark  model.Bookmark
}

type mockPublisher struct {
	events []publishedEvent
	err    error
}

func (m *mockPublisher) Publish(eventType model.BookmarkEventType, bookmark model.Bookmark) error {
	m.events = append(m.events, publishedEvent{eventType: eventType, bookmark: bookmark})
	return m.err
}

func strPtr(s string) *string { return &s }

func TestBookmarkService_CreateBookmark(t *testing.T) {
	repo := &mockBookmarkRepository{
		createFn: func(ctx context.Context, bookmark *model.Bookmark) error {
			if bookmark.URL == nil || *bookmark.URL != "https://example.com" {
				t.Fatalf("expected url to be forwarded, got %v", bookmark.URL)
			}
			if bookmark.Title != nil {
				t.Fatal("expected absent title to stay nil")
			}
			bookmark.ID = 7
			return nil
		},
	}
	pub := &mockPublisher{}

	svc := NewBookmarkService(repo, pub, nil)
	got, err := svc.CreateBookmark(context.Background(), BookmarkInput{URL: strPtr("https://example.com")})
	if err != nil {
		t.Fatalf("CreateBookmark returned error: %v", err)
	}
	if got.ID != 7 {
		t.Fatalf("expected id 7, got %d", got.ID)
	}
	if len(pub.events) != 1 || pub.events[0].eventType != model.BookmarkCreated || pub.events[0].bookmark.ID != 7 {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestBookmarkService_CreateBookmark_StoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := &mockBookmarkRepository{
		createFn: func(ctx context.Context, bookmark *model.Bookmark) error { return storeErr },
	}
	pub := &mockPublisher{}

	svc := NewBookmarkService(repo, pub, nil)
	_, err := svc.CreateBookmark(context.Background(), BookmarkInput{URL: strPtr("https://example.com")})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatal("expected no event for a failed write")
	}
}

func TestBookmarkService_PublishFailureDoesNotFailRequest(t *testing.T) {
	svc := NewBookmarkService(&mockBookmarkRepository{}, &mockPublisher{err: errors.New("nats down")}, nil)

	if _, err := svc.CreateBookmark(context.Background(), BookmarkInput{URL: strPtr("https://example.com")}); err != nil {
		t.Fatalf("expected publish failure to be swallowed, got %v", err)
	}
}

func TestBookmarkService_ListBookmarks(t *testing.T) {
	repo := &mockBookmarkRepository{
		listFn: func(ctx context.Context) ([]model.Bookmark, error) {
			return []model.Bookmark{{ID: 1}, {ID: 2}}, nil
		},
	}
	svc := NewBookmarkService(repo, nil, nil)

	list, err := svc.ListBookmarks(context.Background())
	if err != nil {
		t.Fatalf("ListBookmarks error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 bookmarks, got %d", len(list))
	}
}

func TestBookmarkService_UpdateBookmark(t *testing.T) {
	repo := &mockBookmarkRepository{
		updateFn: func(ctx context.Context, bookmark *model.Bookmark) error {
			if bookmark.ID != 3 {
				t.Fatalf("expected id 3, got %d", bookmark.ID)
			}
			if *bookmark.URL != "https://new.example.com" || bookmark.Description != nil {
				t.Fatalf("expected all fields to be overwritten, got %+v", bookmark)
			}
			return nil
		},
	}
	pub := &mockPublisher{}

	svc := NewBookmarkService(repo, pub, nil)
	got, err := svc.UpdateBookmark(context.Background(), 3, BookmarkInput{
		Title: strPtr("New"),
		URL:   strPtr("https://new.example.com"),
	})
	if err != nil {
		t.Fatalf("UpdateBookmark error: %v", err)
	}
	if *got.Title != "New" {
		t.Fatalf("unexpected title %q", *got.Title)
	}
	if len(pub.events) != 1 || pub.events[0].eventType != model.BookmarkUpdated {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestBookmarkService_UpdateBookmark_NotFound(t *testing.T) {
	svc := NewBookmarkService(&mockBookmarkRepository{}, nil, nil)

	_, err := svc.UpdateBookmark(context.Background(), 99, BookmarkInput{})
	if !errors.Is(err, repository.ErrBookmarkNotFound) {
		t.Fatalf("expected ErrBookmarkNotFound, got %v", err)
	}
}

func TestBookmarkService_DeleteBookmark(t *testing.T) {
	var deleted int64
	repo := &mockBookmarkRepository{
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	pub := &mockPublisher{}

	svc := NewBookmarkService(repo, pub, nil)
	if err := svc.DeleteBookmark(context.Background(), 5); err != nil {
		t.Fatalf("DeleteBookmark error: %v", err)
	}
	if deleted != 5 {
		t.Fatalf("expected id 5 to be deleted, got %d", deleted)
	}
	if len(pub.events) != 1 || pub.events[0].eventType != model.BookmarkDeleted || pub.events[0].bookmark.ID != 5 {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestBookmarkService_DeleteBookmark_NotFoundMetric(t *testing.T) {
	repo := &mockBookmarkRepository{
		deleteFn: func(ctx context.Context, id int64) error { return repository.ErrBookmarkNotFound },
	}
	svc := NewBookmarkService(repo, nil, nil)

	counter := promMetrics.BookmarkOperations.WithLabelValues("delete", "not_found")
	before := testutil.ToFloat64(counter)

	if err := svc.DeleteBookmark(context.Background(), 5); !errors.Is(err, repository.ErrBookmarkNotFound) {
		t.Fatalf("expected ErrBookmarkNotFound, got %v", err)
	}
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Fatalf("expected not_found counter to increase, got %v -> %v", before, got)
	}
}

func TestNewBookmarkEvent(t *testing.T) {
	event := newBookmarkEvent(model.BookmarkCreated, model.Bookmark{ID: 4, URL: strPtr("https://example.com")})
	if event.ID == "" || event.Timestamp.IsZero() {
		t.Fatalf("expected id and timestamp to be set, got %+v", event)
	}
	if event.Subject() != "bookmarks.created" {
		t.Fatalf("unexpected subject %q", event.Subject())
	}
	if event.URL != "https://example.com" || event.BookmarkID != 4 {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestStoreStatsReporter_Sample(t *testing.T) {
	repo := &mockBookmarkRepository{
		countFn: func(ctx context.Context) (int64, error) { return 12, nil },
	}

	NewStoreStatsReporter(nil, repo, nil).Sample(context.Background())

	if got := testutil.ToFloat64(promMetrics.BookmarkCount); got != 12 {
		t.Fatalf("expected gauge 12, got %v", got)
	}
}
