package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sifan077/Rinku/internal/app/model"
)

// EventPublisher announces committed bookmark changes.
type EventPublisher interface {
	Publish(eventType model.BookmarkEventType, bookmark model.Bookmark) error
}

// BookmarkPublisher publishes bookmark events to NATS JetStream.
type BookmarkPublisher struct {
	js nats.JetStreamContext
}

// NewBookmarkPublisher creates a new bookmark event publisher.
func NewBookmarkPublisher(js nats.JetStreamContext) *BookmarkPublisher {
	return &BookmarkPublisher{js: js}
}

// Publish publishes an event for the given bookmark to the stream.
func (p *BookmarkPublisher) Publish(eventType model.BookmarkEventType, bookmark model.Bookmark) error {
	event := newBookmarkEvent(eventType, bookmark)

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(event.Subject(), data)
	return err
}

func newBookmarkEvent(eventType model.BookmarkEventType, bookmark model.Bookmark) model.BookmarkEvent {
	event := model.BookmarkEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		BookmarkID: bookmark.ID,
		Timestamp:  time.Now().UTC(),
	}
	if bookmark.URL != nil {
		event.URL = *bookmark.URL
	}
	return event
}
