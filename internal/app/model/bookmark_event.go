package model

import "time"

// BookmarkEventType enumerates the mutations published on the event stream.
type BookmarkEventType string

const (
	BookmarkCreated BookmarkEventType = "created"
	BookmarkUpdated BookmarkEventType = "updated"
	BookmarkDeleted BookmarkEventType = "deleted"
)

// BookmarkEvent describes a committed change to a bookmark.
type BookmarkEvent struct {
	ID         string            `json:"id"`
	Type       BookmarkEventType `json:"type"`
	BookmarkID int64             `json:"bookmark_id"`
	URL        string            `json:"url,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

const (
	BookmarkStreamName     = "BOOKMARKS"
	BookmarkStreamSubjects = "bookmarks.>"
	BookmarkSubjectPrefix  = "bookmarks."
	PrefetchConsumerName   = "metadata-prefetcher"
	BookmarkStreamMaxBytes = 1024 * 1024 * 64 // 64MB
)

// Subject returns the NATS subject the event is published on.
func (e BookmarkEvent) Subject() string {
	return BookmarkSubjectPrefix + string(e.Type)
}
