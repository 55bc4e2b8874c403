package client

import "github.com/sifan077/Rinku/internal/app/model"

const (
	UntitledText      = "Untitled"
	NoDescriptionText = "No description"
	EmptyStateMessage = "No bookmarks added yet. Add your first bookmark above."
)

func DisplayTitle(b model.Bookmark) string {
	if b.Title == nil || *b.Title == "" {
		return UntitledText
	}
	return *b.Title
}

func DisplayURL(b model.Bookmark) string {
	if b.URL == nil {
		return ""
	}
	return *b.URL
}

func DisplayDescription(b model.Bookmark) string {
	if b.Description == nil || *b.Description == "" {
		return NoDescriptionText
	}
	return *b.Description
}

// DraftOf returns the editable form of b.
func DraftOf(b model.Bookmark) Draft {
	var d Draft
	if b.Title != nil {
		d.Title = *b.Title
	}
	if b.URL != nil {
		d.URL = *b.URL
	}
	if b.Description != nil {
		d.Description = *b.Description
	}
	return d
}
