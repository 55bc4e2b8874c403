package model

// Bookmark is a saved URL with an optional title and description.
// The optional fields are pointers so that absent values round-trip as null.
type Bookmark struct {
	ID          int64   `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Title       *string `json:"title" db:"title" gorm:"type:text"`
	URL         *string `json:"url" db:"url" gorm:"type:text"`
	Description *string `json:"description" db:"description" gorm:"type:text"`
}

// TableName keeps the historical table name.
func (Bookmark) TableName() string {
	return "links"
}
