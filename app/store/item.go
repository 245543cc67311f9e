package store

import (
	"github.com/google/uuid"
)

// EventItem is a snapshot of a changed content item, either WebPageItem or ReusableItem
type EventItem interface {
	Info() ItemInfo
	IsWebPage() bool
}

// ItemInfo holds fields common for web pages and reusable items
type ItemInfo struct {
	GUID          uuid.UUID `json:"guid"`
	ID            int64     `json:"id"`
	Language      string    `json:"language"`
	ContentType   string    `json:"content_type"`
	DisplayName   string    `json:"display_name"`
	Secured       bool      `json:"secured"`
	ContentTypeID int64     `json:"content_type_id"`
	LanguageID    int64     `json:"language_id"`
}

// ObjectID returns the remote document key, guid in string form
func (i ItemInfo) ObjectID() string {
	return i.GUID.String()
}

// WebPageItem is a content item placed in the channel page tree
type WebPageItem struct {
	ItemInfo
	Channel  string `json:"channel"`
	TreePath string `json:"tree_path"`
	ParentID int64  `json:"parent_id"`
	Order    int    `json:"order"`
}

// Info returns common item fields
func (w WebPageItem) Info() ItemInfo { return w.ItemInfo }

// IsWebPage is true for web pages
func (w WebPageItem) IsWebPage() bool { return true }

// ReusableItem is a content item from the content hub, without tree position
type ReusableItem struct {
	ItemInfo
}

// Info returns common item fields
func (r ReusableItem) Info() ItemInfo { return r.ItemInfo }

// IsWebPage is false for reusable items
func (r ReusableItem) IsWebPage() bool { return false }

// EventKind is the CMS content lifecycle event name
type EventKind string

// enum of supported CMS events
const (
	EventPublish EventKind = "publish"
	EventDelete  EventKind = "delete"
	EventArchive EventKind = "archive"
)
