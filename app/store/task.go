package store

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// TaskKind defines what should be done with the item in the remote index
type TaskKind int

// enum of task kinds
const (
	TaskUnknown TaskKind = iota
	TaskUpdate
	TaskDelete
	TaskPublish
)

func (k TaskKind) String() string {
	switch k {
	case TaskUpdate:
		return "update"
	case TaskDelete:
		return "delete"
	case TaskPublish:
		return "publish"
	}
	return "unknown"
}

// TaskKindFromEvent maps CMS event to task kind. Publish updates the item,
// delete and archive remove it, anything else is unknown and should be ignored.
func TaskKindFromEvent(ev EventKind) TaskKind {
	switch ev {
	case EventPublish:
		return TaskUpdate
	case EventDelete, EventArchive:
		return TaskDelete
	}
	return TaskUnknown
}

// Task is a single unit of pending work for one index
type Task struct {
	Item      EventItem
	Kind      TaskKind
	IndexName string
}

// Validate checks task is processable. Delete tasks need identity fields only.
func (t Task) Validate() error {
	if t.Kind == TaskUnknown {
		return errors.New("unknown task kind")
	}
	if t.IndexName == "" {
		return errors.New("empty index name")
	}
	if t.Item == nil {
		return errors.New("no item")
	}
	info := t.Item.Info()
	if info.GUID == uuid.Nil {
		return errors.New("empty item guid")
	}
	if t.Kind == TaskDelete {
		return nil
	}
	if info.ContentType == "" || info.Language == "" {
		return errors.Errorf("%s task for %s without content type or language", t.Kind, info.GUID)
	}
	return nil
}
