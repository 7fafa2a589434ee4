package event

import (
	"time"

	"github.com/google/uuid"

	"inventory-api/internal/model"
)

type Type string

const (
	TypeUserSignedUp    Type = "user.signed_up"
	TypeUserCreated     Type = "user.created"
	TypeUserUpdated     Type = "user.updated"
	TypeUserDeleted     Type = "user.deleted"
	TypeCategoryCreated Type = "category.created"
	TypeCategoryUpdated Type = "category.updated"
	TypeCategoryDeleted Type = "category.deleted"
	TypeProductCreated  Type = "product.created"
	TypeProductUpdated  Type = "product.updated"
	TypeProductDeleted  Type = "product.deleted"
)

type Event struct {
	ID        string           `json:"id"`
	Type      Type             `json:"type"`
	Resource  string           `json:"resource"`
	Actor     model.AuditActor `json:"actor"`
	Before    any              `json:"before,omitempty"`
	After     any              `json:"after,omitempty"`
	Timestamp string           `json:"timestamp"`
}

// New stamps an event with a fresh id and the current UTC time.
func New(t Type, actor model.AuditActor, resource string, before any, after any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Resource:  resource,
		Actor:     actor,
		Before:    before,
		After:     after,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

type Bus interface {
	Publish(e Event)
	Subscribe(name string, types ...Type) (<-chan Event, func())
}
