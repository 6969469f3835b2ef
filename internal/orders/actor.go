package orders

import (
	"github.com/google/uuid"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	"github.com/littlemija/littlemija-backend/pkg/outbox"
)

// Actor is the authenticated caller of an order operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

func (a Actor) owns(o *models.Order) bool {
	return a.UserID != uuid.Nil && a.UserID == o.CustomerID
}

func (a Actor) ref() *outbox.ActorRef {
	ref := &outbox.ActorRef{Role: string(a.Role)}
	if a.UserID != uuid.Nil {
		id := a.UserID
		ref.UserID = &id
	}
	return ref
}

// systemActor stamps events produced by the expiry sweep.
var systemActor = &outbox.ActorRef{Role: "system"}
