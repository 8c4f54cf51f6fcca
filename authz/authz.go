// Package authz is the single capability check consulted by every
// state-machine operation, replacing per-route role comparisons.
package authz

import (
	"github.com/desainhub/desainhub-api/apperr"
	"github.com/google/uuid"
)

type Action string

const (
	ActionView       Action = "view"
	ActionTransition Action = "transition"
	ActionSubmit     Action = "submit"
	ActionReview     Action = "review"
	ActionModify     Action = "modify"
	ActionCancel     Action = "cancel"
)

// Resource exposes the two parties holding capabilities on a record. A nil
// designer means the capability is not yet granted (e.g. an open service
// request with no assignee).
type Resource interface {
	PartyClient() uuid.UUID
	PartyDesigner() *uuid.UUID
}

// Authorize returns nil when actor may perform action on resource, and a
// ForbiddenError otherwise. View and transition belong to both parties,
// review to the client, submit/modify/cancel to the designer.
func Authorize(actor uuid.UUID, resource Resource, action Action) error {
	client := resource.PartyClient()
	designer := resource.PartyDesigner()

	isClient := actor == client
	isDesigner := designer != nil && actor == *designer

	switch action {
	case ActionView, ActionTransition:
		if isClient || isDesigner {
			return nil
		}
	case ActionReview:
		if isClient {
			return nil
		}
	case ActionSubmit, ActionModify, ActionCancel:
		if isDesigner {
			return nil
		}
	}

	return apperr.Wrap(apperr.ErrForbidden, "you are not authorized to "+string(action)+" this resource")
}
