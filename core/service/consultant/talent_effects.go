package consultant

import (
	"fmt"

	"talent_server/core/domain"
)

// Resolver derives side effects from the state around a committed write.
// It performs no I/O.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveCreate notifies a new assignee and broadcasts the created record.
func (r *Resolver) ResolveCreate(after *domain.Consultant, actor *domain.Actor) []domain.Effect {
	var effects []domain.Effect
	if n := assignmentNotification(nil, after.CommercialID, after, actor, true); n != nil {
		effects = append(effects, domain.NotifyEffect(n))
	}
	return append(effects, domain.BroadcastEffect(domain.EventConsultantCreated, after))
}

// ResolveUpdate evaluates the assignment and availability rules against the
// patch, then broadcasts the resulting record.
func (r *Resolver) ResolveUpdate(before *domain.Consultant, patch *domain.Patch, after *domain.Consultant, actor *domain.Actor) []domain.Effect {
	var effects []domain.Effect

	if next, ok := patch.CommercialID(); ok {
		if n := assignmentNotification(before.CommercialID, next, after, actor, false); n != nil {
			effects = append(effects, domain.NotifyEffect(n))
		}
	}

	if next, ok := patch.Availability(); ok {
		if domain.BecameAvailable(before.Availability.Status, next.Status) && hasValue(after.CommercialID) {
			effects = append(effects, domain.NotifyEffect(&domain.NotificationInput{
				Type:        domain.NotificationTypeAvailability,
				Message:     fmt.Sprintf("%s est de nouveau disponible.", after.DisplayName()),
				EntityType:  domain.EntityTypeConsultant,
				EntityID:    after.ID,
				RecipientID: *after.CommercialID,
			}))
		}
	}

	return append(effects, domain.BroadcastEffect(domain.EventConsultantUpdated, after))
}

// ResolveDelete broadcasts the removed record with its id guaranteed.
func (r *Resolver) ResolveDelete(id string, before *domain.Consultant) []domain.Effect {
	payload := *before
	payload.ID = id
	return []domain.Effect{domain.BroadcastEffect(domain.EventConsultantDeleted, &payload)}
}

// assignmentNotification fires when the assignee changes to a non-null user
// other than the actor.
func assignmentNotification(prev, next *string, after *domain.Consultant, actor *domain.Actor, created bool) *domain.NotificationInput {
	if !hasValue(next) {
		return nil
	}
	if prev != nil && *prev == *next {
		return nil
	}
	actorID, actorName := "", ""
	if actor != nil {
		actorID, actorName = actor.ID, actor.Name
	}
	if *next == actorID {
		return nil
	}

	message := fmt.Sprintf("%s vous a assigné %s.", actorName, after.DisplayName())
	if created {
		message = fmt.Sprintf("%s a assigné %s à vous.", actorName, after.DisplayName())
	}
	return &domain.NotificationInput{
		Type:        domain.NotificationTypeAssignment,
		Message:     message,
		EntityType:  domain.EntityTypeConsultant,
		EntityID:    after.ID,
		RecipientID: *next,
	}
}

func hasValue(s *string) bool {
	return s != nil && *s != ""
}
