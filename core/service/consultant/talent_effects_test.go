package consultant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent_server/core/domain"
)

func consultantWith(id, name string, commercial *string, status domain.AvailabilityStatus) *domain.Consultant {
	c := NewRecord()
	c.ID = id
	c.Name = strPtr(name)
	c.CommercialID = commercial
	c.Availability.Status = status
	return c
}

func notifications(effects []domain.Effect) []*domain.NotificationInput {
	var out []*domain.NotificationInput
	for _, e := range effects {
		if e.Kind == domain.EffectNotify {
			out = append(out, e.Notification)
		}
	}
	return out
}

func TestResolveUpdate_AssignmentChange(t *testing.T) {
	r := NewResolver()
	actor := &domain.Actor{ID: "u1", Name: "Alice"}
	before := consultantWith("c1", "Jean", strPtr("u1"), domain.AvailabilityAvailable)
	after := consultantWith("c1", "Jean", strPtr("u2"), domain.AvailabilityAvailable)

	patch := AssemblePatch(domain.RawInput{"commercialId": "u2"}, fixedNow)
	effects := r.ResolveUpdate(before, patch, after, actor)

	require.Len(t, effects, 2)
	n := effects[0].Notification
	require.NotNil(t, n)
	assert.Equal(t, domain.NotificationTypeAssignment, n.Type)
	assert.Equal(t, "u2", n.RecipientID)
	assert.Equal(t, "Alice vous a assigné Jean.", n.Message)
	assert.Equal(t, domain.EntityTypeConsultant, n.EntityType)
	assert.Equal(t, "c1", n.EntityID)

	assert.Equal(t, domain.EffectBroadcast, effects[1].Kind)
	assert.Equal(t, domain.EventConsultantUpdated, effects[1].Event)
	assert.Same(t, after, effects[1].Payload)
}

func TestResolveUpdate_SelfAssignmentIsSilent(t *testing.T) {
	r := NewResolver()
	actor := &domain.Actor{ID: "u2", Name: "Bob"}
	before := consultantWith("c1", "Jean", nil, domain.AvailabilityAvailable)
	after := consultantWith("c1", "Jean", strPtr("u2"), domain.AvailabilityAvailable)

	patch := AssemblePatch(domain.RawInput{"commercialId": "u2"}, fixedNow)
	effects := r.ResolveUpdate(before, patch, after, actor)

	assert.Empty(t, notifications(effects))
	require.Len(t, effects, 1)
	assert.Equal(t, domain.EventConsultantUpdated, effects[0].Event)
}

func TestResolveUpdate_UnchangedOrClearedAssignee(t *testing.T) {
	r := NewResolver()
	actor := &domain.Actor{ID: "u1", Name: "Alice"}

	before := consultantWith("c1", "Jean", strPtr("u2"), domain.AvailabilityAvailable)
	after := consultantWith("c1", "Jean", strPtr("u2"), domain.AvailabilityAvailable)
	patch := AssemblePatch(domain.RawInput{"commercialId": "u2"}, fixedNow)
	assert.Empty(t, notifications(r.ResolveUpdate(before, patch, after, actor)))

	after = consultantWith("c1", "Jean", nil, domain.AvailabilityAvailable)
	patch = AssemblePatch(domain.RawInput{"commercialId": ""}, fixedNow)
	assert.Empty(t, notifications(r.ResolveUpdate(before, patch, after, actor)))
}

func TestResolveUpdate_AssigneeAbsentFromPatch(t *testing.T) {
	r := NewResolver()
	actor := &domain.Actor{ID: "u1", Name: "Alice"}
	before := consultantWith("c1", "Jean", strPtr("u2"), domain.AvailabilityAvailable)
	after := consultantWith("c1", "Jean", strPtr("u3"), domain.AvailabilityAvailable)

	patch := AssemblePatch(domain.RawInput{"city": "Lyon"}, fixedNow)
	assert.Empty(t, notifications(r.ResolveUpdate(before, patch, after, actor)))
}

func TestResolveUpdate_BecameAvailable(t *testing.T) {
	r := NewResolver()
	actor := &domain.Actor{ID: "u1", Name: "Alice"}
	before := consultantWith("c1", "Jean", strPtr("u3"), domain.AvailabilityUnavailable)
	after := consultantWith("c1", "Jean", strPtr("u3"), domain.AvailabilityAvailable)

	patch := AssemblePatch(domain.RawInput{"availability": `{"status":"available"}`}, fixedNow)
	effects := r.ResolveUpdate(before, patch, after, actor)

	got := notifications(effects)
	require.Len(t, got, 1)
	assert.Equal(t, domain.NotificationTypeAvailability, got[0].Type)
	assert.Equal(t, "u3", got[0].RecipientID)
	assert.Equal(t, "Jean est de nouveau disponible.", got[0].Message)
}

func TestResolveUpdate_AvailabilityWithoutAssignee(t *testing.T) {
	r := NewResolver()
	before := consultantWith("c1", "Jean", nil, domain.AvailabilityNextMonth)
	after := consultantWith("c1", "Jean", nil, domain.AvailabilityAvailable)

	patch := AssemblePatch(domain.RawInput{"availability": `{"status":"available"}`}, fixedNow)
	effects := r.ResolveUpdate(before, patch, after, nil)

	assert.Empty(t, notifications(effects))
	assert.Len(t, effects, 1)
}

func TestResolveUpdate_AlreadyAvailable(t *testing.T) {
	r := NewResolver()
	before := consultantWith("c1", "Jean", strPtr("u3"), domain.AvailabilityAvailable)
	after := consultantWith("c1", "Jean", strPtr("u3"), domain.AvailabilityAvailable)

	patch := AssemblePatch(domain.RawInput{"availability": `{"status":"available"}`}, fixedNow)
	assert.Empty(t, notifications(r.ResolveUpdate(before, patch, after, nil)))
}

func TestResolveUpdate_DateOnlyAvailabilityIsSilent(t *testing.T) {
	r := NewResolver()
	before := consultantWith("c1", "Jean", strPtr("U2"), domain.AvailabilityUnavailable)
	after := consultantWith("c1", "Jean", strPtr("U2"), domain.AvailabilityUnavailable)

	patch := AssemblePatch(domain.RawInput{"availability": `{"date":"2026-01-01"}`}, fixedNow)
	patch.KeepAvailabilityStatus(before.Availability.Status)
	effects := r.ResolveUpdate(before, patch, after, nil)

	next, ok := patch.Availability()
	require.True(t, ok)
	assert.Equal(t, domain.AvailabilityUnavailable, next.Status)
	assert.Empty(t, notifications(effects))
	require.Len(t, effects, 1)
	assert.Equal(t, domain.EventConsultantUpdated, effects[0].Event)
}

func TestResolveCreate(t *testing.T) {
	r := NewResolver()
	actor := &domain.Actor{ID: "u1", Name: "Alice"}

	created := consultantWith("c9", "Lucie", strPtr("u2"), domain.AvailabilityAvailable)
	effects := r.ResolveCreate(created, actor)
	require.Len(t, effects, 2)
	assert.Equal(t, "Alice a assigné Lucie à vous.", effects[0].Notification.Message)
	assert.Equal(t, "u2", effects[0].Notification.RecipientID)
	assert.Equal(t, domain.EventConsultantCreated, effects[1].Event)

	created = consultantWith("c9", "Lucie", strPtr("u1"), domain.AvailabilityAvailable)
	effects = r.ResolveCreate(created, actor)
	require.Len(t, effects, 1)
	assert.Equal(t, domain.EventConsultantCreated, effects[0].Event)

	created = consultantWith("c9", "Lucie", nil, domain.AvailabilityAvailable)
	assert.Len(t, r.ResolveCreate(created, actor), 1)
}

func TestResolveDelete(t *testing.T) {
	r := NewResolver()
	before := consultantWith("", "Jean", nil, domain.AvailabilityAvailable)

	effects := r.ResolveDelete("c1", before)

	require.Len(t, effects, 1)
	assert.Equal(t, domain.EventConsultantDeleted, effects[0].Event)
	assert.Equal(t, "c1", effects[0].Payload.ID)
	assert.Equal(t, "Jean", *effects[0].Payload.Name)
	assert.Empty(t, before.ID, "the loaded record is not mutated")
}
