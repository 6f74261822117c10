package domain

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBecameAvailable(t *testing.T) {
	tests := []struct {
		prev, next AvailabilityStatus
		want       bool
	}{
		{AvailabilityUnavailable, AvailabilityAvailable, true},
		{AvailabilityNextMonth, AvailabilityAvailable, true},
		{"", AvailabilityAvailable, true},
		{AvailabilityAvailable, AvailabilityAvailable, false},
		{AvailabilityAvailable, AvailabilityUnavailable, false},
		{AvailabilityUnavailable, AvailabilityCustom, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.prev)+"->"+string(tt.next), func(t *testing.T) {
			assert.Equal(t, tt.want, BecameAvailable(tt.prev, tt.next))
		})
	}
}

func TestPatch_Accessors(t *testing.T) {
	p := NewPatch()

	_, ok := p.CommercialID()
	assert.False(t, ok)

	p.Set(FieldCommercialID, (*string)(nil))
	id, ok := p.CommercialID()
	assert.True(t, ok)
	assert.Nil(t, id)

	p.Set(FieldAvailability, Availability{Status: AvailabilityNextMonth})
	a, ok := p.Availability()
	assert.True(t, ok)
	assert.Equal(t, AvailabilityNextMonth, a.Status)

	p.Set(FieldName, nil)
	assert.Equal(t, []Field{FieldAvailability, FieldCommercialID, FieldName}, p.Fields())
	assert.Equal(t, 3, p.Len())
}

func TestPatch_ApplyToClearsNullables(t *testing.T) {
	name := "Jean"
	c := &Consultant{Name: &name, IsFavorite: true}

	p := NewPatch()
	p.Set(FieldName, (*string)(nil))
	p.Set(FieldIsFavorite, false)
	p.Set(FieldTags, []string{"go"})
	p.ApplyTo(c)

	assert.Nil(t, c.Name)
	assert.False(t, c.IsFavorite)
	assert.Equal(t, []string{"go"}, c.Tags)
}

func TestPatch_MarshalJSON(t *testing.T) {
	p := NewPatch()
	p.Set(FieldCity, (*string)(nil))
	p.Set(FieldTags, []string{"go"})

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"city":null,"tags":["go"]}`, string(raw))
}

func TestConsultant_DisplayName(t *testing.T) {
	var c *Consultant
	assert.Equal(t, "", c.DisplayName())

	name := "Lucie"
	assert.Equal(t, "Lucie", (&Consultant{Name: &name}).DisplayName())
}

func TestPatch_KeepAvailabilityStatus(t *testing.T) {
	p := NewPatch()
	p.KeepAvailabilityStatus(AvailabilityCustom)
	assert.False(t, p.Has(FieldAvailability))

	p.Set(FieldAvailability, Availability{})
	p.KeepAvailabilityStatus(AvailabilityCustom)
	a, _ := p.Availability()
	assert.Equal(t, AvailabilityCustom, a.Status)

	p.Set(FieldAvailability, Availability{Status: AvailabilityAvailable})
	p.KeepAvailabilityStatus(AvailabilityUnavailable)
	a, _ = p.Availability()
	assert.Equal(t, AvailabilityAvailable, a.Status)
}
