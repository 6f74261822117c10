package consultant

import (
	"time"

	"talent_server/core/domain"
)

// NewRecord returns a consultant with every field at its creation default.
func NewRecord() *domain.Consultant {
	return &domain.Consultant{
		Tags:           []string{},
		Experiences:    []domain.Record{},
		Availability:   domain.DefaultAvailability(),
		OtherLanguages: []string{},
		TestResults:    []domain.Record{},
		QualityControl: domain.DefaultQualityControl(),
	}
}

// AssembleCreate builds a complete record from raw input. Fields missing
// from input keep their defaults.
func AssembleCreate(raw domain.RawInput, actor *domain.Actor, now time.Time) *domain.Consultant {
	present := domain.NewPatch()
	for _, a := range aliasTable {
		if v, ok := a.lookup(raw); ok {
			present.Set(a.Field, Normalize(a.Kind, v))
		}
	}

	c := NewRecord()
	present.ApplyTo(c)

	// Coordinates are kept only as a pair.
	if c.Latitude == nil || c.Longitude == nil {
		c.Latitude, c.Longitude = nil, nil
	}

	if actor != nil {
		id := actor.ID
		c.CreatedBy = &id
	}
	c.LastActivity = now.UTC()
	return c
}

// AssemblePatch builds a sparse patch: a field is included only when one of
// its input keys is present. other_languages and last_activity are always set.
// An availability without a status is patched with an empty status; see
// Patch.KeepAvailabilityStatus.
func AssemblePatch(raw domain.RawInput, now time.Time) *domain.Patch {
	patch := domain.NewPatch()
	for _, a := range aliasTable {
		if a.CreateOnly {
			continue
		}
		v, ok := a.lookup(raw)
		if !ok {
			continue
		}
		if a.Kind == KindAvailability {
			patch.Set(a.Field, normalizeAvailabilityPatch(v))
			continue
		}
		patch.Set(a.Field, Normalize(a.Kind, v))
	}

	if !patch.Has(domain.FieldOtherLanguages) {
		patch.Set(domain.FieldOtherLanguages, []string{})
	}
	patch.Set(domain.FieldLastActivity, now.UTC())
	return patch
}
