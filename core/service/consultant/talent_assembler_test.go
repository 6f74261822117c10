package consultant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent_server/core/domain"
)

var fixedNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func TestAssembleCreate_Defaults(t *testing.T) {
	actor := &domain.Actor{ID: "u1", Name: "Alice"}

	c := AssembleCreate(domain.RawInput{"name": "Jean Dupont"}, actor, fixedNow)

	require.NotNil(t, c.Name)
	assert.Equal(t, "Jean Dupont", *c.Name)
	require.NotNil(t, c.CreatedBy)
	assert.Equal(t, "u1", *c.CreatedBy)
	assert.Equal(t, fixedNow, c.LastActivity)

	assert.Equal(t, []string{}, c.Tags)
	assert.Equal(t, []string{}, c.OtherLanguages)
	assert.Equal(t, []domain.Record{}, c.Experiences)
	assert.Equal(t, []domain.Record{}, c.TestResults)
	assert.Equal(t, domain.DefaultAvailability(), c.Availability)
	assert.Equal(t, domain.DefaultQualityControl(), c.QualityControl)
	assert.Nil(t, c.SevenAcademyTraining)
	assert.False(t, c.IsFavorite)
	assert.Nil(t, c.CommercialID)
	assert.Zero(t, c.YearsOfExperience)
}

func TestAssembleCreate_NumericFallbacks(t *testing.T) {
	c := AssembleCreate(domain.RawInput{
		"age":               "abc",
		"yearsOfExperience": "abc",
		"price":             "0",
	}, nil, fixedNow)

	assert.Nil(t, c.Age)
	assert.Equal(t, 0, c.YearsOfExperience)
	require.NotNil(t, c.Price)
	assert.Equal(t, 0.0, *c.Price)
	assert.Nil(t, c.CreatedBy)
}

func TestAssembleCreate_AliasPrecedence(t *testing.T) {
	c := AssembleCreate(domain.RawInput{
		"englishLevel":  "C1",
		"english_level": "B2",
		"commercial_id": "u2",
		"is_favorite":   "true",
		"isExcluded":    "TRUE",
		"isPermifier":   "True",
	}, nil, fixedNow)

	require.NotNil(t, c.EnglishLevel)
	assert.Equal(t, "C1", *c.EnglishLevel)
	require.NotNil(t, c.CommercialID)
	assert.Equal(t, "u2", *c.CommercialID)
	assert.True(t, c.IsFavorite)
	assert.True(t, c.IsExcluded)
	assert.False(t, c.IsPermifier)
}

func TestAssembleCreate_CoordinatesAsPair(t *testing.T) {
	c := AssembleCreate(domain.RawInput{"latitude": "48.85"}, nil, fixedNow)
	assert.Nil(t, c.Latitude)
	assert.Nil(t, c.Longitude)

	c = AssembleCreate(domain.RawInput{"latitude": "48.85", "longitude": "2.35"}, nil, fixedNow)
	require.NotNil(t, c.Latitude)
	require.NotNil(t, c.Longitude)
	assert.Equal(t, 48.85, *c.Latitude)
	assert.Equal(t, 2.35, *c.Longitude)
}

func TestAssembleCreate_StructuredFromForm(t *testing.T) {
	c := AssembleCreate(domain.RawInput{
		"tags":           `["java","go","java"]`,
		"otherLanguages": "spanish",
		"availability":   `{"status":"unavailable"}`,
		"experiences":    `[{"company":"Acme","years":2}]`,
		"cvFileUrl":      "https://cdn.example.com/cv.pdf",
	}, nil, fixedNow)

	assert.ElementsMatch(t, []string{"java", "go"}, c.Tags)
	assert.Equal(t, []string{}, c.OtherLanguages)
	assert.Equal(t, domain.AvailabilityUnavailable, c.Availability.Status)
	require.Len(t, c.Experiences, 1)
	assert.Equal(t, "Acme", c.Experiences[0]["company"])
	require.NotNil(t, c.CVFileURL)
	assert.Equal(t, "https://cdn.example.com/cv.pdf", *c.CVFileURL)
}

func TestAssemblePatch_Sparse(t *testing.T) {
	patch := AssemblePatch(domain.RawInput{"name": "Marie"}, fixedNow)

	assert.ElementsMatch(t,
		[]domain.Field{domain.FieldName, domain.FieldOtherLanguages, domain.FieldLastActivity},
		patch.Fields(),
	)
	assert.False(t, patch.Has(domain.FieldTags))
	assert.False(t, patch.Has(domain.FieldIsFavorite))
	assert.False(t, patch.Has(domain.FieldAvailability))

	langs, _ := patch.Get(domain.FieldOtherLanguages)
	assert.Equal(t, []string{}, langs)
	last, _ := patch.Get(domain.FieldLastActivity)
	assert.Equal(t, fixedNow, last)
}

func TestAssemblePatch_PresenceRules(t *testing.T) {
	patch := AssemblePatch(domain.RawInput{
		"phone":          nil,
		"latitude":       "",
		"otherLanguages": `["italian"]`,
		"cvFileUrl":      "https://evil.example.com/cv.pdf",
	}, fixedNow)

	v, ok := patch.Get(domain.FieldPhone)
	require.True(t, ok, "a key holding null is present")
	assert.Nil(t, v)

	v, ok = patch.Get(domain.FieldLatitude)
	require.True(t, ok)
	assert.Nil(t, v)

	v, _ = patch.Get(domain.FieldOtherLanguages)
	assert.Equal(t, []string{"italian"}, v)

	assert.False(t, patch.Has(domain.FieldCVFileURL))
}

func TestAssemblePatch_Latitude(t *testing.T) {
	c := NewRecord()
	lat := 10.0
	c.Latitude = &lat

	AssemblePatch(domain.RawInput{"latitude": ""}, fixedNow).ApplyTo(c)
	assert.Nil(t, c.Latitude)

	AssemblePatch(domain.RawInput{"latitude": "48.85"}, fixedNow).ApplyTo(c)
	require.NotNil(t, c.Latitude)
	assert.Equal(t, 48.85, *c.Latitude)
}

func TestAssemblePatch_OmittedFieldsUntouched(t *testing.T) {
	c := AssembleCreate(domain.RawInput{
		"name":           "Paul",
		"tags":           []any{"a", "b"},
		"isFavorite":     true,
		"otherLanguages": []any{"fr"},
	}, nil, fixedNow)

	AssemblePatch(domain.RawInput{"city": "Lyon"}, fixedNow.Add(time.Hour)).ApplyTo(c)

	assert.Equal(t, "Paul", *c.Name)
	assert.Equal(t, "Lyon", *c.City)
	assert.ElementsMatch(t, []string{"a", "b"}, c.Tags)
	assert.True(t, c.IsFavorite)
	// other_languages is reset by every update that omits it
	assert.Equal(t, []string{}, c.OtherLanguages)
	assert.Equal(t, fixedNow.Add(time.Hour), c.LastActivity)
}

func TestAssemblePatch_Idempotent(t *testing.T) {
	raw := domain.RawInput{
		"commercialId": "u2",
		"availability": map[string]any{"status": "available"},
		"price":        "550",
	}
	patch := AssemblePatch(raw, fixedNow)

	once := NewRecord()
	patch.ApplyTo(once)

	twice := NewRecord()
	patch.ApplyTo(twice)
	patch.ApplyTo(twice)

	assert.Equal(t, once, twice)
}
