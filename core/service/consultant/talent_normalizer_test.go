package consultant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent_server/core/domain"
)

func TestNormalize_Strings(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		in   any
		want *string
	}{
		{"trimmed", KindString, "  Paris ", strPtr("Paris")},
		{"empty", KindString, "   ", nil},
		{"null placeholder", KindString, "null", nil},
		{"undefined placeholder", KindString, "undefined", nil},
		{"nil", KindString, nil, nil},
		{"none kept for plain strings", KindString, "none", strPtr("none")},
		{"none dropped for department", KindDepartment, "none", nil},
		{"number stringified", KindString, float64(42), strPtr("42")},
		{"repeated form key keeps first", KindString, []string{"Paris", "Lyon"}, strPtr("Paris")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.kind, tt.in).(*string)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Booleans(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		in   any
		want bool
	}{
		{"literal true", KindBool, true, true},
		{"string true", KindBool, "true", true},
		{"capitalized is false", KindBool, "True", false},
		{"number is false", KindBool, float64(1), false},
		{"absent is false", KindBool, nil, false},
		{"string false", KindBool, "false", false},
		{"fold accepts TRUE", KindBoolFold, "TRUE", true},
		{"fold accepts True", KindBoolFold, "True", true},
		{"fold rejects yes", KindBoolFold, "yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.kind, tt.in))
		})
	}
}

func TestNormalize_Integers(t *testing.T) {
	assert.Equal(t, 0, Normalize(KindExperienceYears, "abc"))
	assert.Equal(t, 12, Normalize(KindExperienceYears, "12abc"))
	assert.Equal(t, 7, Normalize(KindExperienceYears, "7.9"))
	assert.Equal(t, 5, Normalize(KindExperienceYears, float64(5)))
	assert.Equal(t, 0, Normalize(KindExperienceYears, nil))

	assert.Nil(t, Normalize(KindAge, "abc"))
	assert.Nil(t, Normalize(KindAge, "-3"))
	assert.Equal(t, intPtr(34), Normalize(KindAge, "34"))
	assert.Equal(t, intPtr(0), Normalize(KindAge, "0"))
}

func TestNormalize_IntegersOutOfRange(t *testing.T) {
	assert.Equal(t, 0, Normalize(KindExperienceYears, 1e20))
	assert.Equal(t, 0, Normalize(KindExperienceYears, -1e20))
	assert.Equal(t, 0, Normalize(KindExperienceYears, "99999999999999999999"))
	assert.Nil(t, Normalize(KindAge, 1e20))
}

func TestNormalizeAvailabilityPatch(t *testing.T) {
	a := normalizeAvailabilityPatch(`{"date":"2026-01-01"}`)
	assert.Empty(t, a.Status)
	require.NotNil(t, a.Date)
	assert.Equal(t, "2026-01-01", *a.Date)

	a = normalizeAvailabilityPatch(map[string]any{"status": "custom"})
	assert.Equal(t, domain.AvailabilityCustom, a.Status)

	assert.Equal(t, domain.DefaultAvailability(), normalizeAvailabilityPatch("{broken"))
}

func TestNormalize_Decimals(t *testing.T) {
	assert.Equal(t, floatPtr(450.5), Normalize(KindDecimal, "450.5"))
	assert.Equal(t, floatPtr(600), Normalize(KindDecimal, "600€"))
	assert.Equal(t, floatPtr(0), Normalize(KindDecimal, "0"))
	assert.Nil(t, Normalize(KindDecimal, "n/a"))
	assert.Nil(t, Normalize(KindDecimal, "-10"))

	assert.Nil(t, Normalize(KindCoordinate, ""))
	assert.Nil(t, Normalize(KindCoordinate, "undefined"))
	assert.Nil(t, Normalize(KindCoordinate, nil))
	assert.Equal(t, floatPtr(48.85), Normalize(KindCoordinate, "48.85"))
	assert.Equal(t, floatPtr(-2.35), Normalize(KindCoordinate, float64(-2.35)))
}

func TestNormalize_Sequences(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		in   any
		want []string
	}{
		{"json string", KindStringList, `["fr","en"]`, []string{"fr", "en"}},
		{"structured", KindStringList, []any{"de"}, []string{"de"}},
		{"bare string", KindStringList, "english", []string{}},
		{"json object", KindStringList, `{"a":1}`, []string{}},
		{"number", KindStringList, float64(3), []string{}},
		{"nil", KindStringList, nil, []string{}},
		{"non-string items dropped", KindStringList, []any{"it", float64(1)}, []string{"it"}},
		{"tags deduplicated", KindTagList, `["go","sql","go"]`, []string{"go", "sql"}},
		{"repeated form key", KindStringList, []string{"French", "German"}, []string{"French", "German"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.kind, tt.in))
		})
	}

	records := Normalize(KindRecordList, `[{"company":"Acme"},"junk"]`).([]domain.Record)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0]["company"])

	assert.Equal(t, []domain.Record{}, Normalize(KindRecordList, "{broken"))
}

func TestNormalize_Records(t *testing.T) {
	assert.Equal(t, domain.DefaultAvailability(), Normalize(KindAvailability, "{broken"))
	assert.Equal(t, domain.DefaultAvailability(), Normalize(KindAvailability, `["available"]`))

	a := Normalize(KindAvailability, `{"status":"next_month","date":"2024-06-01"}`).(domain.Availability)
	assert.Equal(t, domain.AvailabilityNextMonth, a.Status)
	require.NotNil(t, a.Date)
	assert.Equal(t, "2024-06-01", *a.Date)

	a = Normalize(KindAvailability, map[string]any{"status": "unavailable", "date": nil}).(domain.Availability)
	assert.Equal(t, domain.AvailabilityUnavailable, a.Status)
	assert.Nil(t, a.Date)

	assert.Equal(t, domain.DefaultQualityControl(), Normalize(KindQualityControl, "not json"))
	qc := Normalize(KindQualityControl, `{"references":[{"name":"Bob"}]}`).(domain.QualityControl)
	assert.Len(t, qc.References, 1)
	assert.Equal(t, []any{}, qc.ClientFeedbacks)

	assert.Nil(t, Normalize(KindRecord, nil))
	assert.Nil(t, Normalize(KindRecord, "[1,2]"))
	assert.Equal(t, domain.Record{"cohort": "2024"}, Normalize(KindRecord, `{"cohort":"2024"}`))
}

func TestNormalize_Dates(t *testing.T) {
	got := Normalize(KindDate, "2024-05-01").(*time.Time)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *got)

	got = Normalize(KindDate, "2024-05-01T10:30:00+02:00").(*time.Time)
	require.NotNil(t, got)
	assert.Equal(t, 8, got.Hour())

	assert.Nil(t, Normalize(KindDate, "soon"))
	assert.Nil(t, Normalize(KindDate, ""))
}

func TestParseQueryNumbers(t *testing.T) {
	n, ok := ParseInt("5")
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	_, ok = ParseInt("many")
	assert.False(t, ok)

	f, ok := ParseFloat("399.99")
	assert.True(t, ok)
	assert.Equal(t, 399.99, f)
}

func strPtr(s string) *string     { return &s }
func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }
