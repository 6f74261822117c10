package consultant

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"talent_server/core/domain"
)

// Kind is the declared semantic type of an input field.
type Kind int

const (
	KindString Kind = iota
	KindDepartment
	KindBool
	KindBoolFold
	KindExperienceYears
	KindAge
	KindDecimal
	KindCoordinate
	KindStringList
	KindTagList
	KindRecordList
	KindAvailability
	KindQualityControl
	KindRecord
	KindDate
)

// alias maps one canonical field to its accepted input keys. Local is the
// camelCase form sent by the frontend, Wire the snake_case column name.
type alias struct {
	Field domain.Field
	Local string
	Wire  string
	Kind  Kind
	// CreateOnly fields are read from input on create but never patched from it.
	CreateOnly bool
}

var aliasTable = []alias{
	{Field: domain.FieldName, Local: "name", Wire: "name", Kind: KindString},
	{Field: domain.FieldEmail, Local: "email", Wire: "email", Kind: KindString},
	{Field: domain.FieldPhone, Local: "phone", Wire: "phone", Kind: KindString},
	{Field: domain.FieldLocation, Local: "location", Wire: "location", Kind: KindString},
	{Field: domain.FieldRole, Local: "role", Wire: "role", Kind: KindString},
	{Field: domain.FieldCompany, Local: "company", Wire: "company", Kind: KindString},
	{Field: domain.FieldNationality, Local: "nationality", Wire: "nationality", Kind: KindString},
	{Field: domain.FieldEnglishLevel, Local: "englishLevel", Wire: "english_level", Kind: KindString},
	{Field: domain.FieldColor, Local: "color", Wire: "color", Kind: KindString},
	{Field: domain.FieldCity, Local: "city", Wire: "city", Kind: KindString},
	{Field: domain.FieldDepartment, Local: "department", Wire: "department", Kind: KindDepartment},
	{Field: domain.FieldCommercialID, Local: "commercialId", Wire: "commercial_id", Kind: KindString},
	{Field: domain.FieldCVFileURL, Local: "cvFileUrl", Wire: "cv_file_url", Kind: KindString, CreateOnly: true},
	{Field: domain.FieldTemplatedCVURL, Local: "templatedCvUrl", Wire: "templated_cv_url", Kind: KindString},
	{Field: domain.FieldBlacklistReason, Local: "blacklistReason", Wire: "blacklist_reason", Kind: KindString},

	{Field: domain.FieldYearsOfExperience, Local: "yearsOfExperience", Wire: "years_of_experience", Kind: KindExperienceYears},
	{Field: domain.FieldAge, Local: "age", Wire: "age", Kind: KindAge},
	{Field: domain.FieldPrice, Local: "price", Wire: "price", Kind: KindDecimal},
	{Field: domain.FieldLatitude, Local: "latitude", Wire: "latitude", Kind: KindCoordinate},
	{Field: domain.FieldLongitude, Local: "longitude", Wire: "longitude", Kind: KindCoordinate},

	{Field: domain.FieldIsPermifier, Local: "isPermifier", Wire: "is_permifier", Kind: KindBool},
	{Field: domain.FieldIsRelocatable, Local: "isRelocatable", Wire: "is_relocatable", Kind: KindBool},
	{Field: domain.FieldIsSevenAcademy, Local: "isSevenAcademy", Wire: "is_seven_academy", Kind: KindBool},
	{Field: domain.FieldIsFavorite, Local: "isFavorite", Wire: "is_favorite", Kind: KindBool},
	{Field: domain.FieldIsBlacklisted, Local: "isBlacklisted", Wire: "is_blacklisted", Kind: KindBool},
	{Field: domain.FieldIsExcluded, Local: "isExcluded", Wire: "is_excluded", Kind: KindBoolFold},

	{Field: domain.FieldTags, Local: "tags", Wire: "tags", Kind: KindTagList},
	{Field: domain.FieldExperiences, Local: "experiences", Wire: "experiences", Kind: KindRecordList},
	{Field: domain.FieldAvailability, Local: "availability", Wire: "availability", Kind: KindAvailability},
	{Field: domain.FieldOtherLanguages, Local: "otherLanguages", Wire: "other_languages", Kind: KindStringList},
	{Field: domain.FieldTestResults, Local: "testResults", Wire: "test_results", Kind: KindRecordList},
	{Field: domain.FieldQualityControl, Local: "qualityControl", Wire: "quality_control", Kind: KindQualityControl},
	{Field: domain.FieldSevenAcademyTraining, Local: "sevenAcademyTraining", Wire: "seven_academy_training", Kind: KindRecord},

	{Field: domain.FieldBlacklistDate, Local: "blacklistDate", Wire: "blacklist_date", Kind: KindDate},
	{Field: domain.FieldNextFollowup, Local: "nextFollowup", Wire: "next_followup", Kind: KindDate},
}

// lookup resolves the raw value for a field. The local key wins when both
// keys are present; a key holding nil still counts as present.
func (a alias) lookup(raw domain.RawInput) (any, bool) {
	if v, ok := raw[a.Local]; ok {
		return v, true
	}
	if a.Wire != a.Local {
		if v, ok := raw[a.Wire]; ok {
			return v, true
		}
	}
	return nil, false
}

// Normalize converts one raw value to the canonical Go type of its field.
// It never fails; every kind has a documented fallback.
func Normalize(kind Kind, v any) any {
	switch kind {
	case KindString:
		return normalizeString(v, false)
	case KindDepartment:
		return normalizeString(v, true)
	case KindBool:
		return normalizeBool(v)
	case KindBoolFold:
		return normalizeBoolFold(v)
	case KindExperienceYears:
		if n, ok := parseIntPrefix(v); ok {
			return n
		}
		return 0
	case KindAge:
		if n, ok := parseIntPrefix(v); ok && n >= 0 {
			return &n
		}
		return (*int)(nil)
	case KindDecimal:
		if f, ok := parseFloatPrefix(v); ok && f >= 0 {
			return &f
		}
		return (*float64)(nil)
	case KindCoordinate:
		return normalizeCoordinate(v)
	case KindStringList:
		return normalizeStringList(v, false)
	case KindTagList:
		return normalizeStringList(v, true)
	case KindRecordList:
		return normalizeRecordList(v)
	case KindAvailability:
		return normalizeAvailability(v)
	case KindQualityControl:
		return normalizeQualityControl(v)
	case KindRecord:
		return normalizeRecord(v)
	case KindDate:
		return normalizeDate(v)
	}
	return nil
}

// =============================================================================
// Scalars
// =============================================================================

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case []string:
		// repeated form key on a scalar field
		if len(t) == 0 {
			return "", false
		}
		return t[0], true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return fmt.Sprint(t), true
	}
}

func isPlaceholder(s string) bool {
	return s == "" || s == "null" || s == "undefined"
}

func normalizeString(v any, allowNone bool) *string {
	s, ok := stringify(v)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if isPlaceholder(s) || (allowNone && s == "none") {
		return nil
	}
	return &s
}

func normalizeBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	}
	return false
}

func normalizeBoolFold(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true")
	}
	return false
}

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// parseIntPrefix reads a leading base-10 integer the way form values are
// usually interpreted: "12abc" is 12, "7.9" is 7, "abc" fails.
func parseIntPrefix(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		t = math.Trunc(t)
		if t >= float64(math.MaxInt) || t < float64(math.MinInt) {
			return 0, false
		}
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case json.Number:
		return parseIntPrefix(t.String())
	case string:
		m := intPrefix.FindString(strings.TrimSpace(t))
		if m == "" {
			return 0, false
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// parseFloatPrefix reads a leading decimal number; non-finite results fail.
func parseFloatPrefix(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		return parseFloatPrefix(t.String())
	case string:
		m := floatPrefix.FindString(strings.TrimSpace(t))
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func normalizeCoordinate(v any) *float64 {
	if s, ok := v.(string); ok && isPlaceholder(strings.TrimSpace(s)) {
		return nil
	}
	if f, ok := parseFloatPrefix(v); ok {
		return &f
	}
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func normalizeDate(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if isPlaceholder(s) {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// =============================================================================
// Structured values, possibly JSON-encoded
// =============================================================================

// decodeEmbedded parses textual values as JSON and passes structured values
// through. The second result is false when a string does not parse.
func decodeEmbedded(v any) (any, bool) {
	s, ok := v.(string)
	if !ok {
		return v, true
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, false
	}
	return out, true
}

func normalizeStringList(v any, dedupe bool) []string {
	out := []string{}
	decoded, ok := decodeEmbedded(v)
	if !ok {
		return out
	}

	var items []any
	switch t := decoded.(type) {
	case []any:
		items = t
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	default:
		return out
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if dedupe {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
		}
		out = append(out, s)
	}
	return out
}

func normalizeRecordList(v any) []domain.Record {
	out := []domain.Record{}
	decoded, ok := decodeEmbedded(v)
	if !ok {
		return out
	}
	switch t := decoded.(type) {
	case []any:
		for _, item := range t {
			if rec, ok := item.(map[string]any); ok {
				out = append(out, rec)
			}
		}
	case []map[string]any:
		out = append(out, t...)
	}
	return out
}

func normalizeAvailability(v any) domain.Availability {
	a, _ := parseAvailability(v)
	return a
}

// normalizeAvailabilityPatch leaves Status empty when the input object
// carries none, so the stored status can be kept.
func normalizeAvailabilityPatch(v any) domain.Availability {
	a, given := parseAvailability(v)
	if !given {
		a.Status = ""
	}
	return a
}

// parseAvailability reports whether the status came from the input. Input
// that is not an object falls back to the default, which counts as given.
func parseAvailability(v any) (domain.Availability, bool) {
	decoded, ok := decodeEmbedded(v)
	if !ok {
		return domain.DefaultAvailability(), true
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return domain.DefaultAvailability(), true
	}

	a := domain.DefaultAvailability()
	given := false
	if status, ok := obj["status"].(string); ok && strings.TrimSpace(status) != "" {
		a.Status = domain.AvailabilityStatus(strings.TrimSpace(status))
		given = true
	}
	if date, ok := obj["date"].(string); ok && !isPlaceholder(strings.TrimSpace(date)) {
		d := strings.TrimSpace(date)
		a.Date = &d
	}
	return a, given
}

func normalizeQualityControl(v any) domain.QualityControl {
	qc := domain.DefaultQualityControl()
	decoded, ok := decodeEmbedded(v)
	if !ok {
		return qc
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return qc
	}
	if refs, ok := obj["references"].([]any); ok {
		qc.References = refs
	}
	if feedbacks, ok := obj["clientFeedbacks"].([]any); ok {
		qc.ClientFeedbacks = feedbacks
	}
	return qc
}

func normalizeRecord(v any) domain.Record {
	if v == nil {
		return nil
	}
	decoded, ok := decodeEmbedded(v)
	if !ok {
		return nil
	}
	if obj, ok := decoded.(map[string]any); ok {
		return obj
	}
	return nil
}

// ParseInt applies the lenient integer reading used for record fields to a
// query parameter.
func ParseInt(s string) (int, bool) {
	return parseIntPrefix(s)
}

// ParseFloat is the decimal counterpart of ParseInt.
func ParseFloat(s string) (float64, bool) {
	return parseFloatPrefix(s)
}
