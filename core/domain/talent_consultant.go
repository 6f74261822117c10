package domain

import (
	"sort"
	"time"

	"github.com/goccy/go-json"
)

// Record is a free-form JSON object (experience entries, test results, training details).
type Record = map[string]any

// RawInput is a decoded request body: JSON object or multipart form values.
// A key that exists counts as present, even when its value is nil.
type RawInput map[string]any

// =============================================================================
// Consultant
// =============================================================================

type Consultant struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Location        *string `json:"location"`
	Role            *string `json:"role"`
	Company         *string `json:"company"`
	Nationality     *string `json:"nationality"`
	EnglishLevel    *string `json:"english_level"`
	Color           *string `json:"color"`
	City            *string `json:"city"`
	Department      *string `json:"department"`
	CommercialID    *string `json:"commercial_id"`
	CreatedBy       *string `json:"created_by"`
	CVFileURL       *string `json:"cv_file_url"`
	TemplatedCVURL  *string `json:"templated_cv_url"`
	BlacklistReason *string `json:"blacklist_reason"`

	YearsOfExperience int      `json:"years_of_experience"`
	Age               *int     `json:"age"`
	Price             *float64 `json:"price"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`

	IsPermifier    bool `json:"is_permifier"`
	IsRelocatable  bool `json:"is_relocatable"`
	IsSevenAcademy bool `json:"is_seven_academy"`
	IsFavorite     bool `json:"is_favorite"`
	IsBlacklisted  bool `json:"is_blacklisted"`
	IsExcluded     bool `json:"is_excluded"`

	Tags                 []string       `json:"tags"`
	Experiences          []Record       `json:"experiences"`
	Availability         Availability   `json:"availability"`
	OtherLanguages       []string       `json:"other_languages"`
	TestResults          []Record       `json:"test_results"`
	QualityControl       QualityControl `json:"quality_control"`
	SevenAcademyTraining Record         `json:"seven_academy_training"`

	BlacklistDate *time.Time `json:"blacklist_date"`
	NextFollowup  *time.Time `json:"next_followup"`
	LastActivity  time.Time  `json:"last_activity"`
}

// DisplayName is used in notification messages.
func (c *Consultant) DisplayName() string {
	if c == nil || c.Name == nil {
		return ""
	}
	return *c.Name
}

// =============================================================================
// Availability - explicit state with one notification-significant transition
// =============================================================================

type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
	AvailabilityNextMonth   AvailabilityStatus = "next_month"
	AvailabilityCustom      AvailabilityStatus = "custom"
)

// AvailableLike lists the statuses matched by the "available" named search filter.
func AvailableLike() []AvailabilityStatus {
	return []AvailabilityStatus{AvailabilityAvailable, AvailabilityNextMonth, AvailabilityCustom}
}

// BecameAvailable is the only transition that produces a notification.
func BecameAvailable(prev, next AvailabilityStatus) bool {
	return prev != AvailabilityAvailable && next == AvailabilityAvailable
}

type Availability struct {
	Status AvailabilityStatus `json:"status"`
	Date   *string            `json:"date"`
}

func DefaultAvailability() Availability {
	return Availability{Status: AvailabilityAvailable}
}

type QualityControl struct {
	References      []any `json:"references"`
	ClientFeedbacks []any `json:"clientFeedbacks"`
}

func DefaultQualityControl() QualityControl {
	return QualityControl{References: []any{}, ClientFeedbacks: []any{}}
}

// =============================================================================
// Field - canonical column names
// =============================================================================

type Field string

const (
	FieldName            Field = "name"
	FieldEmail           Field = "email"
	FieldPhone           Field = "phone"
	FieldLocation        Field = "location"
	FieldRole            Field = "role"
	FieldCompany         Field = "company"
	FieldNationality     Field = "nationality"
	FieldEnglishLevel    Field = "english_level"
	FieldColor           Field = "color"
	FieldCity            Field = "city"
	FieldDepartment      Field = "department"
	FieldCommercialID    Field = "commercial_id"
	FieldCreatedBy       Field = "created_by"
	FieldCVFileURL       Field = "cv_file_url"
	FieldTemplatedCVURL  Field = "templated_cv_url"
	FieldBlacklistReason Field = "blacklist_reason"

	FieldYearsOfExperience Field = "years_of_experience"
	FieldAge               Field = "age"
	FieldPrice             Field = "price"
	FieldLatitude          Field = "latitude"
	FieldLongitude         Field = "longitude"

	FieldIsPermifier    Field = "is_permifier"
	FieldIsRelocatable  Field = "is_relocatable"
	FieldIsSevenAcademy Field = "is_seven_academy"
	FieldIsFavorite     Field = "is_favorite"
	FieldIsBlacklisted  Field = "is_blacklisted"
	FieldIsExcluded     Field = "is_excluded"

	FieldTags                 Field = "tags"
	FieldExperiences          Field = "experiences"
	FieldAvailability         Field = "availability"
	FieldOtherLanguages       Field = "other_languages"
	FieldTestResults          Field = "test_results"
	FieldQualityControl       Field = "quality_control"
	FieldSevenAcademyTraining Field = "seven_academy_training"

	FieldBlacklistDate Field = "blacklist_date"
	FieldNextFollowup  Field = "next_followup"
	FieldLastActivity  Field = "last_activity"
)

// =============================================================================
// Patch - sparse update
// =============================================================================

// Patch holds the fields explicitly present in an update request. Values
// use the same Go types as the matching Consultant field.
type Patch struct {
	values map[Field]any
}

func NewPatch() *Patch {
	return &Patch{values: make(map[Field]any)}
}

func (p *Patch) Set(f Field, v any) {
	p.values[f] = v
}

func (p *Patch) Has(f Field) bool {
	_, ok := p.values[f]
	return ok
}

func (p *Patch) Get(f Field) (any, bool) {
	v, ok := p.values[f]
	return v, ok
}

func (p *Patch) Len() int {
	return len(p.values)
}

// Fields returns the patched fields in a stable order.
func (p *Patch) Fields() []Field {
	fields := make([]Field, 0, len(p.values))
	for f := range p.values {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// CommercialID returns the patched assignee, if the patch touches it.
func (p *Patch) CommercialID() (*string, bool) {
	v, ok := p.values[FieldCommercialID]
	if !ok {
		return nil, false
	}
	id, _ := v.(*string)
	return id, true
}

// Availability returns the patched availability, if the patch touches it.
func (p *Patch) Availability() (Availability, bool) {
	v, ok := p.values[FieldAvailability]
	if !ok {
		return Availability{}, false
	}
	a, _ := v.(Availability)
	return a, true
}

// KeepAvailabilityStatus fills a patched availability that carries no status
// with the stored one.
func (p *Patch) KeepAvailabilityStatus(stored AvailabilityStatus) {
	a, ok := p.Availability()
	if !ok || a.Status != "" {
		return
	}
	a.Status = stored
	p.values[FieldAvailability] = a
}

func (p *Patch) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.values))
	for f, v := range p.values {
		out[string(f)] = v
	}
	return json.Marshal(out)
}

// ApplyTo writes every patched value onto c. Applying the same patch twice
// yields the same record.
func (p *Patch) ApplyTo(c *Consultant) {
	for f, v := range p.values {
		c.set(f, v)
	}
}

func (c *Consultant) set(f Field, v any) {
	switch f {
	case FieldName:
		c.Name, _ = v.(*string)
	case FieldEmail:
		c.Email, _ = v.(*string)
	case FieldPhone:
		c.Phone, _ = v.(*string)
	case FieldLocation:
		c.Location, _ = v.(*string)
	case FieldRole:
		c.Role, _ = v.(*string)
	case FieldCompany:
		c.Company, _ = v.(*string)
	case FieldNationality:
		c.Nationality, _ = v.(*string)
	case FieldEnglishLevel:
		c.EnglishLevel, _ = v.(*string)
	case FieldColor:
		c.Color, _ = v.(*string)
	case FieldCity:
		c.City, _ = v.(*string)
	case FieldDepartment:
		c.Department, _ = v.(*string)
	case FieldCommercialID:
		c.CommercialID, _ = v.(*string)
	case FieldCreatedBy:
		c.CreatedBy, _ = v.(*string)
	case FieldCVFileURL:
		c.CVFileURL, _ = v.(*string)
	case FieldTemplatedCVURL:
		c.TemplatedCVURL, _ = v.(*string)
	case FieldBlacklistReason:
		c.BlacklistReason, _ = v.(*string)
	case FieldYearsOfExperience:
		c.YearsOfExperience, _ = v.(int)
	case FieldAge:
		c.Age, _ = v.(*int)
	case FieldPrice:
		c.Price, _ = v.(*float64)
	case FieldLatitude:
		c.Latitude, _ = v.(*float64)
	case FieldLongitude:
		c.Longitude, _ = v.(*float64)
	case FieldIsPermifier:
		c.IsPermifier, _ = v.(bool)
	case FieldIsRelocatable:
		c.IsRelocatable, _ = v.(bool)
	case FieldIsSevenAcademy:
		c.IsSevenAcademy, _ = v.(bool)
	case FieldIsFavorite:
		c.IsFavorite, _ = v.(bool)
	case FieldIsBlacklisted:
		c.IsBlacklisted, _ = v.(bool)
	case FieldIsExcluded:
		c.IsExcluded, _ = v.(bool)
	case FieldTags:
		c.Tags, _ = v.([]string)
	case FieldExperiences:
		c.Experiences, _ = v.([]Record)
	case FieldAvailability:
		c.Availability, _ = v.(Availability)
	case FieldOtherLanguages:
		c.OtherLanguages, _ = v.([]string)
	case FieldTestResults:
		c.TestResults, _ = v.([]Record)
	case FieldQualityControl:
		c.QualityControl, _ = v.(QualityControl)
	case FieldSevenAcademyTraining:
		c.SevenAcademyTraining, _ = v.(Record)
	case FieldBlacklistDate:
		c.BlacklistDate, _ = v.(*time.Time)
	case FieldNextFollowup:
		c.NextFollowup, _ = v.(*time.Time)
	case FieldLastActivity:
		c.LastActivity, _ = v.(time.Time)
	}
}
