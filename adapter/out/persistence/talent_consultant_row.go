package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/lib/pq"

	"talent_server/core/domain"
)

// consultantRow mirrors the consultants table. Array columns are text[],
// structured columns are jsonb.
type consultantRow struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	Name            sql.NullString `db:"name"`
	Email           sql.NullString `db:"email"`
	Phone           sql.NullString `db:"phone"`
	Location        sql.NullString `db:"location"`
	Role            sql.NullString `db:"role"`
	Company         sql.NullString `db:"company"`
	Nationality     sql.NullString `db:"nationality"`
	EnglishLevel    sql.NullString `db:"english_level"`
	Color           sql.NullString `db:"color"`
	City            sql.NullString `db:"city"`
	Department      sql.NullString `db:"department"`
	CommercialID    sql.NullString `db:"commercial_id"`
	CreatedBy       sql.NullString `db:"created_by"`
	CVFileURL       sql.NullString `db:"cv_file_url"`
	TemplatedCVURL  sql.NullString `db:"templated_cv_url"`
	BlacklistReason sql.NullString `db:"blacklist_reason"`

	YearsOfExperience sql.NullInt64   `db:"years_of_experience"`
	Age               sql.NullInt64   `db:"age"`
	Price             sql.NullFloat64 `db:"price"`
	Latitude          sql.NullFloat64 `db:"latitude"`
	Longitude         sql.NullFloat64 `db:"longitude"`

	IsPermifier    sql.NullBool `db:"is_permifier"`
	IsRelocatable  sql.NullBool `db:"is_relocatable"`
	IsSevenAcademy sql.NullBool `db:"is_seven_academy"`
	IsFavorite     sql.NullBool `db:"is_favorite"`
	IsBlacklisted  sql.NullBool `db:"is_blacklisted"`
	IsExcluded     sql.NullBool `db:"is_excluded"`

	Tags                 pq.StringArray `db:"tags"`
	Experiences          []byte         `db:"experiences"`
	Availability         []byte         `db:"availability"`
	OtherLanguages       pq.StringArray `db:"other_languages"`
	TestResults          []byte         `db:"test_results"`
	QualityControl       []byte         `db:"quality_control"`
	SevenAcademyTraining []byte         `db:"seven_academy_training"`

	BlacklistDate sql.NullTime `db:"blacklist_date"`
	NextFollowup  sql.NullTime `db:"next_followup"`
	LastActivity  sql.NullTime `db:"last_activity"`
}

func (r *consultantRow) toDomain() (*domain.Consultant, error) {
	c := &domain.Consultant{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,

		Name:            nullString(r.Name),
		Email:           nullString(r.Email),
		Phone:           nullString(r.Phone),
		Location:        nullString(r.Location),
		Role:            nullString(r.Role),
		Company:         nullString(r.Company),
		Nationality:     nullString(r.Nationality),
		EnglishLevel:    nullString(r.EnglishLevel),
		Color:           nullString(r.Color),
		City:            nullString(r.City),
		Department:      nullString(r.Department),
		CommercialID:    nullString(r.CommercialID),
		CreatedBy:       nullString(r.CreatedBy),
		CVFileURL:       nullString(r.CVFileURL),
		TemplatedCVURL:  nullString(r.TemplatedCVURL),
		BlacklistReason: nullString(r.BlacklistReason),

		YearsOfExperience: int(r.YearsOfExperience.Int64),
		Price:             nullFloat(r.Price),
		Latitude:          nullFloat(r.Latitude),
		Longitude:         nullFloat(r.Longitude),

		IsPermifier:    r.IsPermifier.Bool,
		IsRelocatable:  r.IsRelocatable.Bool,
		IsSevenAcademy: r.IsSevenAcademy.Bool,
		IsFavorite:     r.IsFavorite.Bool,
		IsBlacklisted:  r.IsBlacklisted.Bool,
		IsExcluded:     r.IsExcluded.Bool,

		Tags:           stringsOrEmpty(r.Tags),
		OtherLanguages: stringsOrEmpty(r.OtherLanguages),
		Experiences:    []domain.Record{},
		TestResults:    []domain.Record{},
		Availability:   domain.DefaultAvailability(),
		QualityControl: domain.DefaultQualityControl(),

		BlacklistDate: nullTime(r.BlacklistDate),
		NextFollowup:  nullTime(r.NextFollowup),
	}
	if r.Age.Valid {
		age := int(r.Age.Int64)
		c.Age = &age
	}
	if r.LastActivity.Valid {
		c.LastActivity = r.LastActivity.Time
	}

	columns := []struct {
		name string
		data []byte
		dest any
	}{
		{"experiences", r.Experiences, &c.Experiences},
		{"availability", r.Availability, &c.Availability},
		{"test_results", r.TestResults, &c.TestResults},
		{"quality_control", r.QualityControl, &c.QualityControl},
		{"seven_academy_training", r.SevenAcademyTraining, &c.SevenAcademyTraining},
	}
	for _, col := range columns {
		if len(col.data) == 0 || string(col.data) == "null" {
			continue
		}
		if err := json.Unmarshal(col.data, col.dest); err != nil {
			return nil, fmt.Errorf("decode %s of consultant %s: %w", col.name, r.ID, err)
		}
	}

	if c.Experiences == nil {
		c.Experiences = []domain.Record{}
	}
	if c.TestResults == nil {
		c.TestResults = []domain.Record{}
	}
	if c.QualityControl.References == nil {
		c.QualityControl.References = []any{}
	}
	if c.QualityControl.ClientFeedbacks == nil {
		c.QualityControl.ClientFeedbacks = []any{}
	}
	return c, nil
}

func toDomainList(rows []consultantRow) ([]*domain.Consultant, error) {
	consultants := make([]*domain.Consultant, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		consultants = append(consultants, c)
	}
	return consultants, nil
}

// writeColumns lists every persisted column of c in insert order.
func writeColumns(c *domain.Consultant) ([]domain.Field, []any) {
	pairs := []struct {
		f domain.Field
		v any
	}{
		{domain.FieldName, c.Name},
		{domain.FieldEmail, c.Email},
		{domain.FieldPhone, c.Phone},
		{domain.FieldLocation, c.Location},
		{domain.FieldRole, c.Role},
		{domain.FieldCompany, c.Company},
		{domain.FieldNationality, c.Nationality},
		{domain.FieldEnglishLevel, c.EnglishLevel},
		{domain.FieldColor, c.Color},
		{domain.FieldCity, c.City},
		{domain.FieldDepartment, c.Department},
		{domain.FieldCommercialID, c.CommercialID},
		{domain.FieldCreatedBy, c.CreatedBy},
		{domain.FieldCVFileURL, c.CVFileURL},
		{domain.FieldTemplatedCVURL, c.TemplatedCVURL},
		{domain.FieldBlacklistReason, c.BlacklistReason},
		{domain.FieldYearsOfExperience, c.YearsOfExperience},
		{domain.FieldAge, c.Age},
		{domain.FieldPrice, c.Price},
		{domain.FieldLatitude, c.Latitude},
		{domain.FieldLongitude, c.Longitude},
		{domain.FieldIsPermifier, c.IsPermifier},
		{domain.FieldIsRelocatable, c.IsRelocatable},
		{domain.FieldIsSevenAcademy, c.IsSevenAcademy},
		{domain.FieldIsFavorite, c.IsFavorite},
		{domain.FieldIsBlacklisted, c.IsBlacklisted},
		{domain.FieldIsExcluded, c.IsExcluded},
		{domain.FieldTags, c.Tags},
		{domain.FieldExperiences, c.Experiences},
		{domain.FieldAvailability, c.Availability},
		{domain.FieldOtherLanguages, c.OtherLanguages},
		{domain.FieldTestResults, c.TestResults},
		{domain.FieldQualityControl, c.QualityControl},
		{domain.FieldSevenAcademyTraining, c.SevenAcademyTraining},
		{domain.FieldBlacklistDate, c.BlacklistDate},
		{domain.FieldNextFollowup, c.NextFollowup},
		{domain.FieldLastActivity, c.LastActivity},
	}

	fields := make([]domain.Field, len(pairs))
	values := make([]any, len(pairs))
	for i, p := range pairs {
		fields[i] = p.f
		values[i] = p.v
	}
	return fields, values
}

// columnValue converts a domain value into a driver argument.
func columnValue(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *string:
		if t == nil {
			return nil, nil
		}
		return *t, nil
	case *int:
		if t == nil {
			return nil, nil
		}
		return int64(*t), nil
	case int:
		return int64(t), nil
	case *float64:
		if t == nil {
			return nil, nil
		}
		return *t, nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return t.UTC(), nil
	case time.Time:
		return t.UTC(), nil
	case bool:
		return t, nil
	case []string:
		if t == nil {
			t = []string{}
		}
		return pq.Array(t), nil
	case domain.Record:
		if t == nil {
			return nil, nil
		}
		return jsonColumn(t)
	case []domain.Record:
		if t == nil {
			t = []domain.Record{}
		}
		return jsonColumn(t)
	case domain.Availability, domain.QualityControl:
		return jsonColumn(t)
	}
	return nil, fmt.Errorf("unsupported column value %T", v)
}

// jsonb is sent as text so the simple protocol does not encode it as bytea.
func jsonColumn(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func stringsOrEmpty(a pq.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}
