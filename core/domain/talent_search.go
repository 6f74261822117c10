package domain

import "time"

// NamedFilter selects one of the predefined consultant views.
type NamedFilter string

const (
	FilterFavorites     NamedFilter = "favorites"
	FilterBlacklist     NamedFilter = "blacklist"
	FilterFollowup      NamedFilter = "followup"
	FilterMyConsultants NamedFilter = "my_consultants"
	FilterAvailable     NamedFilter = "available"
)

func (f NamedFilter) IsValid() bool {
	switch f {
	case FilterFavorites, FilterBlacklist, FilterFollowup, FilterMyConsultants, FilterAvailable:
		return true
	}
	return false
}

// SearchFilter holds every optional search constraint. A nil or empty
// field means no constraint.
type SearchFilter struct {
	Search string
	Tags   []string
	Named  NamedFilter

	ExperienceMin *int
	ExperienceMax *int
	PriceMin      *float64
	PriceMax      *float64

	CommercialID       string
	EnglishLevel       string
	Nationality        string
	AvailabilityStatus AvailabilityStatus

	// Only true constrains; false is the same as absent.
	IsPermifier   bool
	IsRelocatable bool

	ActorID string
	Now     time.Time
}
