package persistence

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"talent_server/core/domain"
)

// likeEscaper neutralizes LIKE wildcards in free-text search.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchQuery accumulates conjunctive predicates with positional args.
type searchQuery struct {
	where []string
	args  []any
}

func (q *searchQuery) arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

func (q *searchQuery) add(clause string) {
	q.where = append(q.where, clause)
}

// buildSearchQuery renders the consultant search for filter. Absent
// constraints add nothing; all present ones are ANDed.
func buildSearchQuery(filter *domain.SearchFilter) (string, []any) {
	q := &searchQuery{}
	if filter == nil {
		filter = &domain.SearchFilter{}
	}

	if filter.Search != "" {
		p := q.arg("%" + likeEscaper.Replace(filter.Search) + "%")
		q.add(fmt.Sprintf("(name ILIKE %[1]s OR email ILIKE %[1]s OR role ILIKE %[1]s OR company ILIKE %[1]s)", p))
	}

	if len(filter.Tags) > 0 {
		q.add("tags @> " + q.arg(pq.Array(filter.Tags)))
	}

	switch filter.Named {
	case domain.FilterFavorites:
		q.add("is_favorite = true")
	case domain.FilterBlacklist:
		q.add("is_blacklisted = true")
	case domain.FilterFollowup:
		q.add("next_followup IS NOT NULL AND next_followup <= " + q.arg(filter.Now))
	case domain.FilterMyConsultants:
		q.add("commercial_id = " + q.arg(filter.ActorID))
	case domain.FilterAvailable:
		statuses := domain.AvailableLike()
		placeholders := make([]string, len(statuses))
		for i, s := range statuses {
			placeholders[i] = q.arg(string(s))
		}
		q.add("availability->>'status' IN (" + strings.Join(placeholders, ", ") + ")")
	}

	if filter.ExperienceMin != nil {
		q.add("years_of_experience >= " + q.arg(*filter.ExperienceMin))
	}
	if filter.ExperienceMax != nil {
		q.add("years_of_experience <= " + q.arg(*filter.ExperienceMax))
	}
	if filter.CommercialID != "" {
		q.add("commercial_id = " + q.arg(filter.CommercialID))
	}
	if filter.AvailabilityStatus != "" {
		q.add("availability->>'status' = " + q.arg(string(filter.AvailabilityStatus)))
	}
	if filter.PriceMin != nil {
		q.add("price >= " + q.arg(*filter.PriceMin))
	}
	if filter.PriceMax != nil {
		q.add("price <= " + q.arg(*filter.PriceMax))
	}
	if filter.EnglishLevel != "" {
		q.add("english_level = " + q.arg(filter.EnglishLevel))
	}
	if filter.Nationality != "" {
		q.add("nationality = " + q.arg(filter.Nationality))
	}
	if filter.IsPermifier {
		q.add("is_permifier = true")
	}
	if filter.IsRelocatable {
		q.add("is_relocatable = true")
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM consultants")
	if len(q.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(q.where, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC")
	return sb.String(), q.args
}
