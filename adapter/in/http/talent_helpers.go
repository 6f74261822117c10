package http

import (
	"strings"

	"talent_server/core/domain"
	"talent_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// ActorKey is the fiber local holding the authenticated *domain.Actor.
const ActorKey = "actor"

// GetActor extracts the authenticated actor set by the auth middleware.
func GetActor(c *fiber.Ctx) (*domain.Actor, error) {
	actor, ok := c.Locals(ActorKey).(*domain.Actor)
	if !ok || actor == nil {
		return nil, apperr.Unauthorized("Unauthorized request")
	}
	return actor, nil
}

// queryValues returns every value of a repeated query key.
func queryValues(c *fiber.Ctx, key string) []string {
	raw := c.Context().QueryArgs().PeekMulti(key)
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		values = append(values, string(v))
	}
	return values
}

// QueryExact returns the value of an exact-match filter; "" and "all" mean
// no constraint.
func QueryExact(c *fiber.Ctx, key string) string {
	v := strings.TrimSpace(c.Query(key))
	if v == "all" {
		return ""
	}
	return v
}

// QueryTrue is true only for the literal "true".
func QueryTrue(c *fiber.Ctx, key string) bool {
	return c.Query(key) == "true"
}

// SplitList flattens repeated and comma separated values, dropping blanks.
func SplitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
