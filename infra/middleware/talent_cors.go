package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

var defaultOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"http://localhost:4173",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:4173",
}

// previewOrigin matches frontend preview deployments.
var previewOrigin = regexp.MustCompile(`^https?://.*\.vercel\.app$`)

// CORS allows the local dev servers, the configured frontend origins and
// preview deployments, with credentials.
func CORS(extraOrigins []string) fiber.Handler {
	origins := append([]string{}, defaultOrigins...)
	for _, o := range extraOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}

	return cors.New(cors.Config{
		AllowOrigins: strings.Join(origins, ","),
		AllowOriginsFunc: func(origin string) bool {
			return previewOrigin.MatchString(origin)
		},
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization,X-Requested-With",
		AllowCredentials: true,
		ExposeHeaders:    "X-Request-ID",
	})
}
