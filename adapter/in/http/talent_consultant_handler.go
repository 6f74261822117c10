package http

import (
	"io"
	"mime/multipart"
	"strings"

	"talent_server/core/domain"
	"talent_server/core/port/in"
	"talent_server/core/service/consultant"
	"talent_server/pkg/apperr"
	"talent_server/pkg/response"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

// CV form fields, in lookup order.
var cvFields = []string{"cv", "cvFile"}

const maxCVSize = 20 << 20

type ConsultantHandler struct {
	service in.ConsultantService
}

func NewConsultantHandler(service in.ConsultantService) *ConsultantHandler {
	return &ConsultantHandler{service: service}
}

// Register mounts the routes. idGuards run before every /:id handler.
func (h *ConsultantHandler) Register(router fiber.Router, idGuards ...fiber.Handler) {
	consultants := router.Group("/consultants")
	withID := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, idGuards...), handler)
	}

	consultants.Get("/", h.List)
	consultants.Get("/search", h.Search)
	consultants.Get("/:id", withID(h.Get)...)
	consultants.Post("/", h.Create)
	consultants.Patch("/:id", withID(h.Update)...)
	consultants.Put("/:id", withID(h.Update)...)
	consultants.Delete("/:id", withID(h.Delete)...)
}

func (h *ConsultantHandler) List(c *fiber.Ctx) error {
	consultants, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return response.OK(c, "Consultants fetched successfully", nonNil(consultants))
}

func (h *ConsultantHandler) Get(c *fiber.Ctx) error {
	result, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, "Consultant fetched successfully", result)
}

func (h *ConsultantHandler) Search(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return err
	}
	filter, err := ParseSearchFilter(c)
	if err != nil {
		return err
	}

	consultants, err := h.service.Search(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return response.OK(c, "Consultants fetched successfully", nonNil(consultants))
}

func (h *ConsultantHandler) Create(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return err
	}
	raw, cv, err := ParseRawInput(c)
	if err != nil {
		return err
	}

	created, err := h.service.Create(c.UserContext(), actor, raw, cv)
	if err != nil {
		return err
	}
	return response.Created(c, "Consultant created successfully", created)
}

func (h *ConsultantHandler) Update(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return err
	}
	raw, cv, err := ParseRawInput(c)
	if err != nil {
		return err
	}

	updated, err := h.service.Update(c.UserContext(), actor, c.Params("id"), raw, cv)
	if err != nil {
		return err
	}
	return response.OK(c, "Consultant updated successfully", updated)
}

func (h *ConsultantHandler) Delete(c *fiber.Ctx) error {
	deleted, err := h.service.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, "Consultant deleted successfully", deleted)
}

// ParseSearchFilter reads the search query string. Empty range values are
// ignored; non-numeric ones are rejected.
func ParseSearchFilter(c *fiber.Ctx) (*domain.SearchFilter, error) {
	filter := &domain.SearchFilter{
		Search:        strings.TrimSpace(c.Query("search")),
		Tags:          SplitList(queryValues(c, "tags")),
		CommercialID:  QueryExact(c, "commercialId"),
		EnglishLevel:  QueryExact(c, "englishLevel"),
		Nationality:   QueryExact(c, "nationality"),
		IsPermifier:   QueryTrue(c, "isPermifier"),
		IsRelocatable: QueryTrue(c, "isRelocatable"),
	}

	if named := domain.NamedFilter(c.Query("filterType")); named.IsValid() {
		filter.Named = named
	}
	if status := QueryExact(c, "availability"); status != "" {
		filter.AvailabilityStatus = domain.AvailabilityStatus(status)
	}

	var err error
	if filter.ExperienceMin, err = queryInt(c, "experienceMin"); err != nil {
		return nil, err
	}
	if filter.ExperienceMax, err = queryInt(c, "experienceMax"); err != nil {
		return nil, err
	}
	if filter.PriceMin, err = queryFloat(c, "priceMin"); err != nil {
		return nil, err
	}
	if filter.PriceMax, err = queryFloat(c, "priceMax"); err != nil {
		return nil, err
	}
	return filter, nil
}

func queryInt(c *fiber.Ctx, key string) (*int, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	n, ok := consultant.ParseInt(v)
	if !ok {
		return nil, apperr.InvalidParam(key, v)
	}
	return &n, nil
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	f, ok := consultant.ParseFloat(v)
	if !ok {
		return nil, apperr.InvalidParam(key, v)
	}
	return &f, nil
}

// ParseRawInput accepts JSON, urlencoded and multipart bodies. Multipart
// requests may carry a CV file.
func ParseRawInput(c *fiber.Ctx) (domain.RawInput, *in.CVFile, error) {
	raw := domain.RawInput{}
	contentType := strings.ToLower(string(c.Request().Header.ContentType()))

	switch {
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, apperr.MalformedInput("invalid multipart body").WithError(err)
		}
		for key, values := range form.Value {
			setFormValue(raw, key, values)
		}
		cv, err := readCV(form)
		if err != nil {
			return nil, nil, err
		}
		return raw, cv, nil

	case strings.HasPrefix(contentType, fiber.MIMEApplicationForm):
		values := map[string][]string{}
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			k := string(key)
			values[k] = append(values[k], string(value))
		})
		for key, vs := range values {
			setFormValue(raw, key, vs)
		}
		return raw, nil, nil

	default:
		body := c.Body()
		if len(strings.TrimSpace(string(body))) == 0 {
			return raw, nil, nil
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, nil, apperr.MalformedInput("invalid JSON body").WithError(err)
		}
		return raw, nil, nil
	}
}

// setFormValue keeps a key sent more than once as a list.
func setFormValue(raw domain.RawInput, key string, values []string) {
	switch len(values) {
	case 0:
	case 1:
		raw[key] = values[0]
	default:
		raw[key] = append([]string(nil), values...)
	}
}

func readCV(form *multipart.Form) (*in.CVFile, error) {
	for _, field := range cvFields {
		files := form.File[field]
		if len(files) == 0 {
			continue
		}
		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			return nil, apperr.MalformedInput("unreadable CV file").WithError(err)
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxCVSize+1))
		if err != nil {
			return nil, apperr.MalformedInput("unreadable CV file").WithError(err)
		}
		if len(data) > maxCVSize {
			return nil, apperr.MalformedInput("CV file too large")
		}
		return &in.CVFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		}, nil
	}
	return nil, nil
}

// nonNil keeps empty lists rendering as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
