package http

import (
	"context"
	"errors"

	"talent_server/adapter/out/storage"
	"talent_server/core/port/out"
	"talent_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

type FileOpener interface {
	Open(ctx context.Context, name string) (*storage.StoredFile, error)
}

// FilesHandler serves CV files kept in the database-backed store.
type FilesHandler struct {
	files FileOpener
}

func NewFilesHandler(files FileOpener) *FilesHandler {
	return &FilesHandler{files: files}
}

func (h *FilesHandler) Register(router fiber.Router) {
	router.Get("/files/:name", h.Download)
}

func (h *FilesHandler) Download(c *fiber.Ctx) error {
	file, err := h.files.Open(c.UserContext(), c.Params("name"))
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return apperr.NotFound("File")
		}
		return apperr.UpstreamReadFailure("read file", err)
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	// fasthttp closes the stream once the body is written.
	return c.SendStream(file, int(file.Size))
}
