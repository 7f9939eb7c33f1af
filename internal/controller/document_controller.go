package controller

import (
	"io"

	"docqa-be/internal/pkg/serverutils"
	"docqa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
}

type documentController struct {
	ingestService service.IIngestService
}

func NewDocumentController(ingestService service.IIngestService) IDocumentController {
	return &documentController{
		ingestService: ingestService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	r.Post("/upload", c.Upload)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return serverutils.BadRequest("multipart field 'file' is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return serverutils.BadRequest("cannot open uploaded file")
	}
	defer f.Close()

	fileBytes, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	res, err := c.ingestService.Ingest(ctx.Context(), fileBytes, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
