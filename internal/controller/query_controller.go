package controller

import (
	"net/url"

	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/serverutils"
	"docqa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	QueryPath(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type queryController struct {
	queryService service.IQueryService
}

func NewQueryController(queryService service.IQueryService) IQueryController {
	return &queryController{
		queryService: queryService,
	}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	r.Post("/query", c.Query)
	r.Get("/query/:question", c.QueryPath)
	r.Get("/health", c.Health)
}

func (c *queryController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queryService.Query(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

// QueryPath answers a path-encoded question with empty history.
func (c *queryController) QueryPath(ctx *fiber.Ctx) error {
	raw := ctx.Params("question")
	question, err := url.PathUnescape(raw)
	if err != nil {
		question = raw
	}
	if question == "" {
		return serverutils.BadRequest("question is required")
	}

	res, err := c.queryService.Query(ctx.Context(), &dto.QueryRequest{Question: question})
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *queryController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(c.queryService.Health(ctx.Context()))
}
