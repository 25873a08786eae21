package controller

import (
	"onechart-be/internal/dto"
	"onechart-be/internal/pkg/serverutils"
	"onechart-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITaskController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Toggle(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type taskController struct {
	service   service.ITaskService
	jwtSecret string
}

func NewTaskController(service service.ITaskService, jwtSecret string) ITaskController {
	return &taskController{service: service, jwtSecret: jwtSecret}
}

func (c *taskController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/task/v1")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Get("", c.GetAll)
	h.Patch(":sessionId/:taskId/toggle", c.Toggle)
	h.Delete(":sessionId/:taskId", c.Delete)
}

func (c *taskController) GetAll(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.ListTasksRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if req.Filter == "" {
		req.Filter = dto.TaskFilterAll
	}

	res, err := c.service.List(ctx.UserContext(), userId, req.Filter)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all tasks", res))
}

func (c *taskController) Toggle(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	sessionId, err := paramUUID(ctx, "sessionId")
	if err != nil {
		return err
	}

	res, err := c.service.Toggle(ctx.UserContext(), userId, sessionId, ctx.Params("taskId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success toggle task", res))
}

func (c *taskController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	sessionId, err := paramUUID(ctx, "sessionId")
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), userId, sessionId, ctx.Params("taskId")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete task", nil))
}
