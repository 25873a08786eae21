package controller

import (
	"onechart-be/internal/dto"
	"onechart-be/internal/pkg/serverutils"
	"onechart-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Process(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	CreateDocument(ctx *fiber.Ctx) error
	AddDocument(ctx *fiber.Ctx) error
	SaveDocument(ctx *fiber.Ctx) error
	RegenerateDocument(ctx *fiber.Ctx) error
	DeleteDocument(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService    service.ISessionService
	processingService service.IProcessingService
	jwtSecret         string
	maxUploadBytes    int64
}

func NewSessionController(
	sessionService service.ISessionService,
	processingService service.IProcessingService,
	jwtSecret string,
	maxUploadBytes int64,
) ISessionController {
	return &sessionController{
		sessionService:    sessionService,
		processingService: processingService,
		jwtSecret:         jwtSecret,
		maxUploadBytes:    maxUploadBytes,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Get("", c.GetAll)
	h.Post("", c.Process)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Post(":id/cancel", c.Cancel)
	h.Post(":id/chat", c.Chat)
	h.Post(":id/documents", c.CreateDocument)
	h.Post(":id/documents/add", c.AddDocument)
	h.Put(":id/documents/:documentId", c.SaveDocument)
	h.Post(":id/documents/:documentId/regenerate", c.RegenerateDocument)
	h.Delete(":id/documents/:documentId", c.DeleteDocument)
}

func (c *sessionController) GetAll(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.List(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all sessions", res))
}

// Process takes a multipart form: the "audio" file plus patient_name, patient_gender, template_id and context.
func (c *sessionController) Process(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.ProcessSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	header, err := ctx.FormFile("audio")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "audio file is required")
	}
	data, mimeType, err := readAudio(header, c.maxUploadBytes)
	if err != nil {
		return err
	}

	res, err := c.processingService.Process(ctx.UserContext(), userId, &req, dto.AudioPayload{MimeType: mimeType, Data: data})
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Session processing started", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.sessionService.Show(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *sessionController) Update(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Update(ctx.UserContext(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update session", res))
}

func (c *sessionController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.sessionService.Delete(ctx.UserContext(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *sessionController) Cancel(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.processingService.Cancel(ctx.UserContext(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session processing canceled", nil))
}

func (c *sessionController) CreateDocument(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.CreateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.CreateDocument(ctx.UserContext(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create document", res))
}

func (c *sessionController) AddDocument(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.AddDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.AddDocument(ctx.UserContext(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success add document", res))
}

func (c *sessionController) SaveDocument(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}
	documentId, err := paramUUID(ctx, "documentId")
	if err != nil {
		return err
	}

	var req dto.SaveDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := c.sessionService.SaveDocument(ctx.UserContext(), userId, id, documentId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save document", res))
}

func (c *sessionController) RegenerateDocument(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}
	documentId, err := paramUUID(ctx, "documentId")
	if err != nil {
		return err
	}

	res, err := c.sessionService.RegenerateDocument(ctx.UserContext(), userId, id, documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success regenerate document", res))
}

func (c *sessionController) DeleteDocument(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}
	documentId, err := paramUUID(ctx, "documentId")
	if err != nil {
		return err
	}

	res, err := c.sessionService.DeleteDocument(ctx.UserContext(), userId, id, documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete document", res))
}

func (c *sessionController) Chat(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Chat(ctx.UserContext(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success chat", res))
}
