package controller

import (
	"errors"
	"io"
	"mime/multipart"

	"onechart-be/internal/entity"
	"onechart-be/internal/service"
	"onechart-be/pkg/capture"
	"onechart-be/pkg/jobs"
	"onechart-be/pkg/scribe"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ErrorStatus maps domain errors onto HTTP statuses for serverutils.ErrorHandlerMiddleware.
func ErrorStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrTemplateNotFound):
		return fiber.StatusNotFound, true
	case errors.Is(err, service.ErrSessionBusy),
		errors.Is(err, service.ErrSessionNotProcessing),
		errors.Is(err, service.ErrSessionNotResumable),
		errors.Is(err, entity.ErrInvalidStatusTransition),
		errors.Is(err, jobs.ErrJobRunning),
		errors.Is(err, capture.ErrCaptureActive),
		errors.Is(err, capture.ErrNoActiveCapture):
		return fiber.StatusConflict, true
	case errors.Is(err, scribe.ErrNoAudio),
		errors.Is(err, capture.ErrEmptyCapture):
		return fiber.StatusBadRequest, true
	case errors.Is(err, capture.ErrCaptureTooLarge):
		return fiber.StatusRequestEntityTooLarge, true
	case errors.Is(err, service.ErrResumeFailed),
		errors.Is(err, service.ErrRegenerationFailed):
		return fiber.StatusBadGateway, true
	}
	return 0, false
}

func paramUUID(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func readAudio(header *multipart.FileHeader, limit int64) ([]byte, string, error) {
	if limit > 0 && header.Size > limit {
		return nil, "", capture.ErrCaptureTooLarge
	}
	file, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	return data, mimeType, nil
}
