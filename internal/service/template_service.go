package service

import (
	"context"
	"strings"

	"onechart-be/internal/dto"
	"onechart-be/internal/entity"
	"onechart-be/internal/repository/memory"

	"github.com/google/uuid"
)

type ITemplateService interface {
	List(ctx context.Context, userId uuid.UUID) ([]dto.TemplateResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateTemplateRequest) (*dto.TemplateResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id string) error
}

type templateService struct {
	templates *memory.TemplateRepository
}

func NewTemplateService(templates *memory.TemplateRepository) ITemplateService {
	return &templateService{templates: templates}
}

func (c *templateService) List(ctx context.Context, userId uuid.UUID) ([]dto.TemplateResponse, error) {
	templates := c.templates.List(userId)
	result := make([]dto.TemplateResponse, 0, len(templates))
	for _, t := range templates {
		result = append(result, dto.NewTemplateResponse(t))
	}
	return result, nil
}

func (c *templateService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateTemplateRequest) (*dto.TemplateResponse, error) {
	created := c.templates.Create(userId, entity.Template{
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		SystemPrompt: req.SystemPrompt,
	})
	res := dto.NewTemplateResponse(created)
	return &res, nil
}

func (c *templateService) Delete(ctx context.Context, userId uuid.UUID, id string) error {
	if !c.templates.Delete(userId, id) {
		return ErrTemplateNotFound
	}
	return nil
}
