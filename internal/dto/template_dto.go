package dto

import "onechart-be/internal/entity"

type CreateTemplateRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Description  string `json:"description" validate:"max=1000"`
	SystemPrompt string `json:"system_prompt" validate:"required"`
}

type TemplateResponse struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
}

func NewTemplateResponse(t entity.Template) TemplateResponse {
	return TemplateResponse{
		Id:           t.Id,
		Name:         t.Name,
		Description:  t.Description,
		SystemPrompt: t.SystemPrompt,
	}
}
