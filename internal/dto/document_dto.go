package dto

import "github.com/google/uuid"

type CreateDocumentRequest struct {
	Type string `json:"type" validate:"required,max=255"`
}

type AddDocumentRequest struct {
	Title   string `json:"title" validate:"max=255"`
	Type    string `json:"type" validate:"max=255"`
	Content string `json:"content" validate:"required"`
}

type SaveDocumentRequest struct {
	Content string `json:"content"`
}

type ChatTurnRequest struct {
	Role    string `json:"role" validate:"required,oneof=user model"`
	Content string `json:"content" validate:"required"`
}

type ChatRequest struct {
	History    []ChatTurnRequest `json:"history" validate:"required,min=1,dive"`
	DocumentId *uuid.UUID        `json:"document_id"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type ResumeRequest struct {
	DocumentId *uuid.UUID `json:"document_id" form:"document_id"`
}

type StartRecordingRequest struct {
	MimeType string `json:"mime_type" validate:"max=128"`
}

type RecordingStatusResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Active    bool      `json:"active"`
}
