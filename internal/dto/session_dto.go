package dto

import (
	"time"

	"onechart-be/internal/entity"

	"github.com/google/uuid"
)

type ProcessSessionRequest struct {
	PatientName   string `json:"patient_name" form:"patient_name" validate:"max=255"`
	PatientGender string `json:"patient_gender" form:"patient_gender" validate:"max=64"`
	TemplateId    string `json:"template_id" form:"template_id" validate:"max=128"`
	Context       string `json:"context" form:"context"`
}

type AudioPayload struct {
	MimeType string
	Data     []byte
}

type UpdateSessionRequest struct {
	PatientName   *string `json:"patient_name" validate:"omitempty,max=255"`
	PatientGender *string `json:"patient_gender" validate:"omitempty,max=64"`
	Status        *string `json:"status" validate:"omitempty,oneof=completed draft"`
	Transcript    *string `json:"transcript"`
	Context       *string `json:"context"`
	// Regenerate redrafts DocumentId (or the first document) when the gender changed.
	Regenerate bool       `json:"regenerate"`
	DocumentId *uuid.UUID `json:"document_id"`
}

type DocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type TaskResponse struct {
	Id        string    `json:"id"`
	Content   string    `json:"content"`
	Tag       string    `json:"tag"`
	Status    string    `json:"status"`
	SessionId uuid.UUID `json:"session_id"`
}

type AddendumResponse struct {
	Id        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
}

type SessionResponse struct {
	Id            uuid.UUID          `json:"id"`
	PatientId     uuid.UUID          `json:"patient_id"`
	UserId        uuid.UUID          `json:"user_id"`
	PatientName   string             `json:"patient_name"`
	PatientGender string             `json:"patient_gender"`
	Title         string             `json:"title"`
	Date          time.Time          `json:"date"`
	TemplateId    string             `json:"template_id"`
	TemplateName  string             `json:"template_name"`
	Transcript    string             `json:"transcript"`
	Documents     []DocumentResponse `json:"documents"`
	Context       string             `json:"context"`
	Status        string             `json:"status"`
	Tasks         []TaskResponse     `json:"tasks"`
	Addendums     []AddendumResponse `json:"addendums"`
}

func NewDocumentResponse(d entity.Document) DocumentResponse {
	return DocumentResponse{
		Id:        d.Id,
		Title:     d.Title,
		Type:      d.Type,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
}

func NewTaskResponse(t entity.Task) TaskResponse {
	return TaskResponse{
		Id:        t.Id,
		Content:   t.Content,
		Tag:       t.Tag,
		Status:    string(t.Status),
		SessionId: t.SessionId,
	}
}

func NewSessionResponse(s *entity.Session) *SessionResponse {
	if s == nil {
		return nil
	}
	documents := make([]DocumentResponse, 0, len(s.Documents))
	for _, d := range s.Documents {
		documents = append(documents, NewDocumentResponse(d))
	}
	tasks := make([]TaskResponse, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		tasks = append(tasks, NewTaskResponse(t))
	}
	addendums := make([]AddendumResponse, 0, len(s.Addendums))
	for _, a := range s.Addendums {
		addendums = append(addendums, AddendumResponse{Id: a.Id, Timestamp: a.Timestamp, Content: a.Content})
	}

	return &SessionResponse{
		Id:            s.Id,
		PatientId:     s.PatientId,
		UserId:        s.UserId,
		PatientName:   s.PatientName,
		PatientGender: s.PatientGender,
		Title:         s.Title,
		Date:          s.Date,
		TemplateId:    s.TemplateId,
		TemplateName:  s.TemplateName,
		Transcript:    s.Transcript,
		Documents:     documents,
		Context:       s.Context,
		Status:        string(s.Status),
		Tasks:         tasks,
		Addendums:     addendums,
	}
}

func NewSessionResponses(sessions []*entity.Session) []*SessionResponse {
	out := make([]*SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, NewSessionResponse(s))
	}
	return out
}

// SessionChangeMessage is what the live-update topic carries.
type SessionChangeMessage struct {
	Kind      string           `json:"kind"`
	UserId    uuid.UUID        `json:"user_id"`
	SessionId uuid.UUID        `json:"session_id"`
	Session   *SessionResponse `json:"session,omitempty"`
}
