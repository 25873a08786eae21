package mapper

import (
	"encoding/json"
	"sort"

	"onechart-be/internal/entity"
	"onechart-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

// ToEntity builds a full session from a row and whatever relations were preloaded.
func (m *SessionMapper) ToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	patientName := s.PatientName
	patientGender := s.PatientGender
	var patientId uuid.UUID
	if s.PatientId != nil {
		patientId = *s.PatientId
	}
	if s.Patient != nil {
		if patientName == "" {
			patientName = s.Patient.FullName
		}
		if patientGender == "" {
			patientGender = s.Patient.Gender
		}
	}
	if patientName == "" {
		patientName = "Unknown"
	}
	if patientGender == "" {
		patientGender = entity.UnknownGender
	}

	templateName := s.TemplateName
	if templateName == "" {
		templateName = "Untitled"
	}

	var transcript string
	if len(s.Transcripts) > 0 {
		transcript = s.Transcripts[0].Transcript
	}
	var context string
	if len(s.Contexts) > 0 {
		context = s.Contexts[0].Context
	}

	notes := append([]model.SessionNote(nil), s.Notes...)
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].CreatedAt.Before(notes[j].CreatedAt) })
	documents := make([]entity.Document, 0, len(notes))
	for i := range notes {
		documents = append(documents, *m.NoteToEntity(&notes[i], s))
	}

	tasks := append([]model.SessionTask(nil), s.Tasks...)
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Position < tasks[j].Position })

	return &entity.Session{
		Id:            s.Id,
		PatientId:     patientId,
		UserId:        s.UserId,
		PatientName:   patientName,
		PatientGender: patientGender,
		Title:         s.Title,
		Date:          s.CreatedAt,
		TemplateId:    s.TemplateId,
		TemplateName:  templateName,
		Transcript:    transcript,
		Documents:     documents,
		Context:       context,
		Status:        entity.ParseSessionStatus(s.Status),
		Tasks:         m.TasksToEntities(tasks),
		Addendums:     m.addendumsToEntities(s.Addendums),
	}
}

func (m *SessionMapper) ToEntities(sessions []*model.Session) []*entity.Session {
	entities := make([]*entity.Session, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

// ToModel maps only the sessions row; related tables are written through their own repositories.
func (m *SessionMapper) ToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	var patientId *uuid.UUID
	if s.PatientId != uuid.Nil {
		id := s.PatientId
		patientId = &id
	}

	return &model.Session{
		Id:            s.Id,
		UserId:        s.UserId,
		PatientId:     patientId,
		PatientName:   s.PatientName,
		PatientGender: s.PatientGender,
		Title:         s.Title,
		Status:        string(s.Status),
		TemplateId:    s.TemplateId,
		TemplateName:  s.TemplateName,
		Addendums:     m.addendumsToJSON(s.Addendums),
		CreatedAt:     s.Date,
	}
}

func (m *SessionMapper) NoteToEntity(n *model.SessionNote, parent *model.Session) *entity.Document {
	if n == nil {
		return nil
	}
	noteType := n.NoteType
	if noteType == "" {
		noteType = "Note"
	}
	title := n.Title
	if title == "" {
		title = noteType
	}
	createdAt := n.CreatedAt
	if createdAt.IsZero() && parent != nil {
		createdAt = parent.CreatedAt
	}
	return &entity.Document{
		Id:        n.Id,
		Title:     title,
		Type:      noteType,
		Content:   n.Content,
		CreatedAt: createdAt,
	}
}

func (m *SessionMapper) DocumentToModel(sessionId uuid.UUID, d entity.Document) *model.SessionNote {
	return &model.SessionNote{
		Id:        d.Id,
		SessionId: sessionId,
		Title:     d.Title,
		NoteType:  d.Type,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
}

func (m *SessionMapper) TasksToEntities(tasks []model.SessionTask) []entity.Task {
	out := make([]entity.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, entity.Task{
			Id:        t.Id,
			Content:   t.Content,
			Tag:       t.Tag,
			Status:    entity.TaskStatus(t.Status),
			SessionId: t.SessionId,
		})
	}
	return out
}

func (m *SessionMapper) TasksToModels(sessionId uuid.UUID, tasks []entity.Task) []*model.SessionTask {
	out := make([]*model.SessionTask, 0, len(tasks))
	for i, t := range tasks {
		status := t.Status
		if status == "" {
			status = entity.TaskStatusPending
		}
		out = append(out, &model.SessionTask{
			Id:        t.Id,
			SessionId: sessionId,
			Position:  i,
			Content:   t.Content,
			Tag:       t.Tag,
			Status:    string(status),
		})
	}
	return out
}

func (m *SessionMapper) PatientToEntity(p *model.Patient) *entity.Patient {
	if p == nil {
		return nil
	}
	return &entity.Patient{
		Id:        p.Id,
		UserId:    p.UserId,
		FullName:  p.FullName,
		Gender:    p.Gender,
		CreatedAt: p.CreatedAt,
	}
}

func (m *SessionMapper) PatientToModel(p *entity.Patient) *model.Patient {
	if p == nil {
		return nil
	}
	return &model.Patient{
		Id:        p.Id,
		UserId:    p.UserId,
		FullName:  p.FullName,
		Gender:    p.Gender,
		CreatedAt: p.CreatedAt,
	}
}

func (m *SessionMapper) addendumsToEntities(raw datatypes.JSON) []entity.Addendum {
	addendums := []entity.Addendum{}
	if len(raw) == 0 {
		return addendums
	}
	// A malformed column is treated as empty; addendums are not written after creation.
	_ = json.Unmarshal(raw, &addendums)
	return addendums
}

func (m *SessionMapper) addendumsToJSON(addendums []entity.Addendum) datatypes.JSON {
	if addendums == nil {
		addendums = []entity.Addendum{}
	}
	data, err := json.Marshal(addendums)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}
