package service

import (
	"context"
	"fmt"
	"strings"

	"onechart-be/internal/constant"
	"onechart-be/internal/entity"
	"onechart-be/internal/pkg/logger"
	"onechart-be/internal/repository/memory"
	"onechart-be/internal/repository/unitofwork"
	"onechart-be/pkg/scribe"

	"github.com/google/uuid"
)

// documentDrafter holds what every drafting call needs besides the transcript:
// template instructions, the practice text from the profile and the patient summary.
type documentDrafter struct {
	gateway    scribe.Gateway
	templates  *memory.TemplateRepository
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

// resolveTemplate falls back to the first template the user has when id is unknown.
func (d *documentDrafter) resolveTemplate(userId uuid.UUID, id string) entity.Template {
	if t, ok := d.templates.Find(userId, id); ok {
		return t
	}
	if all := d.templates.List(userId); len(all) > 0 {
		return all[0]
	}
	return entity.Template{Name: constant.DefaultDocumentType}
}

// practiceInfo never fails; a missing or unreadable profile yields "".
func (d *documentDrafter) practiceInfo(ctx context.Context, userId uuid.UUID) string {
	uow := d.uowFactory.NewUnitOfWork(ctx)
	profile, err := uow.ProfileRepository().FindById(ctx, userId)
	if err != nil {
		d.logger.Warn("DocumentDrafter", "Profile lookup failed, drafting without practice info", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return ""
	}
	if profile == nil {
		return ""
	}
	return profile.PracticeInfo
}

func patientInfo(name, gender string) string {
	return fmt.Sprintf(constant.PatientInfoFormat, name, gender)
}

func (d *documentDrafter) draft(ctx context.Context, session *entity.Session, transcript, instructions string) (string, error) {
	return d.gateway.DraftDocument(ctx, scribe.DraftRequest{
		Transcript:   transcript,
		Context:      session.Context,
		Instructions: instructions,
		PatientInfo:  patientInfo(session.PatientName, session.PatientGender),
		PracticeInfo: d.practiceInfo(ctx, session.UserId),
	})
}

// tasksFrom assigns session-scoped ids and drops entries without content.
func tasksFrom(sessionId uuid.UUID, extracted []scribe.ExtractedTask) []entity.Task {
	tasks := make([]entity.Task, 0, len(extracted))
	for _, e := range extracted {
		content := strings.TrimSpace(e.Content)
		if content == "" {
			continue
		}
		tasks = append(tasks, entity.Task{
			Id:        entity.TaskID(sessionId, len(tasks)),
			Content:   content,
			Tag:       strings.TrimSpace(e.Tag),
			Status:    entity.TaskStatusPending,
			SessionId: sessionId,
		})
	}
	return tasks
}
