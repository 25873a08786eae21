package contract

import (
	"context"

	"onechart-be/internal/entity"

	"github.com/google/uuid"
)

// SessionNoteRepository stores documents. Upsert is keyed by document id.
type SessionNoteRepository interface {
	UpsertMany(ctx context.Context, sessionId uuid.UUID, documents []entity.Document) error
	Delete(ctx context.Context, sessionId uuid.UUID, documentId uuid.UUID) error
}

// SessionTranscriptRepository keeps one transcript row per session.
type SessionTranscriptRepository interface {
	Upsert(ctx context.Context, sessionId uuid.UUID, transcript string) error
}

// SessionContextRepository keeps one context row per session.
type SessionContextRepository interface {
	Upsert(ctx context.Context, sessionId uuid.UUID, context string) error
}

// SessionTaskRepository replaces a session's tasks wholesale.
type SessionTaskRepository interface {
	ReplaceAll(ctx context.Context, sessionId uuid.UUID, tasks []entity.Task) error
}
