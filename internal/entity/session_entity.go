package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidStatusTransition = errors.New("invalid session status transition")

// SessionStatus is the lifecycle state of a session. Only the three
// constants below are valid; use TransitionTo to move between them.
type SessionStatus string

const (
	SessionStatusProcessing SessionStatus = "processing"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusDraft      SessionStatus = "draft"
)

const UnknownGender = "Unknown"

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusProcessing: {SessionStatusCompleted, SessionStatusDraft},
	SessionStatusCompleted:  {SessionStatusProcessing},
	SessionStatusDraft:      {SessionStatusCompleted},
}

// ParseSessionStatus maps a stored string onto the closed status set.
// Unknown or empty values are treated as draft, matching how rows without
// a status were always displayed.
func ParseSessionStatus(raw string) SessionStatus {
	switch SessionStatus(raw) {
	case SessionStatusProcessing, SessionStatusCompleted, SessionStatusDraft:
		return SessionStatus(raw)
	default:
		return SessionStatusDraft
	}
}

func (s SessionStatus) Valid() bool {
	_, ok := sessionTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is reachable from s. Same-state
// transitions are always allowed and are no-ops.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s SessionStatus) TransitionTo(next SessionStatus) (SessionStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, s, next)
	}
	return next, nil
}

// ManualTransitionTo is TransitionTo for edits made by a user. Processing is only
// entered by a pipeline or resume job that owns the session, never by hand.
func (s SessionStatus) ManualTransitionTo(next SessionStatus) (SessionStatus, error) {
	if next == SessionStatusProcessing {
		return s, fmt.Errorf("%w: %s -> %s is reserved for processing jobs", ErrInvalidStatusTransition, s, next)
	}
	return s.TransitionTo(next)
}

type Document struct {
	Id        uuid.UUID
	Title     string
	Type      string
	Content   string
	CreatedAt time.Time
}

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task tags recognised by clients for classification. Other values are kept as-is.
const (
	TaskTagPrescription = "Prescription"
	TaskTagReferral     = "Referral"
	TaskTagLabImaging   = "Lab/Imaging"
	TaskTagAdmin        = "Admin"
	TaskTagFollowUp     = "Follow-up"
)

type Task struct {
	Id        string
	Content   string
	Tag       string
	Status    TaskStatus
	SessionId uuid.UUID
}

type Addendum struct {
	Id        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
}

type Session struct {
	Id            uuid.UUID
	PatientId     uuid.UUID
	UserId        uuid.UUID
	PatientName   string
	PatientGender string
	Title         string
	Date          time.Time
	TemplateId    string
	TemplateName  string
	Transcript    string
	Documents     []Document
	Context       string
	Status        SessionStatus
	Tasks         []Task
	Addendums     []Addendum
}

func (s *Session) transition(next SessionStatus) error {
	status, err := s.Status.TransitionTo(next)
	if err != nil {
		return err
	}
	s.Status = status
	return nil
}

// BeginProcessing moves a completed session back into processing for a resume.
func (s *Session) BeginProcessing() error {
	return s.transition(SessionStatusProcessing)
}

func (s *Session) Complete() error {
	return s.transition(SessionStatusCompleted)
}

// MarkFailed moves a processing session to draft and replaces its
// transcript with the given explanation.
func (s *Session) MarkFailed(message string) error {
	if err := s.transition(SessionStatusDraft); err != nil {
		return err
	}
	s.Transcript = message
	return nil
}

func (s *Session) FindDocument(id uuid.UUID) (int, bool) {
	for i, d := range s.Documents {
		if d.Id == id {
			return i, true
		}
	}
	return -1, false
}

// PrimaryDocument returns the document a resume or regeneration targets
// when the caller did not choose one: the first tab.
func (s *Session) PrimaryDocument() (Document, bool) {
	if len(s.Documents) == 0 {
		return Document{}, false
	}
	return s.Documents[0], true
}

func (s *Session) FindTask(id string) (int, bool) {
	for i, t := range s.Tasks {
		if t.Id == id {
			return i, true
		}
	}
	return -1, false
}

// Clone returns a deep copy so callers never share slices with the view store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Documents = append([]Document(nil), s.Documents...)
	c.Tasks = append([]Task(nil), s.Tasks...)
	c.Addendums = append([]Addendum(nil), s.Addendums...)
	if c.Documents == nil {
		c.Documents = []Document{}
	}
	if c.Tasks == nil {
		c.Tasks = []Task{}
	}
	if c.Addendums == nil {
		c.Addendums = []Addendum{}
	}
	return &c
}

// TaskID builds the session-scoped identifier of the i-th extracted task.
func TaskID(sessionId uuid.UUID, i int) string {
	return fmt.Sprintf("%s-task-%d", sessionId, i)
}
