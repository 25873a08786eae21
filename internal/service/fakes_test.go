package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"onechart-be/internal/entity"
	"onechart-be/internal/repository/contract"
	"onechart-be/internal/repository/specification"
	"onechart-be/internal/repository/unitofwork"
	"onechart-be/pkg/events"
	"onechart-be/pkg/scribe"

	"github.com/google/uuid"
)

var errStore = errors.New("store unavailable")

// fakeDB stands in for postgres. Specifications are ignored; sessions are filtered by owner in Go.
type fakeDB struct {
	mu          sync.Mutex
	sessions    map[uuid.UUID]*entity.Session
	patients    map[uuid.UUID]*entity.Patient
	profiles    map[uuid.UUID]*entity.Profile
	failCreate  bool
	failUpdates bool
	failProfile bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		sessions: make(map[uuid.UUID]*entity.Session),
		patients: make(map[uuid.UUID]*entity.Patient),
		profiles: make(map[uuid.UUID]*entity.Profile),
	}
}

func (db *fakeDB) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{db: db}
}

func (db *fakeDB) session(id uuid.UUID) *entity.Session {
	db.mu.Lock()
	defer db.mu.Unlock()
	if s, ok := db.sessions[id]; ok {
		return s.Clone()
	}
	return nil
}

func (db *fakeDB) put(s *entity.Session) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.sessions[s.Id] = s.Clone()
}

type fakeUnitOfWork struct {
	db *fakeDB
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) SessionRepository() contract.SessionRepository {
	return &fakeSessionRepo{db: u.db}
}
func (u *fakeUnitOfWork) PatientRepository() contract.PatientRepository {
	return &fakePatientRepo{db: u.db}
}
func (u *fakeUnitOfWork) SessionNoteRepository() contract.SessionNoteRepository {
	return &fakeContentRepo{db: u.db}
}
func (u *fakeUnitOfWork) SessionTranscriptRepository() contract.SessionTranscriptRepository {
	return &fakeTranscriptRepo{db: u.db}
}
func (u *fakeUnitOfWork) SessionContextRepository() contract.SessionContextRepository {
	return &fakeContextRepo{db: u.db}
}
func (u *fakeUnitOfWork) SessionTaskRepository() contract.SessionTaskRepository {
	return &fakeContentRepo{db: u.db}
}
func (u *fakeUnitOfWork) ProfileRepository() contract.ProfileRepository {
	return &fakeProfileRepo{db: u.db}
}

type fakeSessionRepo struct{ db *fakeDB }

func (r *fakeSessionRepo) Create(ctx context.Context, s *entity.Session) error {
	if r.db.failCreate {
		return errStore
	}
	row := s.Clone()
	row.Transcript = ""
	row.Context = ""
	row.Documents = []entity.Document{}
	row.Tasks = []entity.Task{}
	r.db.put(row)
	return nil
}

func (r *fakeSessionRepo) UpdateFields(ctx context.Context, id uuid.UUID, f contract.SessionFields) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failUpdates {
		return errStore
	}
	s, ok := r.db.sessions[id]
	if !ok {
		return nil
	}
	if f.Title != nil {
		s.Title = *f.Title
	}
	if f.Status != nil {
		s.Status = *f.Status
	}
	if f.PatientName != nil {
		s.PatientName = *f.PatientName
	}
	if f.PatientGender != nil {
		s.PatientGender = *f.PatientGender
	}
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, id)
	return nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var owner *uuid.UUID
	var cutoff *time.Time
	var status *entity.SessionStatus
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.UserOwnedBy:
			id := s.UserID
			owner = &id
		case specification.CreatedBefore:
			c := s.Cutoff
			cutoff = &c
		case specification.ByStatus:
			st := s.Status
			status = &st
		}
	}

	out := make([]*entity.Session, 0)
	for _, s := range r.db.sessions {
		if owner != nil && s.UserId != *owner {
			continue
		}
		if cutoff != nil && !s.Date.Before(*cutoff) {
			continue
		}
		if status != nil && s.Status != *status {
			continue
		}
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

type fakePatientRepo struct{ db *fakeDB }

func (r *fakePatientRepo) Create(ctx context.Context, p *entity.Patient) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failCreate {
		return errStore
	}
	cp := *p
	r.db.patients[p.Id] = &cp
	return nil
}

func (r *fakePatientRepo) UpdateDetails(ctx context.Context, id uuid.UUID, fullName, gender *string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failUpdates {
		return errStore
	}
	p, ok := r.db.patients[id]
	if !ok {
		return nil
	}
	if fullName != nil {
		p.FullName = *fullName
	}
	if gender != nil {
		p.Gender = *gender
	}
	return nil
}

// fakeContentRepo covers notes and tasks.
type fakeContentRepo struct{ db *fakeDB }

func (r *fakeContentRepo) UpsertMany(ctx context.Context, sessionId uuid.UUID, documents []entity.Document) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failUpdates {
		return errStore
	}
	s, ok := r.db.sessions[sessionId]
	if !ok {
		return nil
	}
	for _, d := range documents {
		if i, found := s.FindDocument(d.Id); found {
			s.Documents[i] = d
		} else {
			s.Documents = append(s.Documents, d)
		}
	}
	return nil
}

func (r *fakeContentRepo) Delete(ctx context.Context, sessionId uuid.UUID, documentId uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.sessions[sessionId]
	if !ok {
		return nil
	}
	if i, found := s.FindDocument(documentId); found {
		s.Documents = append(s.Documents[:i], s.Documents[i+1:]...)
	}
	return nil
}

func (r *fakeContentRepo) ReplaceAll(ctx context.Context, sessionId uuid.UUID, tasks []entity.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failUpdates {
		return errStore
	}
	if s, ok := r.db.sessions[sessionId]; ok {
		s.Tasks = append([]entity.Task{}, tasks...)
	}
	return nil
}

type fakeTranscriptRepo struct{ db *fakeDB }

func (r *fakeTranscriptRepo) Upsert(ctx context.Context, sessionId uuid.UUID, transcript string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failUpdates {
		return errStore
	}
	if s, ok := r.db.sessions[sessionId]; ok {
		s.Transcript = transcript
	}
	return nil
}

type fakeContextRepo struct{ db *fakeDB }

func (r *fakeContextRepo) Upsert(ctx context.Context, sessionId uuid.UUID, value string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failUpdates {
		return errStore
	}
	if s, ok := r.db.sessions[sessionId]; ok {
		s.Context = value
	}
	return nil
}

type fakeProfileRepo struct{ db *fakeDB }

func (r *fakeProfileRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failProfile {
		return nil, errStore
	}
	if p, ok := r.db.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProfileRepo) FindAll(ctx context.Context) ([]*entity.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*entity.Profile, 0, len(r.db.profiles))
	for _, p := range r.db.profiles {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeProfileRepo) Upsert(ctx context.Context, p *entity.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *p
	r.db.profiles[p.Id] = &cp
	return nil
}

// fakeGateway returns canned answers and records drafting requests.
type fakeGateway struct {
	mu sync.Mutex

	transcript    string
	transcribeErr error
	title         string
	titleErr      error
	document      string
	draftErr      error
	tasks         []scribe.ExtractedTask
	tasksErr      error
	reply         string
	chatErr       error

	// block, when set, holds Transcribe until the context ends.
	block bool
	// draftStarted and draftRelease, when set, hold DraftDocument until release is closed.
	draftStarted chan struct{}
	draftRelease chan struct{}
	// panicIn names a step ("draft" or "tasks") that panics instead of answering.
	panicIn string

	drafts []scribe.DraftRequest
}

func (g *fakeGateway) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.transcript, g.transcribeErr
}

func (g *fakeGateway) DraftDocument(ctx context.Context, req scribe.DraftRequest) (string, error) {
	g.mu.Lock()
	g.drafts = append(g.drafts, req)
	started, release := g.draftStarted, g.draftRelease
	g.mu.Unlock()

	if g.panicIn == "draft" {
		panic("draft exploded")
	}
	if release != nil {
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.document, g.draftErr
}

// holdDrafts makes the next DraftDocument call report in on the returned channel and wait for release.
func (g *fakeGateway) holdDrafts() (started <-chan struct{}, release func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.draftStarted = make(chan struct{}, 1)
	g.draftRelease = make(chan struct{})
	releaseCh := g.draftRelease
	return g.draftStarted, func() {
		g.mu.Lock()
		g.draftStarted, g.draftRelease = nil, nil
		g.mu.Unlock()
		close(releaseCh)
	}
}

func (g *fakeGateway) ExtractTasks(ctx context.Context, document string) ([]scribe.ExtractedTask, error) {
	if g.panicIn == "tasks" {
		panic("task extraction exploded")
	}
	return g.tasks, g.tasksErr
}

func (g *fakeGateway) InferTitle(ctx context.Context, transcript string) (string, error) {
	return g.title, g.titleErr
}

func (g *fakeGateway) Chat(ctx context.Context, history []scribe.ChatTurn, note, transcript string) (string, error) {
	return g.reply, g.chatErr
}

func (g *fakeGateway) lastDraft() scribe.DraftRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.drafts) == 0 {
		return scribe.DraftRequest{}
	}
	return g.drafts[len(g.drafts)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}
