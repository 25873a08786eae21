package memory

import (
	"strconv"
	"sync"
	"time"

	"onechart-be/internal/entity"
	"onechart-be/pkg/templates"

	"github.com/google/uuid"
)

// TemplateRepository keeps each user's templates in memory, seeded from the built-in catalog.
type TemplateRepository struct {
	mu       sync.Mutex
	defaults []templates.Template
	byUser   map[uuid.UUID][]entity.Template
}

func NewTemplateRepository(defaults []templates.Template) *TemplateRepository {
	return &TemplateRepository{
		defaults: defaults,
		byUser:   make(map[uuid.UUID][]entity.Template),
	}
}

func (r *TemplateRepository) List(userId uuid.UUID) []entity.Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Template(nil), r.load(userId)...)
}

func (r *TemplateRepository) Find(userId uuid.UUID, id string) (entity.Template, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.load(userId) {
		if t.Id == id {
			return t, true
		}
	}
	return entity.Template{}, false
}

func (r *TemplateRepository) Create(userId uuid.UUID, t entity.Template) entity.Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.load(userId)
	if t.Id == "" {
		t.Id = strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	r.byUser[userId] = append(list, t)
	return t
}

func (r *TemplateRepository) Delete(userId uuid.UUID, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.load(userId)
	next := make([]entity.Template, 0, len(list))
	for _, t := range list {
		if t.Id != id {
			next = append(next, t)
		}
	}
	r.byUser[userId] = next
	return len(next) != len(list)
}

// load must be called with mu held.
func (r *TemplateRepository) load(userId uuid.UUID) []entity.Template {
	if list, ok := r.byUser[userId]; ok {
		return list
	}
	list := make([]entity.Template, 0, len(r.defaults))
	for _, d := range r.defaults {
		list = append(list, entity.Template{
			Id:           d.Id,
			Name:         d.Name,
			Description:  d.Description,
			SystemPrompt: d.SystemPrompt,
		})
	}
	r.byUser[userId] = list
	return list
}
