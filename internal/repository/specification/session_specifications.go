package specification

import (
	"time"

	"onechart-be/internal/entity"
	"onechart-be/internal/repository/scope"

	"gorm.io/gorm"
)

// ByStatus matches sessions in one lifecycle state (startup recovery of interrupted jobs).
type ByStatus struct {
	Status entity.SessionStatus
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

// CreatedBefore matches sessions older than the cutoff (retention sweeps).
type CreatedBefore struct {
	Cutoff time.Time
}

func (s CreatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at < ?", s.Cutoff)
}

// NewestFirst orders sessions the way every session list is shown.
type NewestFirst struct{}

func (s NewestFirst) Apply(db *gorm.DB) *gorm.DB {
	return scope.OrderByCreatedDesc(db)
}
