package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Patient struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	FullName  string    `gorm:"type:varchar(255)"`
	Gender    string    `gorm:"type:varchar(64)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Patient) TableName() string {
	return "patients"
}

type Session struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index"`
	PatientId     *uuid.UUID     `gorm:"type:uuid;index"`
	PatientName   string         `gorm:"type:varchar(255)"`
	PatientGender string         `gorm:"type:varchar(64)"`
	Title         string         `gorm:"type:varchar(255)"`
	Status        string         `gorm:"type:varchar(32);not null;default:'draft'"`
	TemplateId    string         `gorm:"type:varchar(128)"`
	TemplateName  string         `gorm:"type:varchar(255)"`
	Addendums     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`

	Patient     *Patient            `gorm:"foreignKey:PatientId"`
	Notes       []SessionNote       `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
	Transcripts []SessionTranscript `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
	Contexts    []SessionContext    `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
	Tasks       []SessionTask       `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
}

func (Session) TableName() string {
	return "sessions"
}

type SessionNote struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"type:varchar(255)"`
	NoteType  string    `gorm:"type:varchar(255)"`
	Content   string    `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (SessionNote) TableName() string {
	return "session_notes"
}

type SessionTranscript struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Transcript string    `gorm:"type:text"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (SessionTranscript) TableName() string {
	return "session_transcripts"
}

type SessionContext struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Context   string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (SessionContext) TableName() string {
	return "session_context"
}

type SessionTask struct {
	Id        string    `gorm:"type:varchar(128);primaryKey"`
	SessionId uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position  int       `gorm:"not null;default:0"`
	Content   string    `gorm:"type:text"`
	Tag       string    `gorm:"type:varchar(64)"`
	Status    string    `gorm:"type:varchar(32);not null;default:'pending'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (SessionTask) TableName() string {
	return "session_tasks"
}
