package model

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName       string    `gorm:"type:varchar(255)"`
	Email          string    `gorm:"type:varchar(255)"`
	Practice       string    `gorm:"type:varchar(255)"`
	Speciality     string    `gorm:"type:varchar(255)"`
	PhoneNumber    string    `gorm:"type:varchar(64)"`
	PracticeName   string    `gorm:"type:varchar(255)"`
	PracticeInfo   string    `gorm:"type:text"`
	AutoDeleteDays int       `gorm:"not null;default:30"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}
