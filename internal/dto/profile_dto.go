package dto

import (
	"time"

	"onechart-be/internal/entity"

	"github.com/google/uuid"
)

type ProfileResponse struct {
	Id             uuid.UUID  `json:"id"`
	FullName       string     `json:"full_name"`
	Email          string     `json:"email"`
	Practice       string     `json:"practice"`
	Speciality     string     `json:"speciality"`
	PhoneNumber    string     `json:"phone_number"`
	PracticeName   string     `json:"practice_name"`
	PracticeInfo   string     `json:"practice_info"`
	AutoDeleteDays int        `json:"auto_delete_days"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

type UpdateProfileRequest struct {
	FullName       string `json:"full_name" validate:"max=255"`
	Email          string `json:"email" validate:"omitempty,email,max=255"`
	Practice       string `json:"practice" validate:"max=255"`
	Speciality     string `json:"speciality" validate:"max=255"`
	PhoneNumber    string `json:"phone_number" validate:"max=64"`
	PracticeName   string `json:"practice_name" validate:"max=255"`
	PracticeInfo   string `json:"practice_info"`
	AutoDeleteDays int    `json:"auto_delete_days" validate:"omitempty,min=1,max=3650"`
}

func NewProfileResponse(p *entity.Profile) *ProfileResponse {
	return &ProfileResponse{
		Id:             p.Id,
		FullName:       p.FullName,
		Email:          p.Email,
		Practice:       p.Practice,
		Speciality:     p.Speciality,
		PhoneNumber:    p.PhoneNumber,
		PracticeName:   p.PracticeName,
		PracticeInfo:   p.PracticeInfo,
		AutoDeleteDays: p.AutoDeleteDays,
		UpdatedAt:      p.UpdatedAt,
	}
}
