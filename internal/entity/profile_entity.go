package entity

import (
	"time"

	"github.com/google/uuid"
)

const DefaultAutoDeleteDays = 30

type Profile struct {
	Id             uuid.UUID
	FullName       string
	Email          string
	Practice       string
	Speciality     string
	PhoneNumber    string
	PracticeName   string
	PracticeInfo   string
	AutoDeleteDays int
	UpdatedAt      *time.Time
}

// EmptyProfile is the shell returned (and stored) the first time a user's
// profile is fetched.
func EmptyProfile(userId uuid.UUID, email string) *Profile {
	return &Profile{
		Id:             userId,
		Email:          email,
		AutoDeleteDays: DefaultAutoDeleteDays,
	}
}

type Patient struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	FullName  string
	Gender    string
	CreatedAt time.Time
}

type Template struct {
	Id           string
	Name         string
	Description  string
	SystemPrompt string
}
