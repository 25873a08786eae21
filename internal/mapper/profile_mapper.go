package mapper

import (
	"onechart-be/internal/entity"
	"onechart-be/internal/model"
)

type ProfileMapper struct{}

func NewProfileMapper() *ProfileMapper {
	return &ProfileMapper{}
}

func (m *ProfileMapper) ToEntity(p *model.Profile) *entity.Profile {
	if p == nil {
		return nil
	}

	var updatedAt = p.UpdatedAt
	autoDelete := p.AutoDeleteDays
	if autoDelete <= 0 {
		autoDelete = entity.DefaultAutoDeleteDays
	}

	return &entity.Profile{
		Id:             p.Id,
		FullName:       p.FullName,
		Email:          p.Email,
		Practice:       p.Practice,
		Speciality:     p.Speciality,
		PhoneNumber:    p.PhoneNumber,
		PracticeName:   p.PracticeName,
		PracticeInfo:   p.PracticeInfo,
		AutoDeleteDays: autoDelete,
		UpdatedAt:      &updatedAt,
	}
}

func (m *ProfileMapper) ToModel(p *entity.Profile) *model.Profile {
	if p == nil {
		return nil
	}
	return &model.Profile{
		Id:             p.Id,
		FullName:       p.FullName,
		Email:          p.Email,
		Practice:       p.Practice,
		Speciality:     p.Speciality,
		PhoneNumber:    p.PhoneNumber,
		PracticeName:   p.PracticeName,
		PracticeInfo:   p.PracticeInfo,
		AutoDeleteDays: p.AutoDeleteDays,
	}
}
