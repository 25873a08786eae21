package service

import (
	"context"

	"onechart-be/internal/dto"
	"onechart-be/internal/entity"
	"onechart-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IProfileService interface {
	// Get creates and stores an empty profile the first time a user asks for one.
	Get(ctx context.Context, userId uuid.UUID) (*dto.ProfileResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
}

type profileService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewProfileService(uowFactory unitofwork.RepositoryFactory) IProfileService {
	return &profileService{uowFactory: uowFactory}
}

func (c *profileService) Get(ctx context.Context, userId uuid.UUID) (*dto.ProfileResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	profile, err := uow.ProfileRepository().FindById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = entity.EmptyProfile(userId, "")
		if err := uow.ProfileRepository().Upsert(ctx, profile); err != nil {
			return nil, err
		}
	}
	return dto.NewProfileResponse(profile), nil
}

func (c *profileService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	autoDelete := req.AutoDeleteDays
	if autoDelete <= 0 {
		autoDelete = entity.DefaultAutoDeleteDays
	}
	profile := &entity.Profile{
		Id:             userId,
		FullName:       req.FullName,
		Email:          req.Email,
		Practice:       req.Practice,
		Speciality:     req.Speciality,
		PhoneNumber:    req.PhoneNumber,
		PracticeName:   req.PracticeName,
		PracticeInfo:   req.PracticeInfo,
		AutoDeleteDays: autoDelete,
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ProfileRepository().Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return dto.NewProfileResponse(profile), nil
}
