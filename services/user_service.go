package services

import (
	"direct-chat/domain"
	"direct-chat/repositories"

	"github.com/samber/lo"
)

type IUserService interface {
	ListUsers() ([]domain.UserSummary, error)
	GetUser(id string) (domain.UserSummary, error)
}

// UserService exposes users to other users. Credentials never leave it.
type UserService struct {
	userRepository repositories.IUserRepository
}

func NewUserService(repo repositories.IUserRepository) *UserService {
	return &UserService{userRepository: repo}
}

func (s *UserService) ListUsers() ([]domain.UserSummary, error) {
	users, err := s.userRepository.ListUsers()
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u domain.User, _ int) domain.UserSummary {
		return u.Summary()
	}), nil
}

func (s *UserService) GetUser(id string) (domain.UserSummary, error) {
	user, err := s.userRepository.GetUserByID(id)
	if err != nil {
		return domain.UserSummary{}, err
	}
	return user.Summary(), nil
}
