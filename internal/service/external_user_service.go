package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	rep "taskManager/internal/repository"

	"go.uber.org/zap"
)

type CreateExternalUserInput struct {
	ID     string
	Name   string
	Active *bool
}

type UpdateExternalUserInput struct {
	Name   *string
	Active *bool
}

type ExternalUserService struct {
	repo ExternalUserRepository
}

func NewExternalUserService(repo ExternalUserRepository) *ExternalUserService {
	return &ExternalUserService{repo: repo}
}

func (s *ExternalUserService) List(ctx context.Context) ([]*user.ExternalUser, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list external users: %w", err)
	}
	return users, nil
}

func (s *ExternalUserService) Active(ctx context.Context) ([]*user.ExternalUser, error) {
	users, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active external users: %w", err)
	}
	return users, nil
}

// Search matches names case-insensitively. A blank term lists everyone.
func (s *ExternalUserService) Search(ctx context.Context, term string) ([]*user.ExternalUser, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx)
	}
	users, err := s.repo.SearchByName(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search external users: %w", err)
	}
	return users, nil
}

func (s *ExternalUserService) Get(ctx context.Context, id string) (*user.ExternalUser, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}
	return u, nil
}

func (s *ExternalUserService) Create(ctx context.Context, in CreateExternalUserInput) (*user.ExternalUser, error) {
	id := strings.TrimSpace(in.ID)
	name := strings.TrimSpace(in.Name)
	if id == "" {
		return nil, NewValidationError("id", "must not be blank")
	}
	if name == "" {
		return nil, NewValidationError("name", "must not be blank")
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	now := time.Now().UTC()
	u := &user.ExternalUser{
		ID:        id,
		Name:      name,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, rep.ErrAlreadyExists) {
			logger.Info("Service: external user exists", zap.String("external_user_id", id))
			return nil, NewConflict("external user", id)
		}
		return nil, fmt.Errorf("create external user: %w", err)
	}

	logger.Info("Service: external user created", zap.String("external_user_id", id))
	return u, nil
}

func (s *ExternalUserService) Update(ctx context.Context, id string, in UpdateExternalUserInput) (*user.ExternalUser, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, NewValidationError("name", "must not be blank")
		}
		u.Name = name
	}
	if in.Active != nil {
		u.Active = *in.Active
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, s.translate(err, id)
	}

	logger.Info("Service: external user updated", zap.String("external_user_id", id))
	return u, nil
}

func (s *ExternalUserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, id)
	}
	logger.Info("Service: external user deleted", zap.String("external_user_id", id))
	return nil
}

func (s *ExternalUserService) translate(err error, id string) error {
	if errors.Is(err, rep.ErrNotFound) {
		return NewNotFound("external user", id)
	}
	return fmt.Errorf("external user %s: %w", id, err)
}
