package service

import (
	"context"
	"errors"

	"github.com/faiscadev/flaglite/internal/apperr"
	"github.com/faiscadev/flaglite/internal/auth"
	"github.com/faiscadev/flaglite/internal/domain"
)

type ProjectService struct {
	storage domain.Storage
}

func NewProjectService(storage domain.Storage) *ProjectService {
	return &ProjectService{storage: storage}
}

func (s *ProjectService) CreateProject(ctx context.Context, rc domain.RequestContext, name string) (*domain.Project, []domain.Environment, error) {
	if !rc.Principal.IsUser() {
		return nil, nil, apperr.Forbidden("only a user principal may create a project")
	}
	if name == "" {
		return nil, nil, apperr.Validation("name is required")
	}

	plaintext, secretHash, err := auth.GenerateApiKey(domain.ApiKeyKindProject)
	if err != nil {
		return nil, nil, apperr.Internal("failed to generate api key", err)
	}

	project, envs, _, err := s.storage.CreateProjectWithEnvironments(
		ctx, rc.Principal.UserID, name, domain.DefaultEnvironmentNames, prefixOf(plaintext), secretHash,
	)
	if errors.Is(err, domain.ErrConflict) {
		return nil, nil, apperr.Conflict("project already exists")
	}
	if err != nil {
		return nil, nil, apperr.Internal("failed to create project", err)
	}

	return project, envs, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, rc domain.RequestContext) ([]domain.Project, error) {
	if !rc.Principal.IsUser() {
		return nil, apperr.Forbidden("only a user principal may list projects")
	}

	projects, err := s.storage.ListProjectsForUser(ctx, rc.Principal.UserID)
	if err != nil {
		return nil, apperr.Internal("failed to list projects", err)
	}
	return projects, nil
}

func (s *ProjectService) ListEnvironments(ctx context.Context, rc domain.RequestContext, projectID int64) ([]domain.Environment, error) {
	if err := authorizeProjectAccess(ctx, s.storage, rc, projectID); err != nil {
		return nil, err
	}

	envs, err := s.storage.ListEnvironmentsForProject(ctx, projectID)
	if err != nil {
		return nil, apperr.Internal("failed to list environments", err)
	}
	return envs, nil
}
