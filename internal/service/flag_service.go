package service

import (
	"context"
	"errors"
	"regexp"

	"github.com/faiscadev/flaglite/internal/apperr"
	"github.com/faiscadev/flaglite/internal/domain"
)

// flagKeyPattern enforces the flag key contract:
// `[a-z0-9][a-z0-9_-]*`, length 1-64.
var flagKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

type FlagService struct {
	storage domain.Storage
}

func NewFlagService(storage domain.Storage) *FlagService {
	return &FlagService{storage: storage}
}

func validateFlagKey(key string) error {
	if !flagKeyPattern.MatchString(key) {
		return apperr.Validation("key must match [a-z0-9][a-z0-9_-]* and be 1-64 characters")
	}
	return nil
}

func (s *FlagService) CreateFlag(ctx context.Context, rc domain.RequestContext, projectID int64, key, name, description string) (*domain.FlagWithValues, error) {
	if err := authorizeProjectAccess(ctx, s.storage, rc, projectID); err != nil {
		return nil, err
	}
	if rc.Principal.IsEnvKey() {
		return nil, apperr.Forbidden("an environment key cannot manage flags")
	}
	if err := validateFlagKey(key); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	flag, values, err := s.storage.CreateFlagWithDefaultValues(ctx, projectID, key, name, description, domain.DefaultRolloutPercentage)
	if errors.Is(err, domain.ErrConflict) {
		return nil, apperr.Conflict("flag already exists")
	}
	if err != nil {
		return nil, apperr.Internal("failed to create flag", err)
	}

	return s.withEnvironmentNames(ctx, projectID, flag, values)
}

func (s *FlagService) ListFlags(ctx context.Context, rc domain.RequestContext, projectID int64) ([]domain.FlagWithValues, error) {
	if err := authorizeProjectAccess(ctx, s.storage, rc, projectID); err != nil {
		return nil, err
	}

	flags, err := s.storage.ListFlagsForProject(ctx, projectID)
	if err != nil {
		return nil, apperr.Internal("failed to list flags", err)
	}

	envs, err := s.storage.ListEnvironmentsForProject(ctx, projectID)
	if err != nil {
		return nil, apperr.Internal("failed to list environments", err)
	}
	envNameByID := make(map[int64]string, len(envs))
	for _, e := range envs {
		envNameByID[e.ID] = e.Name
	}

	out := make([]domain.FlagWithValues, 0, len(flags))
	for _, flag := range flags {
		values, err := s.storage.ListFlagValues(ctx, flag.ID)
		if err != nil {
			return nil, apperr.Internal("failed to load flag values", err)
		}
		out = append(out, toFlagWithValues(flag, values, envNameByID))
	}
	return out, nil
}

func (s *FlagService) GetFlag(ctx context.Context, rc domain.RequestContext, projectID int64, key string) (*domain.FlagWithValues, error) {
	if err := authorizeProjectAccess(ctx, s.storage, rc, projectID); err != nil {
		return nil, err
	}

	flag, err := s.storage.FindFlagByKey(ctx, projectID, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound("flag not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load flag", err)
	}

	values, err := s.storage.ListFlagValues(ctx, flag.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load flag values", err)
	}

	return s.withEnvironmentNames(ctx, projectID, flag, values)
}

func (s *FlagService) DeleteFlag(ctx context.Context, rc domain.RequestContext, projectID int64, key string) error {
	if err := authorizeProjectAccess(ctx, s.storage, rc, projectID); err != nil {
		return err
	}
	if rc.Principal.IsEnvKey() {
		return apperr.Forbidden("an environment key cannot manage flags")
	}

	err := s.storage.DeleteFlagByKey(ctx, projectID, key)
	if errors.Is(err, domain.ErrNotFound) {
		return apperr.NotFound("flag not found")
	}
	if err != nil {
		return apperr.Internal("failed to delete flag", err)
	}
	return nil
}

func (s *FlagService) UpdateFlagValue(ctx context.Context, rc domain.RequestContext, projectID int64, key, envName string, enabled *bool, rollout *int) (*domain.FlagWithValues, error) {
	if err := authorizeProjectAccess(ctx, s.storage, rc, projectID); err != nil {
		return nil, err
	}
	if rc.Principal.IsEnvKey() {
		return nil, apperr.Forbidden("an environment key cannot manage flags")
	}
	if rollout != nil && (*rollout < 0 || *rollout > 100) {
		return nil, apperr.Validation("rollout_percentage must be between 0 and 100")
	}

	flag, env, err := s.findFlagAndEnvironment(ctx, projectID, key, envName)
	if err != nil {
		return nil, err
	}

	_, err = s.storage.UpdateFlagValue(ctx, flag.ID, env.ID, enabled, rollout)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound("flag value not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to update flag value", err)
	}

	values, err := s.storage.ListFlagValues(ctx, flag.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load flag values", err)
	}
	return s.withEnvironmentNames(ctx, projectID, flag, values)
}

type ToggleResult struct {
	Key         string
	Environment string
	Enabled     bool
}

func (s *FlagService) ToggleFlagValue(ctx context.Context, rc domain.RequestContext, projectID int64, key, envName string) (*ToggleResult, error) {
	if err := authorizeProjectAccess(ctx, s.storage, rc, projectID); err != nil {
		return nil, err
	}
	if rc.Principal.IsEnvKey() {
		return nil, apperr.Forbidden("an environment key cannot manage flags")
	}

	flag, env, err := s.findFlagAndEnvironment(ctx, projectID, key, envName)
	if err != nil {
		return nil, err
	}

	fv, err := s.storage.ToggleFlagValue(ctx, flag.ID, env.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound("flag value not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to toggle flag value", err)
	}

	return &ToggleResult{Key: flag.Key, Environment: env.Name, Enabled: fv.Enabled}, nil
}

func (s *FlagService) findFlagAndEnvironment(ctx context.Context, projectID int64, key, envName string) (*domain.Flag, *domain.Environment, error) {
	flag, err := s.storage.FindFlagByKey(ctx, projectID, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, apperr.NotFound("flag not found")
	}
	if err != nil {
		return nil, nil, apperr.Internal("failed to load flag", err)
	}

	env, err := s.storage.FindEnvironmentByProjectAndName(ctx, projectID, envName)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, apperr.NotFound("environment not found")
	}
	if err != nil {
		return nil, nil, apperr.Internal("failed to load environment", err)
	}

	return flag, env, nil
}

func (s *FlagService) withEnvironmentNames(ctx context.Context, projectID int64, flag *domain.Flag, values []domain.FlagValue) (*domain.FlagWithValues, error) {
	envs, err := s.storage.ListEnvironmentsForProject(ctx, projectID)
	if err != nil {
		return nil, apperr.Internal("failed to load environments", err)
	}
	envNameByID := make(map[int64]string, len(envs))
	for _, e := range envs {
		envNameByID[e.ID] = e.Name
	}

	result := toFlagWithValues(*flag, values, envNameByID)
	return &result, nil
}

func toFlagWithValues(flag domain.Flag, values []domain.FlagValue, envNameByID map[int64]string) domain.FlagWithValues {
	out := domain.FlagWithValues{Flag: flag, Values: make(map[string]domain.FlagValue, len(values))}
	for _, v := range values {
		if name, ok := envNameByID[v.EnvironmentID]; ok {
			out.Values[name] = v
		}
	}
	return out
}
