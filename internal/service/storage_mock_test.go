package service

import (
	"context"

	"github.com/faiscadev/flaglite/internal/domain"
)

// mockStorage implements domain.Storage with one function-pointer field per
// method so each test wires up only the calls its scenario actually
// exercises; anything left nil panics if called, surfacing an unexpected
// storage interaction as a test failure rather than a silent zero value.
type mockStorage struct {
	createUserFn                    func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	findUserByUsernameFn             func(ctx context.Context, username string) (*domain.User, error)
	findUserByIDFn                   func(ctx context.Context, id int64) (*domain.User, error)
	findProjectByIDFn                 func(ctx context.Context, id int64) (*domain.Project, error)
	listProjectsForUserFn              func(ctx context.Context, userID int64) ([]domain.Project, error)
	createProjectWithEnvironmentsFn    func(ctx context.Context, ownerUserID int64, projectName string, envNames []string, apiKeyPrefix, apiKeySecretHash string) (*domain.Project, []domain.Environment, *domain.ApiKey, error)
	createEnvironmentFn                func(ctx context.Context, projectID int64, name string, defaultRollout int) (*domain.Environment, error)
	findEnvironmentByIDFn              func(ctx context.Context, id int64) (*domain.Environment, error)
	findEnvironmentByProjectAndNameFn  func(ctx context.Context, projectID int64, name string) (*domain.Environment, error)
	listEnvironmentsForProjectFn       func(ctx context.Context, projectID int64) ([]domain.Environment, error)
	createFlagWithDefaultValuesFn      func(ctx context.Context, projectID int64, key, name, description string, defaultRollout int) (*domain.Flag, []domain.FlagValue, error)
	findFlagByKeyFn                    func(ctx context.Context, projectID int64, key string) (*domain.Flag, error)
	listFlagsForProjectFn              func(ctx context.Context, projectID int64) ([]domain.Flag, error)
	deleteFlagByKeyFn                  func(ctx context.Context, projectID int64, key string) error
	getFlagValueFn                     func(ctx context.Context, flagID, environmentID int64) (*domain.FlagValue, error)
	listFlagValuesFn                   func(ctx context.Context, flagID int64) ([]domain.FlagValue, error)
	updateFlagValueFn                  func(ctx context.Context, flagID, environmentID int64, enabled *bool, rollout *int) (*domain.FlagValue, error)
	toggleFlagValueFn                  func(ctx context.Context, flagID, environmentID int64) (*domain.FlagValue, error)
	signupTransactionFn                func(ctx context.Context, username, passwordHash, projectName string, envNames []string, apiKeyPrefix, apiKeySecretHash string) (*domain.User, *domain.Project, []domain.Environment, *domain.ApiKey, error)
	createApiKeyFn                     func(ctx context.Context, kind domain.ApiKeyKind, projectID int64, environmentID *int64, prefix, secretHash string) (*domain.ApiKey, error)
	findApiKeyByHashFn                 func(ctx context.Context, secretHash string) (*domain.ApiKey, error)
	listApiKeysForProjectFn            func(ctx context.Context, projectID int64) ([]domain.ApiKey, error)
	runMigrationsFn                    func(ctx context.Context) error
	closeFn                            func() error
}

func (m *mockStorage) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	return m.createUserFn(ctx, username, passwordHash)
}
func (m *mockStorage) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.findUserByUsernameFn(ctx, username)
}
func (m *mockStorage) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return m.findUserByIDFn(ctx, id)
}
func (m *mockStorage) FindProjectByID(ctx context.Context, id int64) (*domain.Project, error) {
	return m.findProjectByIDFn(ctx, id)
}
func (m *mockStorage) ListProjectsForUser(ctx context.Context, userID int64) ([]domain.Project, error) {
	return m.listProjectsForUserFn(ctx, userID)
}
func (m *mockStorage) CreateProjectWithEnvironments(ctx context.Context, ownerUserID int64, projectName string, envNames []string, apiKeyPrefix, apiKeySecretHash string) (*domain.Project, []domain.Environment, *domain.ApiKey, error) {
	return m.createProjectWithEnvironmentsFn(ctx, ownerUserID, projectName, envNames, apiKeyPrefix, apiKeySecretHash)
}
func (m *mockStorage) CreateEnvironment(ctx context.Context, projectID int64, name string, defaultRollout int) (*domain.Environment, error) {
	return m.createEnvironmentFn(ctx, projectID, name, defaultRollout)
}
func (m *mockStorage) FindEnvironmentByID(ctx context.Context, id int64) (*domain.Environment, error) {
	return m.findEnvironmentByIDFn(ctx, id)
}
func (m *mockStorage) FindEnvironmentByProjectAndName(ctx context.Context, projectID int64, name string) (*domain.Environment, error) {
	return m.findEnvironmentByProjectAndNameFn(ctx, projectID, name)
}
func (m *mockStorage) ListEnvironmentsForProject(ctx context.Context, projectID int64) ([]domain.Environment, error) {
	return m.listEnvironmentsForProjectFn(ctx, projectID)
}
func (m *mockStorage) CreateFlagWithDefaultValues(ctx context.Context, projectID int64, key, name, description string, defaultRollout int) (*domain.Flag, []domain.FlagValue, error) {
	return m.createFlagWithDefaultValuesFn(ctx, projectID, key, name, description, defaultRollout)
}
func (m *mockStorage) FindFlagByKey(ctx context.Context, projectID int64, key string) (*domain.Flag, error) {
	return m.findFlagByKeyFn(ctx, projectID, key)
}
func (m *mockStorage) ListFlagsForProject(ctx context.Context, projectID int64) ([]domain.Flag, error) {
	return m.listFlagsForProjectFn(ctx, projectID)
}
func (m *mockStorage) DeleteFlagByKey(ctx context.Context, projectID int64, key string) error {
	return m.deleteFlagByKeyFn(ctx, projectID, key)
}
func (m *mockStorage) GetFlagValue(ctx context.Context, flagID, environmentID int64) (*domain.FlagValue, error) {
	return m.getFlagValueFn(ctx, flagID, environmentID)
}
func (m *mockStorage) ListFlagValues(ctx context.Context, flagID int64) ([]domain.FlagValue, error) {
	return m.listFlagValuesFn(ctx, flagID)
}
func (m *mockStorage) UpdateFlagValue(ctx context.Context, flagID, environmentID int64, enabled *bool, rollout *int) (*domain.FlagValue, error) {
	return m.updateFlagValueFn(ctx, flagID, environmentID, enabled, rollout)
}
func (m *mockStorage) ToggleFlagValue(ctx context.Context, flagID, environmentID int64) (*domain.FlagValue, error) {
	return m.toggleFlagValueFn(ctx, flagID, environmentID)
}
func (m *mockStorage) SignupTransaction(ctx context.Context, username, passwordHash, projectName string, envNames []string, apiKeyPrefix, apiKeySecretHash string) (*domain.User, *domain.Project, []domain.Environment, *domain.ApiKey, error) {
	return m.signupTransactionFn(ctx, username, passwordHash, projectName, envNames, apiKeyPrefix, apiKeySecretHash)
}
func (m *mockStorage) CreateApiKey(ctx context.Context, kind domain.ApiKeyKind, projectID int64, environmentID *int64, prefix, secretHash string) (*domain.ApiKey, error) {
	return m.createApiKeyFn(ctx, kind, projectID, environmentID, prefix, secretHash)
}
func (m *mockStorage) FindApiKeyByHash(ctx context.Context, secretHash string) (*domain.ApiKey, error) {
	return m.findApiKeyByHashFn(ctx, secretHash)
}
func (m *mockStorage) ListApiKeysForProject(ctx context.Context, projectID int64) ([]domain.ApiKey, error) {
	return m.listApiKeysForProjectFn(ctx, projectID)
}
func (m *mockStorage) RunMigrations(ctx context.Context) error { return m.runMigrationsFn(ctx) }
func (m *mockStorage) Close() error                            { return m.closeFn() }
