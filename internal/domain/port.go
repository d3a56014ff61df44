package domain

import "context"

// Storage is the port every adapter implements. It exposes CRUD over the
// six tables plus migration control; nothing above this interface may
// branch on which concrete adapter is in use.
type Storage interface {
	// Users
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindUserByID(ctx context.Context, id int64) (*User, error)

	// Projects
	FindProjectByID(ctx context.Context, id int64) (*Project, error)
	ListProjectsForUser(ctx context.Context, userID int64) ([]Project, error)

	// CreateProjectWithEnvironments creates a project, its default
	// environments, and one project API key in a single transaction.
	CreateProjectWithEnvironments(ctx context.Context, ownerUserID int64, projectName string, envNames []string, apiKeyPrefix, apiKeySecretHash string) (*Project, []Environment, *ApiKey, error)

	// Environments

	// CreateEnvironment creates a single environment for a project outside
	// the signup/create-project flow, and backfills a FlagValue row for
	// every flag the project already has. Both happen in one transaction.
	CreateEnvironment(ctx context.Context, projectID int64, name string, defaultRollout int) (*Environment, error)
	FindEnvironmentByID(ctx context.Context, id int64) (*Environment, error)
	FindEnvironmentByProjectAndName(ctx context.Context, projectID int64, name string) (*Environment, error)
	ListEnvironmentsForProject(ctx context.Context, projectID int64) ([]Environment, error)

	// Flags
	CreateFlagWithDefaultValues(ctx context.Context, projectID int64, key, name, description string, defaultRollout int) (*Flag, []FlagValue, error)
	FindFlagByKey(ctx context.Context, projectID int64, key string) (*Flag, error)
	ListFlagsForProject(ctx context.Context, projectID int64) ([]Flag, error)
	DeleteFlagByKey(ctx context.Context, projectID int64, key string) error

	// FlagValues
	GetFlagValue(ctx context.Context, flagID, environmentID int64) (*FlagValue, error)
	ListFlagValues(ctx context.Context, flagID int64) ([]FlagValue, error)
	UpdateFlagValue(ctx context.Context, flagID, environmentID int64, enabled *bool, rollout *int) (*FlagValue, error)
	ToggleFlagValue(ctx context.Context, flagID, environmentID int64) (*FlagValue, error)

	// SignupTransaction creates the user, project, default environments,
	// and project API key in one logical operation.
	SignupTransaction(ctx context.Context, username, passwordHash, projectName string, envNames []string, apiKeyPrefix, apiKeySecretHash string) (*User, *Project, []Environment, *ApiKey, error)

	// ApiKeys
	CreateApiKey(ctx context.Context, kind ApiKeyKind, projectID int64, environmentID *int64, prefix, secretHash string) (*ApiKey, error)
	FindApiKeyByHash(ctx context.Context, secretHash string) (*ApiKey, error)
	ListApiKeysForProject(ctx context.Context, projectID int64) ([]ApiKey, error)

	RunMigrations(ctx context.Context) error
	Close() error
}
