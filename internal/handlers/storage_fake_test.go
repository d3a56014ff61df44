package handlers

import (
	"context"
	"fmt"

	"github.com/faiscadev/flaglite/internal/domain"
)

// fakeStorage is a minimal in-memory domain.Storage good enough to drive
// handler tests end to end through the real service layer, rather than
// mocking the service layer itself. Only the subset of behavior the
// handler tests exercise is implemented; everything else panics.
type fakeStorage struct {
	flags           map[string]*domain.Flag
	flagValues      map[int64]map[int64]*domain.FlagValue // flagID -> envID -> value
	envsByID        map[int64]*domain.Environment
	envsByName      map[string]*domain.Environment // "projectID/name"
	projects        map[int64]*domain.Project
	users           map[string]*domain.User // by username
	usersByID       map[int64]*domain.User
	projectsForUser map[int64][]int64 // userID -> projectIDs
	nextID          int64
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		flags:           map[string]*domain.Flag{},
		flagValues:      map[int64]map[int64]*domain.FlagValue{},
		envsByID:        map[int64]*domain.Environment{},
		envsByName:      map[string]*domain.Environment{},
		projects:        map[int64]*domain.Project{},
		users:           map[string]*domain.User{},
		usersByID:       map[int64]*domain.User{},
		projectsForUser: map[int64][]int64{},
		nextID:          1,
	}
}

func flagKey(projectID int64, key string) string {
	return fmt.Sprintf("%d:%s", projectID, key)
}

func (f *fakeStorage) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStorage) addProject(p *domain.Project) { f.projects[p.ID] = p }

func (f *fakeStorage) addEnvironment(e *domain.Environment) {
	f.envsByID[e.ID] = e
	f.envsByName[flagKey(e.ProjectID, e.Name)] = e
}

func (f *fakeStorage) FindProjectByID(ctx context.Context, id int64) (*domain.Project, error) {
	if p, ok := f.projects[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStorage) CreateFlagWithDefaultValues(ctx context.Context, projectID int64, key, name, description string, defaultRollout int) (*domain.Flag, []domain.FlagValue, error) {
	k := flagKey(projectID, key)
	if _, exists := f.flags[k]; exists {
		return nil, nil, domain.ErrConflict
	}
	flag := &domain.Flag{ID: f.id(), ProjectID: projectID, Key: key, Name: name, Description: description}
	f.flags[k] = flag

	var values []domain.FlagValue
	f.flagValues[flag.ID] = map[int64]*domain.FlagValue{}
	for _, env := range f.envsByID {
		if env.ProjectID != projectID {
			continue
		}
		fv := &domain.FlagValue{FlagID: flag.ID, EnvironmentID: env.ID, Enabled: false, RolloutPercentage: defaultRollout}
		f.flagValues[flag.ID][env.ID] = fv
		values = append(values, *fv)
	}
	return flag, values, nil
}

func (f *fakeStorage) FindFlagByKey(ctx context.Context, projectID int64, key string) (*domain.Flag, error) {
	if flag, ok := f.flags[flagKey(projectID, key)]; ok {
		return flag, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStorage) ListFlagsForProject(ctx context.Context, projectID int64) ([]domain.Flag, error) {
	var out []domain.Flag
	for _, flag := range f.flags {
		if flag.ProjectID == projectID {
			out = append(out, *flag)
		}
	}
	return out, nil
}

func (f *fakeStorage) DeleteFlagByKey(ctx context.Context, projectID int64, key string) error {
	k := flagKey(projectID, key)
	flag, ok := f.flags[k]
	if !ok {
		return domain.ErrNotFound
	}
	delete(f.flags, k)
	delete(f.flagValues, flag.ID)
	return nil
}

func (f *fakeStorage) GetFlagValue(ctx context.Context, flagID, environmentID int64) (*domain.FlagValue, error) {
	if byEnv, ok := f.flagValues[flagID]; ok {
		if fv, ok := byEnv[environmentID]; ok {
			return fv, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStorage) ListFlagValues(ctx context.Context, flagID int64) ([]domain.FlagValue, error) {
	var out []domain.FlagValue
	for _, fv := range f.flagValues[flagID] {
		out = append(out, *fv)
	}
	return out, nil
}

func (f *fakeStorage) UpdateFlagValue(ctx context.Context, flagID, environmentID int64, enabled *bool, rollout *int) (*domain.FlagValue, error) {
	byEnv, ok := f.flagValues[flagID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	fv, ok := byEnv[environmentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if enabled != nil {
		fv.Enabled = *enabled
	}
	if rollout != nil {
		fv.RolloutPercentage = *rollout
	}
	return fv, nil
}

func (f *fakeStorage) ToggleFlagValue(ctx context.Context, flagID, environmentID int64) (*domain.FlagValue, error) {
	byEnv, ok := f.flagValues[flagID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	fv, ok := byEnv[environmentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	fv.Enabled = !fv.Enabled
	return fv, nil
}

func (f *fakeStorage) FindEnvironmentByID(ctx context.Context, id int64) (*domain.Environment, error) {
	if env, ok := f.envsByID[id]; ok {
		return env, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStorage) FindEnvironmentByProjectAndName(ctx context.Context, projectID int64, name string) (*domain.Environment, error) {
	if env, ok := f.envsByName[flagKey(projectID, name)]; ok {
		return env, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStorage) ListEnvironmentsForProject(ctx context.Context, projectID int64) ([]domain.Environment, error) {
	var out []domain.Environment
	for _, env := range f.envsByID {
		if env.ProjectID == projectID {
			out = append(out, *env)
		}
	}
	return out, nil
}

func (f *fakeStorage) CreateEnvironment(ctx context.Context, projectID int64, name string, defaultRollout int) (*domain.Environment, error) {
	panic("unused")
}
func (f *fakeStorage) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if _, exists := f.users[username]; exists {
		return nil, domain.ErrConflict
	}
	user := &domain.User{ID: f.id(), Username: username, PasswordHash: passwordHash}
	f.users[username] = user
	f.usersByID[user.ID] = user
	return user, nil
}
func (f *fakeStorage) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}
func (f *fakeStorage) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	if u, ok := f.usersByID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}
func (f *fakeStorage) ListProjectsForUser(ctx context.Context, userID int64) ([]domain.Project, error) {
	var out []domain.Project
	for _, pid := range f.projectsForUser[userID] {
		if p, ok := f.projects[pid]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}
func (f *fakeStorage) CreateProjectWithEnvironments(ctx context.Context, ownerUserID int64, projectName string, envNames []string, apiKeyPrefix, apiKeySecretHash string) (*domain.Project, []domain.Environment, *domain.ApiKey, error) {
	project := &domain.Project{ID: f.id(), OwnerUserID: ownerUserID, Name: projectName}
	f.projects[project.ID] = project
	f.projectsForUser[ownerUserID] = append(f.projectsForUser[ownerUserID], project.ID)

	envs := make([]domain.Environment, len(envNames))
	for i, name := range envNames {
		env := &domain.Environment{ID: f.id(), ProjectID: project.ID, Name: name}
		f.addEnvironment(env)
		envs[i] = *env
	}
	apiKey := &domain.ApiKey{ID: f.id(), Kind: domain.ApiKeyKindProject, ProjectID: project.ID, Prefix: apiKeyPrefix, SecretHash: apiKeySecretHash}
	return project, envs, apiKey, nil
}
func (f *fakeStorage) SignupTransaction(ctx context.Context, username, passwordHash, projectName string, envNames []string, apiKeyPrefix, apiKeySecretHash string) (*domain.User, *domain.Project, []domain.Environment, *domain.ApiKey, error) {
	user, err := f.CreateUser(ctx, username, passwordHash)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	project, envs, apiKey, err := f.CreateProjectWithEnvironments(ctx, user.ID, projectName, envNames, apiKeyPrefix, apiKeySecretHash)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return user, project, envs, apiKey, nil
}
func (f *fakeStorage) CreateApiKey(ctx context.Context, kind domain.ApiKeyKind, projectID int64, environmentID *int64, prefix, secretHash string) (*domain.ApiKey, error) {
	panic("unused")
}
func (f *fakeStorage) FindApiKeyByHash(ctx context.Context, secretHash string) (*domain.ApiKey, error) {
	panic("unused")
}
func (f *fakeStorage) ListApiKeysForProject(ctx context.Context, projectID int64) ([]domain.ApiKey, error) {
	panic("unused")
}
func (f *fakeStorage) RunMigrations(ctx context.Context) error { panic("unused") }
func (f *fakeStorage) Close() error                            { panic("unused") }
