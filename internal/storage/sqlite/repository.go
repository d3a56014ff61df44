// Package sqlite is the embedded storage adapter: a single-file,
// single-writer SQLite database accessed through GORM and the pure-Go
// modernc.org/sqlite driver (no cgo). It registers itself with the
// storage factory under the "sqlite" scheme.
package sqlite

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/faiscadev/flaglite/internal/domain"
	"github.com/faiscadev/flaglite/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "modernc.org/sqlite"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, dsn string) (storage.Storage, error) {
		return Open(ctx, dsn)
	})
}

type Adapter struct {
	db *gorm.DB
}

// Open opens (creating if absent) the SQLite file at dsn and runs
// migrations. dsn has already had the "sqlite:" scheme prefix stripped by
// the factory.
func Open(ctx context.Context, dsn string) (*Adapter, error) {
	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// modernc.org/sqlite leaves foreign-key enforcement off by default per
	// connection; without this, ON DELETE CASCADE in the schema is inert
	// and DeleteFlagByKey would orphan flag_values rows instead of
	// cascading. Pinning the pool to a single connection means the pragma
	// only has to be set once and stays in effect for every query, since
	// this is a single-writer database anyway.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}

	a := &Adapter{db: db}
	if err := runMigrations(ctx, db); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *Adapter) RunMigrations(ctx context.Context) error {
	return runMigrations(ctx, a.db)
}

func (a *Adapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- Users ---

func (a *Adapter) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	u := &domain.User{Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	if err := a.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return u, nil
}

func (a *Adapter) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := a.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (a *Adapter) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := a.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// --- Projects ---

func (a *Adapter) FindProjectByID(ctx context.Context, id int64) (*domain.Project, error) {
	var p domain.Project
	err := a.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *Adapter) ListProjectsForUser(ctx context.Context, userID int64) ([]domain.Project, error) {
	var ps []domain.Project
	if err := a.db.WithContext(ctx).Where("owner_user_id = ?", userID).Order("id").Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

func (a *Adapter) CreateProjectWithEnvironments(ctx context.Context, ownerUserID int64, projectName string, envNames []string, apiKeyPrefix, apiKeySecretHash string) (*domain.Project, []domain.Environment, *domain.ApiKey, error) {
	var project domain.Project
	var envs []domain.Environment
	var key domain.ApiKey

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		project = domain.Project{OwnerUserID: ownerUserID, Name: projectName, CreatedAt: now}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		for _, name := range envNames {
			env := domain.Environment{ProjectID: project.ID, Name: name, CreatedAt: now}
			if err := tx.Create(&env).Error; err != nil {
				return err
			}
			envs = append(envs, env)
		}

		key = domain.ApiKey{
			SecretHash: apiKeySecretHash,
			Prefix:     apiKeyPrefix,
			Kind:       domain.ApiKeyKindProject,
			ProjectID:  project.ID,
			CreatedAt:  now,
		}
		return tx.Create(&key).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, nil, domain.ErrConflict
		}
		return nil, nil, nil, err
	}

	return &project, envs, &key, nil
}

// --- Environments ---

func (a *Adapter) CreateEnvironment(ctx context.Context, projectID int64, name string, defaultRollout int) (*domain.Environment, error) {
	var env domain.Environment
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		env = domain.Environment{ProjectID: projectID, Name: name, CreatedAt: now}
		if err := tx.Create(&env).Error; err != nil {
			return err
		}

		var flags []domain.Flag
		if err := tx.Where("project_id = ?", projectID).Find(&flags).Error; err != nil {
			return err
		}
		for _, flag := range flags {
			fv := domain.FlagValue{FlagID: flag.ID, EnvironmentID: env.ID, Enabled: false, RolloutPercentage: defaultRollout, UpdatedAt: now}
			if err := tx.Create(&fv).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return &env, nil
}

func (a *Adapter) FindEnvironmentByID(ctx context.Context, id int64) (*domain.Environment, error) {
	var e domain.Environment
	err := a.db.WithContext(ctx).First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (a *Adapter) FindEnvironmentByProjectAndName(ctx context.Context, projectID int64, name string) (*domain.Environment, error) {
	var e domain.Environment
	err := a.db.WithContext(ctx).Where("project_id = ? AND name = ?", projectID, name).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (a *Adapter) ListEnvironmentsForProject(ctx context.Context, projectID int64) ([]domain.Environment, error) {
	var envs []domain.Environment
	if err := a.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id").Find(&envs).Error; err != nil {
		return nil, err
	}
	return envs, nil
}

// --- Flags ---

func (a *Adapter) CreateFlagWithDefaultValues(ctx context.Context, projectID int64, key, name, description string, defaultRollout int) (*domain.Flag, []domain.FlagValue, error) {
	var flag domain.Flag
	var values []domain.FlagValue

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		flag = domain.Flag{ProjectID: projectID, Key: key, Name: name, Description: description, CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(&flag).Error; err != nil {
			return err
		}

		var envs []domain.Environment
		if err := tx.Where("project_id = ?", projectID).Find(&envs).Error; err != nil {
			return err
		}

		for _, env := range envs {
			fv := domain.FlagValue{FlagID: flag.ID, EnvironmentID: env.ID, Enabled: false, RolloutPercentage: defaultRollout, UpdatedAt: now}
			if err := tx.Create(&fv).Error; err != nil {
				return err
			}
			values = append(values, fv)
		}

		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, domain.ErrConflict
		}
		return nil, nil, err
	}

	return &flag, values, nil
}

func (a *Adapter) FindFlagByKey(ctx context.Context, projectID int64, key string) (*domain.Flag, error) {
	var f domain.Flag
	err := a.db.WithContext(ctx).Where("project_id = ? AND key = ?", projectID, key).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (a *Adapter) ListFlagsForProject(ctx context.Context, projectID int64) ([]domain.Flag, error) {
	var flags []domain.Flag
	if err := a.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id").Find(&flags).Error; err != nil {
		return nil, err
	}
	return flags, nil
}

func (a *Adapter) DeleteFlagByKey(ctx context.Context, projectID int64, key string) error {
	flag, err := a.FindFlagByKey(ctx, projectID, key)
	if err != nil {
		return err
	}
	return a.db.WithContext(ctx).Delete(&domain.Flag{}, flag.ID).Error
}

// --- FlagValues ---

func (a *Adapter) GetFlagValue(ctx context.Context, flagID, environmentID int64) (*domain.FlagValue, error) {
	var fv domain.FlagValue
	err := a.db.WithContext(ctx).Where("flag_id = ? AND environment_id = ?", flagID, environmentID).First(&fv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fv, nil
}

func (a *Adapter) ListFlagValues(ctx context.Context, flagID int64) ([]domain.FlagValue, error) {
	var values []domain.FlagValue
	if err := a.db.WithContext(ctx).Where("flag_id = ?", flagID).Find(&values).Error; err != nil {
		return nil, err
	}
	return values, nil
}

func (a *Adapter) UpdateFlagValue(ctx context.Context, flagID, environmentID int64, enabled *bool, rollout *int) (*domain.FlagValue, error) {
	var result *domain.FlagValue
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fv domain.FlagValue
		err := tx.Where("flag_id = ? AND environment_id = ?", flagID, environmentID).First(&fv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		if enabled != nil {
			fv.Enabled = *enabled
		}
		if rollout != nil {
			fv.RolloutPercentage = *rollout
		}
		fv.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&fv).Error; err != nil {
			return err
		}
		result = &fv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (a *Adapter) ToggleFlagValue(ctx context.Context, flagID, environmentID int64) (*domain.FlagValue, error) {
	var result *domain.FlagValue
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fv domain.FlagValue
		err := tx.Where("flag_id = ? AND environment_id = ?", flagID, environmentID).First(&fv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		fv.Enabled = !fv.Enabled
		fv.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&fv).Error; err != nil {
			return err
		}
		result = &fv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// --- Signup ---

func (a *Adapter) SignupTransaction(ctx context.Context, username, passwordHash, projectName string, envNames []string, apiKeyPrefix, apiKeySecretHash string) (*domain.User, *domain.Project, []domain.Environment, *domain.ApiKey, error) {
	var user domain.User
	var project domain.Project
	var envs []domain.Environment
	var key domain.ApiKey

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		user = domain.User{Username: username, PasswordHash: passwordHash, CreatedAt: now}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		project = domain.Project{OwnerUserID: user.ID, Name: projectName, CreatedAt: now}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		for _, name := range envNames {
			env := domain.Environment{ProjectID: project.ID, Name: name, CreatedAt: now}
			if err := tx.Create(&env).Error; err != nil {
				return err
			}
			envs = append(envs, env)
		}

		key = domain.ApiKey{
			SecretHash: apiKeySecretHash,
			Prefix:     apiKeyPrefix,
			Kind:       domain.ApiKeyKindProject,
			ProjectID:  project.ID,
			CreatedAt:  now,
		}
		return tx.Create(&key).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, nil, nil, domain.ErrConflict
		}
		return nil, nil, nil, nil, err
	}

	return &user, &project, envs, &key, nil
}

// --- ApiKeys ---

func (a *Adapter) CreateApiKey(ctx context.Context, kind domain.ApiKeyKind, projectID int64, environmentID *int64, prefix, secretHash string) (*domain.ApiKey, error) {
	k := &domain.ApiKey{
		SecretHash:    secretHash,
		Prefix:        prefix,
		Kind:          kind,
		ProjectID:     projectID,
		EnvironmentID: environmentID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := a.db.WithContext(ctx).Create(k).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return k, nil
}

func (a *Adapter) FindApiKeyByHash(ctx context.Context, secretHash string) (*domain.ApiKey, error) {
	var k domain.ApiKey
	err := a.db.WithContext(ctx).Where("secret_hash = ?", secretHash).First(&k).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (a *Adapter) ListApiKeysForProject(ctx context.Context, projectID int64) ([]domain.ApiKey, error) {
	var keys []domain.ApiKey
	if err := a.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id").Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
