// Package postgres is the networked storage adapter: a relational server
// accessed through database/sql and lib/pq, with native boolean and
// timestamptz columns (no normalization layer, unlike the embedded
// adapter's integer-boolean schema).
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/faiscadev/flaglite/internal/domain"
	"github.com/faiscadev/flaglite/internal/storage"
	"github.com/lib/pq"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, dsn string) (storage.Storage, error) {
		return Open(ctx, "postgres:"+dsn)
	})
}

type Adapter struct {
	db *sql.DB
}

func Open(ctx context.Context, dsn string) (*Adapter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	a := &Adapter{db: db}
	if err := a.RunMigrations(ctx); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *Adapter) RunMigrations(ctx context.Context) error {
	return runMigrations(a.db)
}

func (a *Adapter) Close() error {
	return a.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// --- Users ---

func (a *Adapter) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	u := &domain.User{Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	err := a.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES ($1, $2, $3) RETURNING id`,
		u.Username, u.PasswordHash, u.CreatedAt,
	).Scan(&u.ID)
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (a *Adapter) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := a.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (a *Adapter) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := a.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
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
	err := a.db.QueryRowContext(ctx,
		`SELECT id, owner_user_id, name, created_at FROM projects WHERE id = $1`, id,
	).Scan(&p.ID, &p.OwnerUserID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *Adapter) ListProjectsForUser(ctx context.Context, userID int64) ([]domain.Project, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, owner_user_id, name, created_at FROM projects WHERE owner_user_id = $1 ORDER BY id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.OwnerUserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (a *Adapter) CreateProjectWithEnvironments(ctx context.Context, ownerUserID int64, projectName string, envNames []string, apiKeyPrefix, apiKeySecretHash string) (*domain.Project, []domain.Environment, *domain.ApiKey, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	project := domain.Project{OwnerUserID: ownerUserID, Name: projectName, CreatedAt: now}
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO projects (owner_user_id, name, created_at) VALUES ($1, $2, $3) RETURNING id`,
		project.OwnerUserID, project.Name, project.CreatedAt,
	).Scan(&project.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, nil, nil, domain.ErrConflict
		}
		return nil, nil, nil, err
	}

	var envs []domain.Environment
	for _, name := range envNames {
		env := domain.Environment{ProjectID: project.ID, Name: name, CreatedAt: now}
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO environments (project_id, name, created_at) VALUES ($1, $2, $3) RETURNING id`,
			env.ProjectID, env.Name, env.CreatedAt,
		).Scan(&env.ID); err != nil {
			return nil, nil, nil, err
		}
		envs = append(envs, env)
	}

	key := domain.ApiKey{SecretHash: apiKeySecretHash, Prefix: apiKeyPrefix, Kind: domain.ApiKeyKindProject, ProjectID: project.ID, CreatedAt: now}
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO api_keys (secret_hash, prefix, kind, project_id, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		key.SecretHash, key.Prefix, key.Kind, key.ProjectID, key.CreatedAt,
	).Scan(&key.ID); err != nil {
		return nil, nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, nil, err
	}

	return &project, envs, &key, nil
}

// --- Environments ---

func (a *Adapter) CreateEnvironment(ctx context.Context, projectID int64, name string, defaultRollout int) (*domain.Environment, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	env := domain.Environment{ProjectID: projectID, Name: name, CreatedAt: now}
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO environments (project_id, name, created_at) VALUES ($1, $2, $3) RETURNING id`,
		env.ProjectID, env.Name, env.CreatedAt,
	).Scan(&env.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `SELECT id FROM flags WHERE project_id = $1`, projectID)
	if err != nil {
		return nil, err
	}
	var flagIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		flagIDs = append(flagIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, flagID := range flagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO flag_values (flag_id, environment_id, enabled, rollout_percentage, updated_at) VALUES ($1, $2, $3, $4, $5)`,
			flagID, env.ID, false, defaultRollout, now,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &env, nil
}

func (a *Adapter) FindEnvironmentByID(ctx context.Context, id int64) (*domain.Environment, error) {
	var e domain.Environment
	err := a.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, created_at FROM environments WHERE id = $1`, id,
	).Scan(&e.ID, &e.ProjectID, &e.Name, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (a *Adapter) FindEnvironmentByProjectAndName(ctx context.Context, projectID int64, name string) (*domain.Environment, error) {
	var e domain.Environment
	err := a.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, created_at FROM environments WHERE project_id = $1 AND name = $2`, projectID, name,
	).Scan(&e.ID, &e.ProjectID, &e.Name, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (a *Adapter) ListEnvironmentsForProject(ctx context.Context, projectID int64) ([]domain.Environment, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, project_id, name, created_at FROM environments WHERE project_id = $1 ORDER BY id`, projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Environment
	for rows.Next() {
		var e domain.Environment
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Name, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- Flags ---

func (a *Adapter) CreateFlagWithDefaultValues(ctx context.Context, projectID int64, key, name, description string, defaultRollout int) (*domain.Flag, []domain.FlagValue, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	flag := domain.Flag{ProjectID: projectID, Key: key, Name: name, Description: description, CreatedAt: now, UpdatedAt: now}
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO flags (project_id, key, name, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		flag.ProjectID, flag.Key, flag.Name, flag.Description, flag.CreatedAt, flag.UpdatedAt,
	).Scan(&flag.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, nil, domain.ErrConflict
		}
		return nil, nil, err
	}

	rows, err := tx.QueryContext(ctx, `SELECT id FROM environments WHERE project_id = $1`, projectID)
	if err != nil {
		return nil, nil, err
	}
	var envIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, nil, err
		}
		envIDs = append(envIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var values []domain.FlagValue
	for _, envID := range envIDs {
		fv := domain.FlagValue{FlagID: flag.ID, EnvironmentID: envID, Enabled: false, RolloutPercentage: defaultRollout, UpdatedAt: now}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO flag_values (flag_id, environment_id, enabled, rollout_percentage, updated_at) VALUES ($1, $2, $3, $4, $5)`,
			fv.FlagID, fv.EnvironmentID, fv.Enabled, fv.RolloutPercentage, fv.UpdatedAt,
		); err != nil {
			return nil, nil, err
		}
		values = append(values, fv)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return &flag, values, nil
}

func (a *Adapter) FindFlagByKey(ctx context.Context, projectID int64, key string) (*domain.Flag, error) {
	var f domain.Flag
	err := a.db.QueryRowContext(ctx,
		`SELECT id, project_id, key, name, description, created_at, updated_at FROM flags WHERE project_id = $1 AND key = $2`,
		projectID, key,
	).Scan(&f.ID, &f.ProjectID, &f.Key, &f.Name, &f.Description, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (a *Adapter) ListFlagsForProject(ctx context.Context, projectID int64) ([]domain.Flag, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, project_id, key, name, description, created_at, updated_at FROM flags WHERE project_id = $1 ORDER BY id`, projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Flag
	for rows.Next() {
		var f domain.Flag
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Key, &f.Name, &f.Description, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (a *Adapter) DeleteFlagByKey(ctx context.Context, projectID int64, key string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM flags WHERE project_id = $1 AND key = $2`, projectID, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --- FlagValues ---

func (a *Adapter) GetFlagValue(ctx context.Context, flagID, environmentID int64) (*domain.FlagValue, error) {
	var fv domain.FlagValue
	err := a.db.QueryRowContext(ctx,
		`SELECT flag_id, environment_id, enabled, rollout_percentage, updated_at FROM flag_values WHERE flag_id = $1 AND environment_id = $2`,
		flagID, environmentID,
	).Scan(&fv.FlagID, &fv.EnvironmentID, &fv.Enabled, &fv.RolloutPercentage, &fv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fv, nil
}

func (a *Adapter) ListFlagValues(ctx context.Context, flagID int64) ([]domain.FlagValue, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT flag_id, environment_id, enabled, rollout_percentage, updated_at FROM flag_values WHERE flag_id = $1`, flagID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FlagValue
	for rows.Next() {
		var fv domain.FlagValue
		if err := rows.Scan(&fv.FlagID, &fv.EnvironmentID, &fv.Enabled, &fv.RolloutPercentage, &fv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, fv)
	}
	return out, rows.Err()
}

func (a *Adapter) UpdateFlagValue(ctx context.Context, flagID, environmentID int64, enabled *bool, rollout *int) (*domain.FlagValue, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var fv domain.FlagValue
	err = tx.QueryRowContext(ctx,
		`SELECT flag_id, environment_id, enabled, rollout_percentage, updated_at FROM flag_values WHERE flag_id = $1 AND environment_id = $2 FOR UPDATE`,
		flagID, environmentID,
	).Scan(&fv.FlagID, &fv.EnvironmentID, &fv.Enabled, &fv.RolloutPercentage, &fv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if enabled != nil {
		fv.Enabled = *enabled
	}
	if rollout != nil {
		fv.RolloutPercentage = *rollout
	}
	fv.UpdatedAt = time.Now().UTC()

	if _, err := tx.ExecContext(ctx,
		`UPDATE flag_values SET enabled = $1, rollout_percentage = $2, updated_at = $3 WHERE flag_id = $4 AND environment_id = $5`,
		fv.Enabled, fv.RolloutPercentage, fv.UpdatedAt, flagID, environmentID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &fv, nil
}

func (a *Adapter) ToggleFlagValue(ctx context.Context, flagID, environmentID int64) (*domain.FlagValue, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var fv domain.FlagValue
	err = tx.QueryRowContext(ctx,
		`SELECT flag_id, environment_id, enabled, rollout_percentage, updated_at FROM flag_values WHERE flag_id = $1 AND environment_id = $2 FOR UPDATE`,
		flagID, environmentID,
	).Scan(&fv.FlagID, &fv.EnvironmentID, &fv.Enabled, &fv.RolloutPercentage, &fv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	fv.Enabled = !fv.Enabled
	fv.UpdatedAt = time.Now().UTC()

	if _, err := tx.ExecContext(ctx,
		`UPDATE flag_values SET enabled = $1, updated_at = $2 WHERE flag_id = $3 AND environment_id = $4`,
		fv.Enabled, fv.UpdatedAt, flagID, environmentID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &fv, nil
}

// --- Signup ---

func (a *Adapter) SignupTransaction(ctx context.Context, username, passwordHash, projectName string, envNames []string, apiKeyPrefix, apiKeySecretHash string) (*domain.User, *domain.Project, []domain.Environment, *domain.ApiKey, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	user := domain.User{Username: username, PasswordHash: passwordHash, CreatedAt: now}
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES ($1, $2, $3) RETURNING id`,
		user.Username, user.PasswordHash, user.CreatedAt,
	).Scan(&user.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, nil, nil, nil, domain.ErrConflict
		}
		return nil, nil, nil, nil, err
	}

	project := domain.Project{OwnerUserID: user.ID, Name: projectName, CreatedAt: now}
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO projects (owner_user_id, name, created_at) VALUES ($1, $2, $3) RETURNING id`,
		project.OwnerUserID, project.Name, project.CreatedAt,
	).Scan(&project.ID); err != nil {
		return nil, nil, nil, nil, err
	}

	var envs []domain.Environment
	for _, name := range envNames {
		env := domain.Environment{ProjectID: project.ID, Name: name, CreatedAt: now}
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO environments (project_id, name, created_at) VALUES ($1, $2, $3) RETURNING id`,
			env.ProjectID, env.Name, env.CreatedAt,
		).Scan(&env.ID); err != nil {
			return nil, nil, nil, nil, err
		}
		envs = append(envs, env)
	}

	key := domain.ApiKey{SecretHash: apiKeySecretHash, Prefix: apiKeyPrefix, Kind: domain.ApiKeyKindProject, ProjectID: project.ID, CreatedAt: now}
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO api_keys (secret_hash, prefix, kind, project_id, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		key.SecretHash, key.Prefix, key.Kind, key.ProjectID, key.CreatedAt,
	).Scan(&key.ID); err != nil {
		return nil, nil, nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, nil, nil, err
	}

	return &user, &project, envs, &key, nil
}

// --- ApiKeys ---

func (a *Adapter) CreateApiKey(ctx context.Context, kind domain.ApiKeyKind, projectID int64, environmentID *int64, prefix, secretHash string) (*domain.ApiKey, error) {
	k := &domain.ApiKey{SecretHash: secretHash, Prefix: prefix, Kind: kind, ProjectID: projectID, EnvironmentID: environmentID, CreatedAt: time.Now().UTC()}
	err := a.db.QueryRowContext(ctx,
		`INSERT INTO api_keys (secret_hash, prefix, kind, project_id, environment_id, created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		k.SecretHash, k.Prefix, k.Kind, k.ProjectID, k.EnvironmentID, k.CreatedAt,
	).Scan(&k.ID)
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return k, nil
}

func (a *Adapter) FindApiKeyByHash(ctx context.Context, secretHash string) (*domain.ApiKey, error) {
	var k domain.ApiKey
	err := a.db.QueryRowContext(ctx,
		`SELECT id, secret_hash, prefix, kind, project_id, environment_id, created_at FROM api_keys WHERE secret_hash = $1`, secretHash,
	).Scan(&k.ID, &k.SecretHash, &k.Prefix, &k.Kind, &k.ProjectID, &k.EnvironmentID, &k.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (a *Adapter) ListApiKeysForProject(ctx context.Context, projectID int64) ([]domain.ApiKey, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, secret_hash, prefix, kind, project_id, environment_id, created_at FROM api_keys WHERE project_id = $1 ORDER BY id`, projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ApiKey
	for rows.Next() {
		var k domain.ApiKey
		if err := rows.Scan(&k.ID, &k.SecretHash, &k.Prefix, &k.Kind, &k.ProjectID, &k.EnvironmentID, &k.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
