// Package domain holds the entities and the storage port (the interface
// that both storage adapters implement) shared by every domain service.
package domain

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time
}

func (User) TableName() string { return "users" }

type Project struct {
	ID          int64  `gorm:"primaryKey"`
	OwnerUserID int64  `gorm:"index;not null"`
	Name        string `gorm:"not null"`
	CreatedAt   time.Time
}

func (Project) TableName() string { return "projects" }

type Environment struct {
	ID        int64  `gorm:"primaryKey"`
	ProjectID int64  `gorm:"uniqueIndex:idx_env_project_name;not null"`
	Name      string `gorm:"uniqueIndex:idx_env_project_name;not null"`
	CreatedAt time.Time
}

func (Environment) TableName() string { return "environments" }

// DefaultEnvironmentNames are created automatically at signup, in order.
var DefaultEnvironmentNames = []string{"development", "staging", "production"}

type Flag struct {
	ID          int64  `gorm:"primaryKey"`
	ProjectID   int64  `gorm:"uniqueIndex:idx_flag_project_key;not null"`
	Key         string `gorm:"uniqueIndex:idx_flag_project_key;not null"`
	Name        string `gorm:"not null"`
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Flag) TableName() string { return "flags" }

type FlagValue struct {
	FlagID            int64 `gorm:"primaryKey"`
	EnvironmentID     int64 `gorm:"primaryKey"`
	Enabled           bool
	RolloutPercentage int
	UpdatedAt         time.Time
}

func (FlagValue) TableName() string { return "flag_values" }

// DefaultRolloutPercentage is the rollout a FlagValue is created with: a
// flag starts disabled, so the rollout value is irrelevant until it is
// enabled, and 100 means "fully on" once it is.
const DefaultRolloutPercentage = 100

type ApiKeyKind string

const (
	ApiKeyKindProject     ApiKeyKind = "project"
	ApiKeyKindEnvironment ApiKeyKind = "environment"
)

type ApiKey struct {
	ID            int64      `gorm:"primaryKey"`
	SecretHash    string     `gorm:"uniqueIndex;not null"`
	Prefix        string     `gorm:"not null"`
	Kind          ApiKeyKind `gorm:"not null"`
	ProjectID     int64      `gorm:"index;not null"`
	EnvironmentID *int64
	CreatedAt     time.Time
}

func (ApiKey) TableName() string { return "api_keys" }

// FlagWithValues is the join shape returned by ListFlags/GetFlag: a flag
// together with its per-environment values, keyed by environment name so
// the HTTP layer can render the response shape directly.
type FlagWithValues struct {
	Flag
	Values map[string]FlagValue // keyed by environment name
}
