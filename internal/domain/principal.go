package domain

// PrincipalKind distinguishes which branch of authentication resolution
// produced the principal attached to a request.
type PrincipalKind string

const (
	PrincipalUser        PrincipalKind = "user"
	PrincipalProjectKey  PrincipalKind = "project_key"
	PrincipalEnvKey      PrincipalKind = "environment_key"
)

// Principal is the authenticated identity attached to a request context.
// Exactly one of the three shapes is populated, selected by Kind.
type Principal struct {
	Kind PrincipalKind

	UserID int64 // PrincipalUser

	ProjectID int64 // PrincipalProjectKey, PrincipalEnvKey

	EnvironmentID int64 // PrincipalEnvKey
}

func (p Principal) IsUser() bool       { return p.Kind == PrincipalUser }
func (p Principal) IsProjectKey() bool { return p.Kind == PrincipalProjectKey }
func (p Principal) IsEnvKey() bool     { return p.Kind == PrincipalEnvKey }
