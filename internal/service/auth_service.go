// Package service implements the domain services: authentication, project
// & environment provisioning, flag lifecycle, and evaluation. Each service
// is a thin struct over a domain.Storage, taking a context.Context (for
// cancellation/deadline, installed once by HTTP middleware) and a
// domain.RequestContext (principal, request id) explicitly rather than
// reading either from ambient state.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/faiscadev/flaglite/internal/apperr"
	"github.com/faiscadev/flaglite/internal/auth"
	"github.com/faiscadev/flaglite/internal/domain"
)

const maxUsernameAttempts = 5

// dummyHash is compared against on a login attempt for an unknown
// username so that branch spends comparable time to a real
// wrong-password check, so unknown-username and wrong-password both
// look the same to an outside observer.
var dummyHash, _ = auth.HashPassword("not-a-real-password-but-argon2id-shaped")

type AuthService struct {
	storage    domain.Storage
	jwtService *auth.JWTService
}

func NewAuthService(storage domain.Storage, jwtService *auth.JWTService) *AuthService {
	return &AuthService{storage: storage, jwtService: jwtService}
}

type SignupResult struct {
	User            *domain.User
	Token           string
	Project         *domain.Project
	Environments    []domain.Environment
	ApiKeyPlaintext string
	ApiKey          *domain.ApiKey
}

func (s *AuthService) Signup(ctx context.Context, username, password, projectName string) (*SignupResult, error) {
	if len(password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	if projectName == "" {
		projectName = "default"
	}
	username = normalizeUsername(username)

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	plaintext, secretHash, err := auth.GenerateApiKey(domain.ApiKeyKindProject)
	if err != nil {
		return nil, apperr.Internal("failed to generate api key", err)
	}

	candidate := username
	var user *domain.User
	var project *domain.Project
	var envs []domain.Environment
	var apiKey *domain.ApiKey

	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		if candidate == "" {
			if attempt == 0 {
				candidate = auth.GenerateUsername()
			} else {
				candidate = auth.GenerateUsernameWithSuffix()
			}
		}

		user, project, envs, apiKey, err = s.storage.SignupTransaction(
			ctx, candidate, passwordHash, projectName, domain.DefaultEnvironmentNames, prefixOf(plaintext), secretHash,
		)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, apperr.Internal("signup failed", err)
		}
		if username != "" {
			// Caller picked this username explicitly; don't silently retry
			// under a different one.
			return nil, apperr.Conflict("username already taken")
		}
		candidate = ""
	}
	if err != nil {
		return nil, apperr.Conflict("could not allocate a unique username")
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return nil, apperr.Internal("failed to generate token", err)
	}

	return &SignupResult{
		User:            user,
		Token:           token,
		Project:         project,
		Environments:    envs,
		ApiKeyPlaintext: plaintext,
		ApiKey:          apiKey,
	}, nil
}

type LoginResult struct {
	User         *domain.User
	Token        string
	Project      *domain.Project
	Environments []domain.Environment
}

// Login performs constant-time-equivalent verification: the same
// Unauthorized error and code path is returned whether the username is
// unknown or the password is wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.storage.FindUserByUsername(ctx, normalizeUsername(username))
	if errors.Is(err, domain.ErrNotFound) {
		auth.VerifyPassword(password, dummyHash)
		return nil, apperr.Unauthorized("invalid username or password")
	}
	if err != nil {
		return nil, apperr.Internal("login failed", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("invalid username or password")
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return nil, apperr.Internal("failed to generate token", err)
	}

	projects, err := s.storage.ListProjectsForUser(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal("login failed", err)
	}

	result := &LoginResult{User: user, Token: token}
	if len(projects) > 0 {
		result.Project = &projects[0]
		envs, err := s.storage.ListEnvironmentsForProject(ctx, result.Project.ID)
		if err != nil {
			return nil, apperr.Internal("login failed", err)
		}
		result.Environments = envs
	}

	return result, nil
}

func (s *AuthService) Me(ctx context.Context, rc domain.RequestContext) (*domain.User, error) {
	if !rc.Principal.IsUser() {
		return nil, apperr.Unauthorized("principal is not a user")
	}

	user, err := s.storage.FindUserByID(ctx, rc.Principal.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.Unauthorized("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}

// normalizeUsername matches usernames case-insensitively by folding them
// to a single canonical form before every storage call: trim surrounding
// whitespace, then lowercase. An empty result still means "generate one".
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func prefixOf(plaintext string) string {
	if len(plaintext) <= 12 {
		return plaintext
	}
	return plaintext[:12]
}
