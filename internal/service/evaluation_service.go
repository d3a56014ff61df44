package service

import (
	"context"
	"errors"

	"github.com/faiscadev/flaglite/internal/apperr"
	"github.com/faiscadev/flaglite/internal/bucketing"
	"github.com/faiscadev/flaglite/internal/domain"
)

// EvaluationService is the SDK hot path: it does exactly two indexed
// reads and one hash, never mutates state, and must be safe under high
// concurrency.
type EvaluationService struct {
	storage domain.Storage
}

func NewEvaluationService(storage domain.Storage) *EvaluationService {
	return &EvaluationService{storage: storage}
}

type EvaluationResult struct {
	Key     string
	Enabled bool
}

// Evaluate requires an environment-key principal: the environment it
// resolves to during authentication fixes (project_id, environment_id)
// for this call.
func (s *EvaluationService) Evaluate(ctx context.Context, rc domain.RequestContext, flagKey, userID string) (*EvaluationResult, error) {
	if !rc.Principal.IsEnvKey() {
		return nil, apperr.Forbidden("evaluation requires an environment key")
	}

	flag, err := s.storage.FindFlagByKey(ctx, rc.Principal.ProjectID, flagKey)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound("flag not found")
	}
	if err != nil {
		return nil, apperr.Internal("evaluation failed", err)
	}

	fv, err := s.storage.GetFlagValue(ctx, flag.ID, rc.Principal.EnvironmentID)
	if errors.Is(err, domain.ErrNotFound) {
		// The storage layer guarantees this row exists for every
		// environment of the flag's project; treat a missing row the
		// same as the flag not existing, per fail-closed semantics.
		return nil, apperr.NotFound("flag not found")
	}
	if err != nil {
		return nil, apperr.Internal("evaluation failed", err)
	}

	enabled := evaluateFlagValue(flagKey, userID, fv)
	return &EvaluationResult{Key: flagKey, Enabled: enabled}, nil
}

func evaluateFlagValue(flagKey, userID string, fv *domain.FlagValue) bool {
	switch {
	case !fv.Enabled:
		return false
	case fv.RolloutPercentage == 100:
		return true
	case userID == "":
		return false
	default:
		return bucketing.EnabledForUser(flagKey, userID, fv.RolloutPercentage)
	}
}
