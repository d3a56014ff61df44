package service

import (
	"context"
	"errors"

	"github.com/faiscadev/flaglite/internal/apperr"
	"github.com/faiscadev/flaglite/internal/domain"
)

// authorizeProjectAccess enforces the ownership/scope check shared by
// every project-scoped operation: a user principal must own the project;
// a project or environment key principal must match it exactly.
func authorizeProjectAccess(ctx context.Context, storage domain.Storage, rc domain.RequestContext, projectID int64) error {
	switch rc.Principal.Kind {
	case domain.PrincipalUser:
		project, err := storage.FindProjectByID(ctx, projectID)
		if errors.Is(err, domain.ErrNotFound) {
			return apperr.NotFound("project not found")
		}
		if err != nil {
			return apperr.Internal("failed to load project", err)
		}
		if project.OwnerUserID != rc.Principal.UserID {
			return apperr.Forbidden("user does not own this project")
		}
		return nil

	case domain.PrincipalProjectKey, domain.PrincipalEnvKey:
		if rc.Principal.ProjectID != projectID {
			return apperr.Forbidden("api key does not match this project")
		}
		return nil

	default:
		return apperr.Forbidden("unrecognized principal")
	}
}
