package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"testboard/internal/domain"
)

// accessGate centralizes the role and ownership checks that guard every
// operation.
type accessGate struct {
	users domain.UserRepository
	tests domain.TestRepository
}

// requireRole loads the caller and fails with Forbidden unless their stored
// role matches.
func (g *accessGate) requireRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	user, err := g.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to load user")
	}
	if user == nil || user.Role != role {
		return nil, domain.NewForbiddenError("no permission").WithKey("no_permission")
	}
	return user, nil
}

// requireOwnership verifies the caller is a creator who owns the test. An
// ownership mismatch reports NotFound rather than Forbidden so the response
// does not reveal whether the test exists.
func (g *accessGate) requireOwnership(ctx context.Context, userID, testID string) (*domain.Test, error) {
	if _, err := g.requireRole(ctx, userID, domain.RoleCreator); err != nil {
		return nil, err
	}
	test, err := g.tests.GetTestByID(ctx, testID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to load test")
	}
	if test == nil || test.CreatorID != userID {
		return nil, domain.NewNotFoundError("test not found").WithKey("test_not_found")
	}
	return test, nil
}

// mapRepositoryError classifies a storage failure: connectivity problems
// surface as ServiceUnavailable, anything else as an internal error.
func mapRepositoryError(err error, message string) error {
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return domain.NewServiceUnavailableError("storage unavailable", err)
	}
	return domain.NewInternalError(message, err)
}
