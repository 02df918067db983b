package roster

import "context"

// Provider resolves the active roster of an organization.
type Provider interface {
	ListActiveUsers(ctx context.Context, orgID string) ([]User, error)
}

// TargetProvider resolves per-user daily hour targets. Implementations
// return DefaultTargetHours when nothing is configured.
type TargetProvider interface {
	GetUserTarget(ctx context.Context, userID string) (Target, error)
}
