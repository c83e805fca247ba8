package orgs

import "context"

type errNotFound struct{}

func (errNotFound) Error() string { return "organization not found" }

// ErrNotFound indicates the organization or membership does not exist.
var ErrNotFound = errNotFound{}

// Repo persists organizations and memberships.
type Repo interface {
	CreateOrganization(ctx context.Context, org Organization) error
	GetOrganization(ctx context.Context, orgID string) (Organization, error)
	CreateMembership(ctx context.Context, m Membership) error
	GetOwnerMembership(ctx context.Context, userID string) (Membership, error)
}
