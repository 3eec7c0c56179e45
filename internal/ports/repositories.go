package ports

import (
	"context"
	"time"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
)

type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
}

type UserRepository interface {
	Create(ctx context.Context, input NewUser) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	// FindByEmail returns the first non-deleted user holding email.
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateProfile(ctx context.Context, id int64, name, email string) error
	MarkDeleted(ctx context.Context, id int64, at time.Time) error
}

// SubscriptionUpdate replaces the subscription fields of a team. A nil
// StripeCustomerID leaves the stored customer id untouched.
type SubscriptionUpdate struct {
	StripeCustomerID     *string
	StripeSubscriptionID *string
	StripeProductID      *string
	PlanName             *string
	SubscriptionStatus   string
}

type TeamRepository interface {
	Create(ctx context.Context, name string) (domain.Team, error)
	GetByID(ctx context.Context, id int64) (domain.Team, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (domain.Team, error)
	Rename(ctx context.Context, id int64, name string) error
	UpdateSubscription(ctx context.Context, id int64, update SubscriptionUpdate) error
}

type NewTeamMember struct {
	UserID int64
	TeamID int64
	Role   string
}

type TeamMemberRepository interface {
	Create(ctx context.Context, input NewTeamMember) (domain.TeamMember, error)
	// FindByUser returns the first membership found for the user.
	FindByUser(ctx context.Context, userID int64) (domain.TeamMember, error)
	ExistsForUserInTeam(ctx context.Context, userID, teamID int64) (bool, error)
	ListByTeam(ctx context.Context, teamID int64) ([]domain.TeamMember, error)
	// Remove deletes the row keyed by (memberID, teamID); rows of other teams are untouched.
	Remove(ctx context.Context, memberID, teamID int64) error
}

type NewInvitation struct {
	TeamID    int64
	Email     string
	Role      string
	InvitedBy int64
}

type InvitationRepository interface {
	Create(ctx context.Context, input NewInvitation) (domain.Invitation, error)
	GetByID(ctx context.Context, id int64) (domain.Invitation, error)
	FindPending(ctx context.Context, id int64, email string) (domain.Invitation, error)
	ExistsPending(ctx context.Context, email string, teamID int64) (bool, error)
	ListPendingByTeam(ctx context.Context, teamID int64) ([]domain.Invitation, error)
	// MarkAccepted flips a pending invitation; domain.ErrConflict when it is no longer pending.
	MarkAccepted(ctx context.Context, id int64) error
	// Reopen moves an accepted invitation back to pending; domain.ErrConflict when it is not accepted.
	Reopen(ctx context.Context, id int64) error
}

type ActivityLogRepository interface {
	Append(ctx context.Context, entry domain.ActivityEntry) error
	ListByUser(ctx context.Context, userID int64) ([]domain.ActivityLog, error)
}

type CredentialKeyRepository interface {
	Put(ctx context.Context, key domain.CredentialKey) (domain.CredentialKey, error)
	Get(ctx context.Context, value string) (domain.CredentialKey, error)
	Delete(ctx context.Context, value string) error
	ListByUser(ctx context.Context, userID int64, kind domain.CredentialKind) ([]domain.CredentialKey, error)
}

// UniqueIndex is a lookup table whose rows exist only to make a value unique.
type UniqueIndex interface {
	// Claim fails with domain.ErrConflict when value is already claimed.
	Claim(ctx context.Context, value string, ownerID int64) error
	Release(ctx context.Context, value string) error
}
