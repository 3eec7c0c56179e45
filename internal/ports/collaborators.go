package ports

import (
	"context"
	"time"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
)

type InvitationNotice struct {
	InvitationID int64     `json:"invitation_id"`
	Email        string    `json:"email"`
	TeamID       int64     `json:"team_id"`
	TeamName     string    `json:"team_name"`
	Role         string    `json:"role"`
	InvitedBy    int64     `json:"invited_by"`
	InvitedAt    time.Time `json:"invited_at"`
}

type InvitationNotifier interface {
	NotifyInvitation(ctx context.Context, notice InvitationNotice) error
}

type BillingProvider interface {
	// CreateCheckoutSession returns the URL the caller is redirected to.
	CreateCheckoutSession(ctx context.Context, team domain.Team, priceID string) (string, error)
}
