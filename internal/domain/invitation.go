package domain

import "time"

const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
)

type Invitation struct {
	ID        int64     `json:"id"`
	TeamID    int64     `json:"team_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	InvitedBy int64     `json:"invited_by"`
	InvitedAt time.Time `json:"invited_at"`
	Status    string    `json:"status"`
}

func (i Invitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}

// CanBeAcceptedBy reports whether email may accept the invitation.
// Acceptance is terminal, so only pending invitations qualify.
func (i Invitation) CanBeAcceptedBy(email string) bool {
	return i.IsPending() && i.Email == email
}
