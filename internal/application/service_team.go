package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
	"golang.org/x/sync/errgroup"
)

// InviteMember creates a pending invitation on the caller's team. The scan
// checks give friendly errors; the pending-invitation index claim is what
// actually keeps two concurrent invites from both succeeding.
func (s *Service) InviteMember(ctx context.Context, user domain.User, in InviteMemberInput) (domain.Invitation, error) {
	member, err := s.requireMembership(ctx, user.ID)
	if err != nil {
		return domain.Invitation{}, err
	}
	teamID := member.TeamID

	invitee, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		exists, err := s.members.ExistsForUserInTeam(ctx, invitee.ID, teamID)
		if err != nil {
			return domain.Invitation{}, fmt.Errorf("check membership: %w", err)
		}
		if exists {
			return domain.Invitation{}, domain.ErrAlreadyMember
		}
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Invitation{}, fmt.Errorf("find invitee: %w", err)
	}

	pending, err := s.invitations.ExistsPending(ctx, in.Email, teamID)
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("check pending invitations: %w", err)
	}
	if pending {
		return domain.Invitation{}, domain.ErrAlreadyInvited
	}
	indexValue := pendingInvitationValue(teamID, in.Email)
	if err := s.pendingInvitations.Claim(ctx, indexValue, user.ID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Invitation{}, domain.ErrAlreadyInvited
		}
		return domain.Invitation{}, fmt.Errorf("claim pending invitation: %w", err)
	}

	invitation, err := s.invitations.Create(ctx, ports.NewInvitation{
		TeamID:    teamID,
		Email:     in.Email,
		Role:      in.Role,
		InvitedBy: user.ID,
	})
	if err != nil {
		_ = s.pendingInvitations.Release(context.WithoutCancel(ctx), indexValue)
		return domain.Invitation{}, fmt.Errorf("create invitation: %w", err)
	}
	if err := s.logActivity(ctx, &teamID, user.ID, domain.ActivityInviteTeamMember); err != nil {
		return domain.Invitation{}, err
	}

	s.notifyInvitation(ctx, invitation)
	return invitation, nil
}

// notifyInvitation never fails the invite; delivery problems are logged.
func (s *Service) notifyInvitation(ctx context.Context, invitation domain.Invitation) {
	notice := ports.InvitationNotice{
		InvitationID: invitation.ID,
		Email:        invitation.Email,
		TeamID:       invitation.TeamID,
		Role:         invitation.Role,
		InvitedBy:    invitation.InvitedBy,
		InvitedAt:    invitation.InvitedAt,
	}
	team, err := s.teams.GetByID(ctx, invitation.TeamID)
	if err == nil {
		notice.TeamName = team.Name
	}
	if err := s.notifier.NotifyInvitation(ctx, notice); err != nil {
		s.logger.WarnContext(ctx, "invitation notice not delivered",
			"operation", "invite_member",
			"outcome", "degraded",
			"invitation_id", invitation.ID,
			"error", err,
		)
	}
}

// RemoveMember deletes the membership row keyed by memberID on the caller's
// team only.
func (s *Service) RemoveMember(ctx context.Context, user domain.User, in RemoveMemberInput) error {
	member, err := s.requireMembership(ctx, user.ID)
	if err != nil {
		return err
	}
	memberID, err := in.MemberID.Int64()
	if err != nil {
		return fmt.Errorf("%w: memberId", domain.ErrInvalidInput)
	}
	if err := s.members.Remove(ctx, memberID, member.TeamID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return s.logActivity(ctx, &member.TeamID, user.ID, domain.ActivityRemoveTeamMember)
}

// TeamForUser loads the caller's team with member users and pending
// invitations. Member users are fetched concurrently.
func (s *Service) TeamForUser(ctx context.Context, user domain.User) (TeamView, error) {
	member, err := s.requireMembership(ctx, user.ID)
	if err != nil {
		return TeamView{}, err
	}

	var (
		team        domain.Team
		members     []domain.TeamMember
		invitations []domain.Invitation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		team, err = s.teams.GetByID(gctx, member.TeamID)
		if err != nil {
			return fmt.Errorf("load team: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		members, err = s.members.ListByTeam(gctx, member.TeamID)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		invitations, err = s.invitations.ListPendingByTeam(gctx, member.TeamID)
		if err != nil {
			return fmt.Errorf("list invitations: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return TeamView{}, err
	}

	views := make([]MemberView, len(members))
	found := make([]bool, len(members))
	ug, ugctx := errgroup.WithContext(ctx)
	ug.SetLimit(8)
	for i, m := range members {
		i, m := i, m
		ug.Go(func() error {
			u, err := s.users.GetByID(ugctx, m.UserID)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("load member user %d: %w", m.UserID, err)
			}
			views[i] = MemberView{ID: m.ID, Role: m.Role, JoinedAt: m.JoinedAt, User: u.Public()}
			found[i] = true
			return nil
		})
	}
	if err := ug.Wait(); err != nil {
		return TeamView{}, err
	}

	out := TeamView{Team: team, Members: make([]MemberView, 0, len(views)), PendingInvitations: invitations}
	for i, v := range views {
		if found[i] {
			out.Members = append(out.Members, v)
		}
	}
	if out.PendingInvitations == nil {
		out.PendingInvitations = []domain.Invitation{}
	}
	return out, nil
}

func (s *Service) ListActivity(ctx context.Context, user domain.User) ([]domain.ActivityLog, error) {
	logs, err := s.activity.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	if logs == nil {
		logs = []domain.ActivityLog{}
	}
	return logs, nil
}
