package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/application/action"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
	"golang.org/x/sync/errgroup"
)

// SignUp creates a user and either joins the invited team or creates a new
// one. The store has no transactions, so once the user row exists any
// failure soft-deletes it again before returning.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (AuthResult, error) {
	if err := domain.ValidateNewPassword(in.Password); err != nil {
		return AuthResult{}, err
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return AuthResult{}, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("check existing user: %w", err)
	}

	var invitation *domain.Invitation
	var team domain.Team
	role := domain.RoleOwner
	if !in.InviteID.Empty() {
		inv, invitedTeam, err := s.pendingInvitationFor(ctx, in.InviteID, in.Email)
		if err != nil {
			return AuthResult{}, err
		}
		invitation, team, role = &inv, invitedTeam, inv.Role
	}

	passwordHash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.Create(ctx, ports.NewUser{
		Email:        in.Email,
		PasswordHash: passwordHash,
		Role:         role,
	})
	if err != nil {
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	saga := signUpSaga{service: s, user: user}
	teamID, err := s.completeSignUp(ctx, &saga, invitation, team)
	if err != nil {
		saga.compensate(ctx, err)
		return AuthResult{}, err
	}

	redirect, err := s.checkoutRedirect(ctx, in.Redirect, in.PriceID, &teamID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user.Public(), RedirectTo: redirect}, nil
}

// completeSignUp runs every step after the user row exists and returns the
// team the user joined.
func (s *Service) completeSignUp(ctx context.Context, saga *signUpSaga, invitation *domain.Invitation, team domain.Team) (int64, error) {
	user := saga.user
	if err := s.emailIndex.Claim(ctx, user.Email, user.ID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return 0, domain.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("claim email: %w", err)
	}
	saga.emailClaimed = true

	if invitation != nil {
		if err := s.invitations.MarkAccepted(ctx, invitation.ID); err != nil {
			if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
				return 0, domain.ErrInvalidInvitation
			}
			return 0, fmt.Errorf("accept invitation: %w", err)
		}
		saga.invitation = invitation
		if err := s.pendingInvitations.Release(ctx, pendingInvitationValue(invitation.TeamID, invitation.Email)); err != nil {
			s.logger.WarnContext(ctx, "pending invitation index not released",
				"operation", "sign_up",
				"outcome", "degraded",
				"invitation_id", invitation.ID,
				"error", err,
			)
		}
		if err := s.logActivity(ctx, &team.ID, user.ID, domain.ActivityAcceptInvitation); err != nil {
			return 0, err
		}
	} else {
		created, err := s.teams.Create(ctx, domain.DefaultTeamName(user.Email))
		if err != nil {
			return 0, fmt.Errorf("create team: %w", err)
		}
		team = created
		if err := s.logActivity(ctx, &team.ID, user.ID, domain.ActivityCreateTeam); err != nil {
			return 0, err
		}
	}

	member, err := s.members.Create(ctx, ports.NewTeamMember{
		UserID: user.ID,
		TeamID: team.ID,
		Role:   user.Role,
	})
	if err != nil {
		return 0, fmt.Errorf("create membership: %w", err)
	}
	saga.member = &member

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.logActivity(gctx, &team.ID, user.ID, domain.ActivitySignUp)
	})
	g.Go(func() error {
		return s.sessions.Establish(ctx, user)
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "user signed up",
		"operation", "sign_up",
		"outcome", "success",
		"user_id", user.ID,
		"team_id", team.ID,
		"invited", invitation != nil,
	)
	return team.ID, nil
}

func (s *Service) pendingInvitationFor(ctx context.Context, rawID action.ID, email string) (domain.Invitation, domain.Team, error) {
	id, err := rawID.Int64()
	if err != nil {
		return domain.Invitation{}, domain.Team{}, domain.ErrInvalidInvitation
	}
	inv, err := s.invitations.FindPending(ctx, id, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Invitation{}, domain.Team{}, domain.ErrInvalidInvitation
	}
	if err != nil {
		return domain.Invitation{}, domain.Team{}, fmt.Errorf("find invitation: %w", err)
	}
	team, err := s.teams.GetByID(ctx, inv.TeamID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Invitation{}, domain.Team{}, domain.ErrInvalidInvitation
	}
	if err != nil {
		return domain.Invitation{}, domain.Team{}, fmt.Errorf("load invited team: %w", err)
	}
	return inv, team, nil
}

type signUpSaga struct {
	service      *Service
	user         domain.User
	emailClaimed bool
	invitation   *domain.Invitation
	member       *domain.TeamMember
}

// compensate soft-deletes the half-created user, reopens an accepted
// invitation and drops any session cookie issued for the user. A team
// created for the user is left behind without members.
func (c *signUpSaga) compensate(ctx context.Context, cause error) {
	ctx = context.WithoutCancel(ctx)
	s := c.service
	if carrier := sessionCarrierFrom(ctx); carrier != nil {
		carrier.ClearSessionToken()
	}
	if err := s.users.MarkDeleted(ctx, c.user.ID, s.nowFn()); err != nil {
		s.logger.ErrorContext(ctx, "sign-up compensation failed",
			"operation", "sign_up",
			"outcome", "failure",
			"user_id", c.user.ID,
			"cause", cause,
			"error", err,
		)
	}
	if c.member != nil {
		if err := s.members.Remove(ctx, c.member.ID, c.member.TeamID); err != nil {
			s.logger.ErrorContext(ctx, "membership not removed after failed sign-up",
				"operation", "sign_up",
				"outcome", "failure",
				"user_id", c.user.ID,
				"error", err,
			)
		}
	}
	if c.invitation != nil {
		c.reopenInvitation(ctx)
	}
	if c.emailClaimed {
		if err := s.emailIndex.Release(ctx, c.user.Email); err != nil {
			s.logger.ErrorContext(ctx, "email index not released after failed sign-up",
				"operation", "sign_up",
				"outcome", "failure",
				"user_id", c.user.ID,
				"error", err,
			)
		}
	}
	s.logger.WarnContext(ctx, "sign-up rolled back",
		"operation", "sign_up",
		"outcome", "compensated",
		"user_id", c.user.ID,
		"cause", cause,
	)
}

func (c *signUpSaga) reopenInvitation(ctx context.Context) {
	s := c.service
	inv := c.invitation
	if err := s.invitations.Reopen(ctx, inv.ID); err != nil {
		s.logger.ErrorContext(ctx, "invitation not reopened after failed sign-up",
			"operation", "sign_up",
			"outcome", "failure",
			"invitation_id", inv.ID,
			"error", err,
		)
		return
	}
	err := s.pendingInvitations.Claim(ctx, pendingInvitationValue(inv.TeamID, inv.Email), inv.InvitedBy)
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		s.logger.ErrorContext(ctx, "pending invitation index not restored after failed sign-up",
			"operation", "sign_up",
			"outcome", "failure",
			"invitation_id", inv.ID,
			"error", err,
		)
	}
}

// SignIn answers unknown emails and wrong passwords with the same error.
func (s *Service) SignIn(ctx context.Context, in SignInInput) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return AuthResult{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}
	if !s.hasher.Compare(ctx, in.Password, user.PasswordHash) {
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	member, err := s.membershipOf(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	teamID := teamIDOf(member)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.logActivity(gctx, teamID, user.ID, domain.ActivitySignIn)
	})
	g.Go(func() error {
		return s.sessions.Establish(ctx, user)
	})
	if err := g.Wait(); err != nil {
		return AuthResult{}, err
	}

	redirect, err := s.checkoutRedirect(ctx, in.Redirect, in.PriceID, teamID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user.Public(), RedirectTo: redirect}, nil
}

func (s *Service) SignOut(ctx context.Context, user domain.User) error {
	member, err := s.membershipOf(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := s.logActivity(ctx, teamIDOf(member), user.ID, domain.ActivitySignOut); err != nil {
		return err
	}
	return s.sessions.End(ctx)
}
