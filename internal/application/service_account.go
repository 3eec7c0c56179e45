package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
)

func (s *Service) UpdatePassword(ctx context.Context, user domain.User, in UpdatePasswordInput) error {
	if !s.hasher.Compare(ctx, in.CurrentPassword, user.PasswordHash) {
		return domain.ErrIncorrectPassword
	}
	if err := domain.ValidatePasswordChange(in.CurrentPassword, in.NewPassword, in.ConfirmPassword); err != nil {
		return err
	}
	if err := domain.ValidateNewPassword(in.NewPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(ctx, in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	member, err := s.membershipOf(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.logActivity(ctx, teamIDOf(member), user.ID, domain.ActivityUpdatePassword)
}

// UpdateAccount changes name and email. A new email is claimed in the
// email index before the profile is written.
func (s *Service) UpdateAccount(ctx context.Context, user domain.User, in UpdateAccountInput) (domain.PublicUser, error) {
	emailChanged := in.Email != user.Email
	if emailChanged {
		existing, err := s.users.FindByEmail(ctx, in.Email)
		switch {
		case err == nil && existing.ID != user.ID:
			return domain.PublicUser{}, domain.ErrEmailTaken
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return domain.PublicUser{}, fmt.Errorf("check email: %w", err)
		}
		if err := s.emailIndex.Claim(ctx, in.Email, user.ID); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.PublicUser{}, domain.ErrEmailTaken
			}
			return domain.PublicUser{}, fmt.Errorf("claim email: %w", err)
		}
	}

	member, err := s.membershipOf(ctx, user.ID)
	if err == nil {
		err = s.users.UpdateProfile(ctx, user.ID, in.Name, in.Email)
	}
	if err != nil {
		if emailChanged {
			_ = s.emailIndex.Release(context.WithoutCancel(ctx), in.Email)
		}
		return domain.PublicUser{}, fmt.Errorf("update profile: %w", err)
	}
	if emailChanged {
		if err := s.emailIndex.Release(ctx, user.Email); err != nil {
			s.logger.WarnContext(ctx, "previous email not released",
				"operation", "update_account",
				"outcome", "degraded",
				"user_id", user.ID,
				"error", err,
			)
		}
	}
	if err := s.logActivity(ctx, teamIDOf(member), user.ID, domain.ActivityUpdateAccount); err != nil {
		return domain.PublicUser{}, err
	}

	user.Name = in.Name
	user.Email = in.Email
	return user.Public(), nil
}

// DeleteAccount soft-deletes the user, leaves their team and ends the session.
func (s *Service) DeleteAccount(ctx context.Context, user domain.User, in DeleteAccountInput) error {
	if !s.hasher.Compare(ctx, in.Password, user.PasswordHash) {
		return domain.ErrAccountDeletionPassword
	}
	member, err := s.membershipOf(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := s.logActivity(ctx, teamIDOf(member), user.ID, domain.ActivityDeleteAccount); err != nil {
		return err
	}
	if err := s.users.MarkDeleted(ctx, user.ID, s.nowFn()); err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	if member != nil {
		if err := s.members.Remove(ctx, member.ID, member.TeamID); err != nil {
			return fmt.Errorf("remove membership: %w", err)
		}
	}
	if err := s.emailIndex.Release(ctx, user.Email); err != nil {
		return fmt.Errorf("release email: %w", err)
	}
	s.logger.InfoContext(ctx, "account deleted",
		"operation", "delete_account",
		"outcome", "success",
		"user_id", user.ID,
	)
	return s.sessions.End(ctx)
}
