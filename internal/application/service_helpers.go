package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
)

// logActivity appends an activity entry for the current request. Entries
// without a team are dropped by the repository.
func (s *Service) logActivity(ctx context.Context, teamID *int64, userID int64, action domain.ActivityType) error {
	if err := s.activity.Append(ctx, domain.ActivityEntry{
		TeamID:    teamID,
		UserID:    userID,
		Action:    action,
		IPAddress: requestMetaFrom(ctx).IPAddress,
		At:        s.nowFn(),
	}); err != nil {
		return fmt.Errorf("log %s activity: %w", action, err)
	}
	return nil
}

// membershipOf returns the caller's membership or nil when they have no team.
func (s *Service) membershipOf(ctx context.Context, userID int64) (*domain.TeamMember, error) {
	member, err := s.members.FindByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return &member, nil
}

// requireMembership is membershipOf for operations that need a team.
func (s *Service) requireMembership(ctx context.Context, userID int64) (domain.TeamMember, error) {
	member, err := s.membershipOf(ctx, userID)
	if err != nil {
		return domain.TeamMember{}, err
	}
	if member == nil {
		return domain.TeamMember{}, domain.ErrNotInTeam
	}
	return *member, nil
}

func teamIDOf(member *domain.TeamMember) *int64 {
	if member == nil {
		return nil
	}
	id := member.TeamID
	return &id
}

func pendingInvitationValue(teamID int64, email string) string {
	return strconv.FormatInt(teamID, 10) + ":" + email
}

// randomHex returns a cryptographically random hex token.
func randomHex(bytesLen int) (string, error) {
	raw := make([]byte, bytesLen)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// checkoutRedirect resolves where a signed-in user goes next.
func (s *Service) checkoutRedirect(ctx context.Context, redirect, priceID string, teamID *int64) (string, error) {
	if redirect != RedirectCheckout || priceID == "" || teamID == nil {
		return dashboardPath, nil
	}
	team, err := s.teams.GetByID(ctx, *teamID)
	if err != nil {
		return "", fmt.Errorf("load team for checkout: %w", err)
	}
	url, err := s.billing.CreateCheckoutSession(ctx, team, priceID)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return url, nil
}
