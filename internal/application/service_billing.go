package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

// Checkout returns the billing provider URL for the caller's team.
func (s *Service) Checkout(ctx context.Context, user domain.User, in CheckoutInput) (string, error) {
	member, err := s.requireMembership(ctx, user.ID)
	if err != nil {
		return "", err
	}
	return s.checkoutRedirect(ctx, RedirectCheckout, in.PriceID, &member.TeamID)
}

// ApplySubscriptionChange records a subscription event from the billing
// provider. Events carrying a team id attach the customer to that team;
// later events find the team by customer id.
func (s *Service) ApplySubscriptionChange(ctx context.Context, in SubscriptionChangeInput) error {
	var (
		team domain.Team
		err  error
	)
	if in.TeamID.Empty() {
		team, err = s.teams.GetByStripeCustomerID(ctx, in.CustomerID)
	} else {
		teamID, parseErr := in.TeamID.Int64()
		if parseErr != nil {
			return fmt.Errorf("%w: teamId", domain.ErrInvalidInput)
		}
		team, err = s.teams.GetByID(ctx, teamID)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("find team for subscription: %w", err)
	}

	update := ports.SubscriptionUpdate{
		StripeSubscriptionID: optional(in.SubscriptionID),
		StripeProductID:      optional(in.ProductID),
		PlanName:             optional(in.PlanName),
		SubscriptionStatus:   in.Status,
	}
	if !in.TeamID.Empty() {
		update.StripeCustomerID = &in.CustomerID
	}
	if err := s.teams.UpdateSubscription(ctx, team.ID, update); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	s.logger.InfoContext(ctx, "subscription updated",
		"operation", "apply_subscription_change",
		"outcome", "success",
		"team_id", team.ID,
		"status", in.Status,
	)
	return nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
