package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
)

// SeedInput describes the demo account created by the seed command.
type SeedInput struct {
	Email    string
	Password string
	TeamName string
}

// DefaultSeed is the local development account.
var DefaultSeed = SeedInput{
	Email:    "test@test.com",
	Password: "admin123",
	TeamName: "Test Team",
}

// discardCarrier accepts a session token nobody will read.
type discardCarrier struct{}

func (discardCarrier) SessionToken() (string, bool)      { return "", false }
func (discardCarrier) SetSessionToken(string, time.Time) {}
func (discardCarrier) ClearSessionToken()                {}

// Seed signs up the account through the normal sign-up path and renames its
// team. Running it again against a seeded store is a no-op.
func (s *Service) Seed(ctx context.Context, in SeedInput) (domain.PublicUser, error) {
	if existing, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		s.logger.InfoContext(ctx, "seed account already present", "operation", "seed", "outcome", "skipped", "user_id", existing.ID)
		return existing.Public(), nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.PublicUser{}, fmt.Errorf("find seed user: %w", err)
	}

	res, err := s.SignUp(WithSessionCarrier(ctx, discardCarrier{}), SignUpInput{Email: in.Email, Password: in.Password})
	if err != nil {
		return domain.PublicUser{}, fmt.Errorf("seed sign up: %w", err)
	}
	if in.TeamName != "" {
		member, err := s.requireMembership(ctx, res.User.ID)
		if err != nil {
			return domain.PublicUser{}, err
		}
		if err := s.teams.Rename(ctx, member.TeamID, in.TeamName); err != nil {
			return domain.PublicUser{}, fmt.Errorf("rename seed team: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "seed account created", "operation", "seed", "outcome", "success", "user_id", res.User.ID)
	return res.User, nil
}
