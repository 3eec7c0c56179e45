package domain

import (
	"fmt"
	"time"
)

type Team struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Billing   Billing   `json:"billing"`
}

// Billing holds the subscription fields owned by the billing provider.
// They are only written through subscription callbacks.
type Billing struct {
	StripeCustomerID     *string `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string `json:"stripe_subscription_id,omitempty"`
	StripeProductID      *string `json:"stripe_product_id,omitempty"`
	PlanName             *string `json:"plan_name,omitempty"`
	SubscriptionStatus   *string `json:"subscription_status,omitempty"`
}

type TeamMember struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	TeamID   int64     `json:"team_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// DefaultTeamName names the team created for a user signing up without an invitation.
func DefaultTeamName(email string) string {
	return fmt.Sprintf("%s's Team", email)
}
