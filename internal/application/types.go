package application

import (
	"time"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/application/action"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
)

type Config struct {
	ServiceName       string
	SessionTTL        time.Duration
	SessionRevocation bool
}

// RedirectCheckout asks sign-in and sign-up to continue into billing checkout.
const RedirectCheckout = "checkout"

const dashboardPath = "/dashboard"

type SignInInput struct {
	Email    string `json:"email" validate:"required,email,min=3,max=255"`
	Password string `json:"password" validate:"required,min=8,max=100"`
	Redirect string `json:"redirect"`
	PriceID  string `json:"priceId"`
}

// SignUpInput accepts inviteId as a string or a number.
type SignUpInput struct {
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required,min=8,bcryptlen"`
	InviteID action.ID `json:"inviteId" validate:"omitempty,int64id"`
	Redirect string    `json:"redirect"`
	PriceID  string    `json:"priceId"`
}

type UpdatePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required,min=8,max=100"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,bcryptlen"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,min=8,max=100"`
}

type DeleteAccountInput struct {
	Password string `json:"password" validate:"required,min=8,max=100"`
}

type UpdateAccountInput struct {
	Name  string `json:"name" validate:"required,min=1,max=100" msg:"Name is required"`
	Email string `json:"email" validate:"required,email" msg:"Invalid email address"`
}

type RemoveMemberInput struct {
	MemberID action.ID `json:"memberId" validate:"required,int64id"`
}

type InviteMemberInput struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=member owner"`
}

type CreateAPIKeyInput struct {
	Name string `json:"name" validate:"max=100"`
}

type CreateSSHKeyInput struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	PublicKey string `json:"publicKey" validate:"required"`
}

type DeleteKeyInput struct {
	Key string `json:"key" validate:"required"`
}

type CheckoutInput struct {
	PriceID string `json:"priceId" validate:"required"`
}

// SubscriptionChangeInput is posted by the billing provider. TeamID is set
// on the first event after checkout and links the customer to the team.
type SubscriptionChangeInput struct {
	CustomerID     string    `json:"customerId" validate:"required"`
	TeamID         action.ID `json:"teamId" validate:"omitempty,int64id"`
	SubscriptionID string    `json:"subscriptionId"`
	ProductID      string    `json:"productId"`
	PlanName       string    `json:"planName"`
	Status         string    `json:"status" validate:"required"`
}

type AuthResult struct {
	User       domain.PublicUser `json:"user"`
	RedirectTo string            `json:"-"`
}

type MemberView struct {
	ID       int64             `json:"id"`
	Role     string            `json:"role"`
	JoinedAt time.Time         `json:"joined_at"`
	User     domain.PublicUser `json:"user"`
}

type TeamView struct {
	domain.Team
	Members            []MemberView        `json:"members"`
	PendingInvitations []domain.Invitation `json:"pending_invitations"`
}
