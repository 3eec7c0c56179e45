package application

import (
	"context"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/application/action"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
)

// Actions are the client-invocable operations, each wrapped in input
// validation and, where needed, session resolution.
type Actions struct {
	SignUp         action.Func
	SignIn         action.Func
	SignOut        action.Func
	UpdatePassword action.Func
	UpdateAccount  action.Func
	DeleteAccount  action.Func
	InviteMember   action.Func
	RemoveMember   action.Func
	CreateAPIKey   action.Func
	DeleteAPIKey   action.Func
	CreateSSHKey   action.Func
	DeleteSSHKey   action.Func
	Checkout       action.Func
	// ApplySubscription has no session; transports must authenticate the caller.
	ApplySubscription action.Func
}

type empty struct{}

func NewActions(s *Service, v *action.Validator) *Actions {
	users := s.sessions
	return &Actions{
		SignUp: action.Validated(v, func(ctx context.Context, in SignUpInput, raw action.Raw) (action.Result, error) {
			res, err := s.SignUp(ctx, in)
			if err != nil {
				return action.FromError(err, raw)
			}
			return action.Result{Data: res.User, RedirectTo: res.RedirectTo}, nil
		}),
		SignIn: action.Validated(v, func(ctx context.Context, in SignInInput, raw action.Raw) (action.Result, error) {
			res, err := s.SignIn(ctx, in)
			if err != nil {
				return action.FromError(err, raw)
			}
			return action.Result{Data: res.User, RedirectTo: res.RedirectTo}, nil
		}),
		SignOut: action.ValidatedWithUser(v, users, func(ctx context.Context, _ empty, raw action.Raw, user domain.User) (action.Result, error) {
			if err := s.SignOut(ctx, user); err != nil {
				return action.FromError(err, raw)
			}
			return action.Result{RedirectTo: "/sign-in"}, nil
		}),
		UpdatePassword: action.ValidatedWithUser(v, users, func(ctx context.Context, in UpdatePasswordInput, raw action.Raw, user domain.User) (action.Result, error) {
			if err := s.UpdatePassword(ctx, user, in); err != nil {
				return action.FromError(err, raw)
			}
			return action.Succeed("Password updated successfully.", nil), nil
		}),
		UpdateAccount: action.ValidatedWithUser(v, users, func(ctx context.Context, in UpdateAccountInput, raw action.Raw, user domain.User) (action.Result, error) {
			updated, err := s.UpdateAccount(ctx, user, in)
			if err != nil {
				return action.FromError(err, raw)
			}
			res := action.Succeed("Account updated successfully.", updated)
			res.Input = action.Raw{"name": in.Name, "email": in.Email}.Echo()
			return res, nil
		}),
		DeleteAccount: action.ValidatedWithUser(v, users, func(ctx context.Context, in DeleteAccountInput, raw action.Raw, user domain.User) (action.Result, error) {
			if err := s.DeleteAccount(ctx, user, in); err != nil {
				return action.FromError(err, raw)
			}
			return action.Result{RedirectTo: "/sign-in"}, nil
		}),
		InviteMember: action.ValidatedWithUser(v, users, func(ctx context.Context, in InviteMemberInput, raw action.Raw, user domain.User) (action.Result, error) {
			invitation, err := s.InviteMember(ctx, user, in)
			if err != nil {
				return action.FromError(err, raw)
			}
			return action.Succeed("Invitation sent successfully", invitation), nil
		}),
		RemoveMember: action.ValidatedWithUser(v, users, func(ctx context.Context, in RemoveMemberInput, raw action.Raw, user domain.User) (action.Result, error) {
			if err := s.RemoveMember(ctx, user, in); err != nil {
				return action.FromError(err, raw)
			}
			return action.Succeed("Team member removed successfully", nil), nil
		}),
		CreateAPIKey: action.ValidatedWithUser(v, users, func(ctx context.Context, in CreateAPIKeyInput, raw action.Raw, user domain.User) (action.Result, error) {
			key, err := s.CreateAPIKey(ctx, user, in)
			if err != nil {
				return action.FromError(err, raw)
			}
			return action.Succeed("API key created", key), nil
		}),
		DeleteAPIKey: action.ValidatedWithUser(v, users, func(ctx context.Context, in DeleteKeyInput, raw action.Raw, user domain.User) (action.Result, error) {
			if err := s.DeleteKey(ctx, user, domain.CredentialAPIKey, in); err != nil {
				return action.FromError(err, raw)
			}
			return action.Succeed("API key deleted", nil), nil
		}),
		CreateSSHKey: action.ValidatedWithUser(v, users, func(ctx context.Context, in CreateSSHKeyInput, raw action.Raw, user domain.User) (action.Result, error) {
			key, err := s.CreateSSHKey(ctx, user, in)
			if err != nil {
				return action.FromError(err, raw)
			}
			return action.Succeed("SSH key added", key), nil
		}),
		DeleteSSHKey: action.ValidatedWithUser(v, users, func(ctx context.Context, in DeleteKeyInput, raw action.Raw, user domain.User) (action.Result, error) {
			if err := s.DeleteKey(ctx, user, domain.CredentialSSHKey, in); err != nil {
				return action.FromError(err, raw)
			}
			return action.Succeed("SSH key deleted", nil), nil
		}),
		Checkout: action.ValidatedWithUser(v, users, func(ctx context.Context, in CheckoutInput, raw action.Raw, user domain.User) (action.Result, error) {
			url, err := s.Checkout(ctx, user, in)
			if err != nil {
				return action.FromError(err, raw)
			}
			return action.Result{RedirectTo: url}, nil
		}),
		ApplySubscription: action.Validated(v, func(ctx context.Context, in SubscriptionChangeInput, raw action.Raw) (action.Result, error) {
			if err := s.ApplySubscriptionChange(ctx, in); err != nil {
				return action.FromError(err, raw)
			}
			return action.Succeed("Subscription updated", nil), nil
		}),
	}
}
