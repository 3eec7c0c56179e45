package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/application"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
)

// Options configures transport concerns the application layer does not see.
type Options struct {
	// CookieSecure marks the session cookie Secure; disable only for local http.
	CookieSecure bool
	// BillingWebhookToken guards the subscription callback. Empty disables it.
	BillingWebhookToken string
	Ready               func(ctx context.Context) error
}

// Handler is the HTTP adapter for account, team and key operations.
type Handler struct {
	service      *application.Service
	actions      *application.Actions
	cookieSecure bool
	billingToken string
	ready        func(ctx context.Context) error
}

func NewHandler(service *application.Service, actions *application.Actions, opts Options) *Handler {
	return &Handler{
		service:      service,
		actions:      actions,
		cookieSecure: opts.CookieSecure,
		billingToken: opts.BillingWebhookToken,
		ready:        opts.Ready,
	}
}

// NewRouter registers routes and the middleware stack.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	a := handler.actions
	r.Route("/api", func(r chi.Router) {
		r.Use(handler.sessionMiddleware)

		r.Post("/auth/sign-up", handler.runAction("sign_up", a.SignUp))
		r.Post("/auth/sign-in", handler.runAction("sign_in", a.SignIn))
		r.Post("/auth/sign-out", handler.runAction("sign_out", a.SignOut))
		r.Get("/user", handler.currentUser)

		r.Put("/account", handler.runAction("update_account", a.UpdateAccount))
		r.Post("/account/password", handler.runAction("update_password", a.UpdatePassword))
		r.Post("/account/delete", handler.runAction("delete_account", a.DeleteAccount))

		r.Post("/team/invitations", handler.runAction("invite_member", a.InviteMember))
		r.Post("/team/members/remove", handler.runAction("remove_member", a.RemoveMember))

		r.Post("/api-keys", handler.runAction("create_api_key", a.CreateAPIKey))
		r.Delete("/api-keys", handler.runAction("delete_api_key", a.DeleteAPIKey))
		r.Post("/ssh-keys", handler.runAction("create_ssh_key", a.CreateSSHKey))
		r.Delete("/ssh-keys", handler.runAction("delete_ssh_key", a.DeleteSSHKey))

		r.Post("/billing/checkout", handler.runAction("checkout", a.Checkout))

		r.Group(func(r chi.Router) {
			r.Use(handler.requireUser)
			r.Get("/team", handler.team)
			r.Get("/activity", handler.activity)
			r.Get("/api-keys", handler.listKeys(domain.CredentialAPIKey))
			r.Get("/ssh-keys", handler.listKeys(domain.CredentialSSHKey))
		})
	})

	r.Route("/internal", func(r chi.Router) {
		r.Use(handler.billingWebhookAuth)
		r.Post("/billing/subscription", handler.runAction("apply_subscription", a.ApplySubscription))
	})

	return r
}
