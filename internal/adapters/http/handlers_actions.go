package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/application/action"
)

// BillingTokenHeader authenticates the billing provider's subscription callback.
const BillingTokenHeader = "X-Billing-Token"

func (h *Handler) runAction(operation string, fn action.Func) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := decodeRaw(r)
		if err != nil {
			writeValidationError(r.Context(), w, operation, err)
			return
		}
		res, err := fn(r.Context(), raw)
		if err != nil {
			writeMappedError(r.Context(), w, operation, err)
			return
		}
		writeActionResult(r.Context(), w, operation, res)
	}
}

func (h *Handler) billingWebhookAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(BillingTokenHeader)
		if h.billingToken == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.billingToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid billing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
