package billing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
)

// LinkProvider hands checkout off to a hosted payment page. The provider
// reports the resulting subscription back through the subscription callback.
type LinkProvider struct {
	baseURL *url.URL
}

func NewLinkProvider(baseURL string) (*LinkProvider, error) {
	if baseURL == "" {
		return &LinkProvider{}, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid checkout base url %q", baseURL)
	}
	return &LinkProvider{baseURL: u}, nil
}

func (p *LinkProvider) CreateCheckoutSession(_ context.Context, team domain.Team, priceID string) (string, error) {
	if p.baseURL == nil {
		return "", domain.ErrCheckoutUnavailable
	}
	if priceID == "" {
		return "", errors.New("checkout requires a price id")
	}
	u := *p.baseURL
	q := u.Query()
	q.Set("client_reference_id", strconv.FormatInt(team.ID, 10))
	q.Set("price_id", priceID)
	if team.Billing.StripeCustomerID != nil {
		q.Set("customer", *team.Billing.StripeCustomerID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
