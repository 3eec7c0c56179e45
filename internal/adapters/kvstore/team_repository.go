package kvstore

import (
	"context"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

type TeamRepository struct {
	baseRepository
}

func (r *TeamRepository) Create(ctx context.Context, name string) (domain.Team, error) {
	now := r.nowFn()
	team := domain.Team{Name: name, CreatedAt: now, UpdatedAt: now}
	id, err := r.insertWithID(ctx, func(id int64) ports.Item {
		team.ID = id
		return teamToItem(team)
	})
	if err != nil {
		return domain.Team{}, err
	}
	team.ID = id
	return team, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (domain.Team, error) {
	item, err := r.get(ctx, ports.Key{attrID: id})
	if err != nil {
		return domain.Team{}, err
	}
	return teamFromItem(item), nil
}

func (r *TeamRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (domain.Team, error) {
	items, err := r.scan(ctx, ports.Filter{attrStripeCustomerID: customerID})
	if err != nil {
		return domain.Team{}, err
	}
	if len(items) == 0 {
		return domain.Team{}, domain.ErrNotFound
	}
	return teamFromItem(items[0]), nil
}

func (r *TeamRepository) Rename(ctx context.Context, id int64, name string) error {
	return r.updateExisting(ctx, ports.Key{attrID: id}, ports.Item{
		attrName:      name,
		attrUpdatedAt: timestamp(r.nowFn()),
	})
}

func (r *TeamRepository) UpdateSubscription(ctx context.Context, id int64, update ports.SubscriptionUpdate) error {
	attrs := ports.Item{
		attrStripeSubscriptionID: nullable(update.StripeSubscriptionID),
		attrStripeProductID:      nullable(update.StripeProductID),
		attrPlanName:             nullable(update.PlanName),
		attrSubscriptionStatus:   update.SubscriptionStatus,
		attrUpdatedAt:            timestamp(r.nowFn()),
	}
	if update.StripeCustomerID != nil {
		attrs[attrStripeCustomerID] = *update.StripeCustomerID
	}
	return r.updateExisting(ctx, ports.Key{attrID: id}, attrs)
}
