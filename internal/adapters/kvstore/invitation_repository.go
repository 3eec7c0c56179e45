package kvstore

import (
	"context"
	"errors"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

type InvitationRepository struct {
	baseRepository
}

func (r *InvitationRepository) Create(ctx context.Context, input ports.NewInvitation) (domain.Invitation, error) {
	inv := domain.Invitation{
		TeamID:    input.TeamID,
		Email:     input.Email,
		Role:      input.Role,
		InvitedBy: input.InvitedBy,
		InvitedAt: r.nowFn(),
		Status:    domain.InvitationStatusPending,
	}
	id, err := r.insertWithID(ctx, func(id int64) ports.Item {
		inv.ID = id
		return invitationToItem(inv)
	})
	if err != nil {
		return domain.Invitation{}, err
	}
	inv.ID = id
	return inv, nil
}

func (r *InvitationRepository) GetByID(ctx context.Context, id int64) (domain.Invitation, error) {
	item, err := r.get(ctx, ports.Key{attrID: id})
	if err != nil {
		return domain.Invitation{}, err
	}
	return invitationFromItem(item), nil
}

func (r *InvitationRepository) FindPending(ctx context.Context, id int64, email string) (domain.Invitation, error) {
	items, err := r.scan(ctx, ports.Filter{
		attrID:     id,
		attrEmail:  email,
		attrStatus: domain.InvitationStatusPending,
	})
	if err != nil {
		return domain.Invitation{}, err
	}
	if len(items) == 0 {
		return domain.Invitation{}, domain.ErrNotFound
	}
	return invitationFromItem(items[0]), nil
}

func (r *InvitationRepository) ExistsPending(ctx context.Context, email string, teamID int64) (bool, error) {
	items, err := r.scan(ctx, ports.Filter{
		attrEmail:  email,
		attrTeamID: teamID,
		attrStatus: domain.InvitationStatusPending,
	})
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

func (r *InvitationRepository) ListPendingByTeam(ctx context.Context, teamID int64) ([]domain.Invitation, error) {
	items, err := r.scan(ctx, ports.Filter{attrTeamID: teamID, attrStatus: domain.InvitationStatusPending})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Invitation, 0, len(items))
	for _, item := range items {
		out = append(out, invitationFromItem(item))
	}
	return out, nil
}

// MarkAccepted is a conditional update on status, so only one caller can
// move an invitation out of pending.
func (r *InvitationRepository) MarkAccepted(ctx context.Context, id int64) error {
	return r.transition(ctx, id, domain.InvitationStatusPending, domain.InvitationStatusAccepted)
}

// Reopen undoes MarkAccepted for a sign-up that was rolled back.
func (r *InvitationRepository) Reopen(ctx context.Context, id int64) error {
	return r.transition(ctx, id, domain.InvitationStatusAccepted, domain.InvitationStatusPending)
}

func (r *InvitationRepository) transition(ctx context.Context, id int64, from, to string) error {
	err := r.store.Update(ctx, r.table,
		ports.Key{attrID: id},
		ports.Item{attrStatus: to},
		ports.Filter{attrStatus: from},
	)
	if errors.Is(err, ports.ErrConditionFailed) {
		return domain.ErrConflict
	}
	return err
}
