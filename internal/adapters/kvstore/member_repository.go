package kvstore

import (
	"context"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

type TeamMemberRepository struct {
	baseRepository
}

func (r *TeamMemberRepository) Create(ctx context.Context, input ports.NewTeamMember) (domain.TeamMember, error) {
	member := domain.TeamMember{
		UserID:   input.UserID,
		TeamID:   input.TeamID,
		Role:     input.Role,
		JoinedAt: r.nowFn(),
	}
	id, err := r.insertWithID(ctx, func(id int64) ports.Item {
		member.ID = id
		return memberToItem(member)
	})
	if err != nil {
		return domain.TeamMember{}, err
	}
	member.ID = id
	return member, nil
}

// FindByUser treats the first scanned membership as authoritative.
func (r *TeamMemberRepository) FindByUser(ctx context.Context, userID int64) (domain.TeamMember, error) {
	items, err := r.scan(ctx, ports.Filter{attrUserID: userID})
	if err != nil {
		return domain.TeamMember{}, err
	}
	if len(items) == 0 {
		return domain.TeamMember{}, domain.ErrNotFound
	}
	return memberFromItem(items[0]), nil
}

func (r *TeamMemberRepository) ExistsForUserInTeam(ctx context.Context, userID, teamID int64) (bool, error) {
	items, err := r.scan(ctx, ports.Filter{attrUserID: userID, attrTeamID: teamID})
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

func (r *TeamMemberRepository) ListByTeam(ctx context.Context, teamID int64) ([]domain.TeamMember, error) {
	items, err := r.scan(ctx, ports.Filter{attrTeamID: teamID})
	if err != nil {
		return nil, err
	}
	out := make([]domain.TeamMember, 0, len(items))
	for _, item := range items {
		out = append(out, memberFromItem(item))
	}
	return out, nil
}

func (r *TeamMemberRepository) Remove(ctx context.Context, memberID, teamID int64) error {
	return r.store.Delete(ctx, r.table, ports.Key{attrID: memberID, attrTeamID: teamID})
}
