package kvstore

import (
	"context"
	"sort"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

type ActivityLogRepository struct {
	baseRepository
}

// Append writes an immutable entry. Entries without a team are dropped.
func (r *ActivityLogRepository) Append(ctx context.Context, entry domain.ActivityEntry) error {
	if entry.TeamID == nil {
		return nil
	}
	at := entry.At
	if at.IsZero() {
		at = r.nowFn()
	}
	log := domain.ActivityLog{
		TeamID:    *entry.TeamID,
		UserID:    entry.UserID,
		Action:    entry.Action,
		Timestamp: at,
		IPAddress: entry.IPAddress,
	}
	_, err := r.insertWithID(ctx, func(id int64) ports.Item {
		log.ID = id
		return activityToItem(log)
	})
	return err
}

// ListByUser returns the user's entries, newest first.
func (r *ActivityLogRepository) ListByUser(ctx context.Context, userID int64) ([]domain.ActivityLog, error) {
	items, err := r.scan(ctx, ports.Filter{attrUserID: userID})
	if err != nil {
		return nil, err
	}
	out := make([]domain.ActivityLog, 0, len(items))
	for _, item := range items {
		out = append(out, activityFromItem(item))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}
