package kvstore

import (
	"context"
	"errors"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

// UniqueIndex keeps one row per claimed value. A conditional put makes the
// claim atomic where a read-before-write scan is not.
type UniqueIndex struct {
	baseRepository
}

func (r *UniqueIndex) Claim(ctx context.Context, value string, ownerID int64) error {
	err := r.store.PutIfAbsent(ctx, r.table, ports.Item{
		attrValue:     value,
		attrOwnerID:   ownerID,
		attrClaimedAt: timestamp(r.nowFn()),
	})
	if errors.Is(err, ports.ErrConditionFailed) {
		return domain.ErrConflict
	}
	return err
}

func (r *UniqueIndex) Release(ctx context.Context, value string) error {
	return r.store.Delete(ctx, r.table, ports.Key{attrValue: value})
}
