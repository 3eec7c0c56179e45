package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

// maxIDAttempts bounds retries when a generated id is already taken.
const maxIDAttempts = 3

// Repositories groups the typed repositories built over one ports.Store.
type Repositories struct {
	Users              *UserRepository
	Teams              *TeamRepository
	Members            *TeamMemberRepository
	Invitations        *InvitationRepository
	Activity           *ActivityLogRepository
	Keys               *CredentialKeyRepository
	EmailIndex         *UniqueIndex
	PendingInvitations *UniqueIndex
}

func NewRepositories(store ports.Store, ids ports.IDGenerator, tables Tables) *Repositories {
	base := baseRepository{
		store: store,
		ids:   ids,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
	return &Repositories{
		Users:              &UserRepository{baseRepository: base.on(tables.Users)},
		Teams:              &TeamRepository{baseRepository: base.on(tables.Teams)},
		Members:            &TeamMemberRepository{baseRepository: base.on(tables.TeamMembers)},
		Invitations:        &InvitationRepository{baseRepository: base.on(tables.Invitations)},
		Activity:           &ActivityLogRepository{baseRepository: base.on(tables.ActivityLogs)},
		Keys:               &CredentialKeyRepository{baseRepository: base.on(tables.Keys)},
		EmailIndex:         &UniqueIndex{baseRepository: base.on(tables.UserEmailIndex)},
		PendingInvitations: &UniqueIndex{baseRepository: base.on(tables.PendingInvitationIndex)},
	}
}

type baseRepository struct {
	store ports.Store
	ids   ports.IDGenerator
	table string
	nowFn func() time.Time
}

func (b baseRepository) on(table string) baseRepository {
	b.table = table
	return b
}

// insertWithID writes a new row under a fresh id, retrying when the id collides.
func (b baseRepository) insertWithID(ctx context.Context, build func(id int64) ports.Item) (int64, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := b.ids.NextID()
		err := b.store.PutIfAbsent(ctx, b.table, build(id))
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ports.ErrConditionFailed) {
			return 0, fmt.Errorf("insert into %s: %w", b.table, err)
		}
	}
	return 0, fmt.Errorf("%w: could not allocate id in %s", domain.ErrConflict, b.table)
}

// updateExisting merges attrs into an existing row, mapping a missing row
// to domain.ErrNotFound instead of creating it.
func (b baseRepository) updateExisting(ctx context.Context, key ports.Key, attrs ports.Item) error {
	cond := ports.Filter{}
	for k, v := range key {
		cond[k] = v
	}
	err := b.store.Update(ctx, b.table, key, attrs, cond)
	if errors.Is(err, ports.ErrConditionFailed) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", b.table, err)
	}
	return nil
}

func (b baseRepository) get(ctx context.Context, key ports.Key) (ports.Item, error) {
	item, err := b.store.Get(ctx, b.table, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get from %s: %w", b.table, err)
	}
	return item, nil
}

func (b baseRepository) scan(ctx context.Context, filter ports.Filter) ([]ports.Item, error) {
	items, err := b.store.Scan(ctx, b.table, filter)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", b.table, err)
	}
	return items, nil
}
