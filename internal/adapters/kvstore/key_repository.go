package kvstore

import (
	"context"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

// CredentialKeyRepository stores API and SSH keys keyed by their value.
type CredentialKeyRepository struct {
	baseRepository
}

// Put overwrites any existing row holding the same key value.
func (r *CredentialKeyRepository) Put(ctx context.Context, key domain.CredentialKey) (domain.CredentialKey, error) {
	key.Timestamp = r.nowFn()
	if err := r.store.Put(ctx, r.table, credentialToItem(key)); err != nil {
		return domain.CredentialKey{}, err
	}
	return key, nil
}

func (r *CredentialKeyRepository) Get(ctx context.Context, value string) (domain.CredentialKey, error) {
	item, err := r.get(ctx, ports.Key{attrKey: value})
	if err != nil {
		return domain.CredentialKey{}, err
	}
	return credentialFromItem(item), nil
}

func (r *CredentialKeyRepository) Delete(ctx context.Context, value string) error {
	return r.store.Delete(ctx, r.table, ports.Key{attrKey: value})
}

func (r *CredentialKeyRepository) ListByUser(ctx context.Context, userID int64, kind domain.CredentialKind) ([]domain.CredentialKey, error) {
	items, err := r.scan(ctx, ports.Filter{attrUserID: userID, attrKind: string(kind)})
	if err != nil {
		return nil, err
	}
	out := make([]domain.CredentialKey, 0, len(items))
	for _, item := range items {
		out = append(out, credentialFromItem(item))
	}
	return out, nil
}
