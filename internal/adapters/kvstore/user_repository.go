package kvstore

import (
	"context"
	"time"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

type UserRepository struct {
	baseRepository
}

func (r *UserRepository) Create(ctx context.Context, input ports.NewUser) (domain.User, error) {
	now := r.nowFn()
	user := domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Role:         input.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := r.insertWithID(ctx, func(id int64) ports.Item {
		user.ID = id
		return userToItem(user)
	})
	if err != nil {
		return domain.User{}, err
	}
	user.ID = id
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	item, err := r.get(ctx, ports.Key{attrID: id})
	if err != nil {
		return domain.User{}, err
	}
	return userFromItem(item), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	items, err := r.scan(ctx, ports.Filter{attrEmail: email})
	if err != nil {
		return domain.User{}, err
	}
	for _, item := range items {
		user := userFromItem(item)
		if !user.IsDeleted() {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.updateExisting(ctx, ports.Key{attrID: id}, ports.Item{
		attrPasswordHash: passwordHash,
		attrUpdatedAt:    timestamp(r.nowFn()),
	})
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	return r.updateExisting(ctx, ports.Key{attrID: id}, ports.Item{
		attrName:      name,
		attrEmail:     email,
		attrUpdatedAt: timestamp(r.nowFn()),
	})
}

func (r *UserRepository) MarkDeleted(ctx context.Context, id int64, at time.Time) error {
	return r.updateExisting(ctx, ports.Key{attrID: id}, ports.Item{
		attrDeletedAt: timestamp(at),
		attrUpdatedAt: timestamp(at),
	})
}
