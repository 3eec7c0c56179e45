package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"golang.org/x/crypto/ssh"
)

const apiKeyPrefix = "sk_"

func (s *Service) CreateAPIKey(ctx context.Context, user domain.User, in CreateAPIKeyInput) (domain.CredentialKey, error) {
	secret, err := randomHex(24)
	if err != nil {
		return domain.CredentialKey{}, fmt.Errorf("generate api key: %w", err)
	}
	key, err := s.keys.Put(ctx, domain.CredentialKey{
		Key:    apiKeyPrefix + secret,
		UserID: user.ID,
		Name:   in.Name,
		Kind:   domain.CredentialAPIKey,
	})
	if err != nil {
		return domain.CredentialKey{}, fmt.Errorf("store api key: %w", err)
	}
	return key, nil
}

// CreateSSHKey stores an authorized_keys line. The key value is the
// trimmed line itself, so adding the same key again replaces its name.
func (s *Service) CreateSSHKey(ctx context.Context, user domain.User, in CreateSSHKeyInput) (domain.CredentialKey, error) {
	line := strings.TrimSpace(in.PublicKey)
	if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line)); err != nil {
		return domain.CredentialKey{}, domain.ErrInvalidSSHKey
	}
	existing, err := s.keys.Get(ctx, line)
	switch {
	case err == nil && !existing.OwnedBy(user.ID):
		return domain.CredentialKey{}, domain.ErrInvalidSSHKey
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return domain.CredentialKey{}, fmt.Errorf("check ssh key: %w", err)
	}
	key, err := s.keys.Put(ctx, domain.CredentialKey{
		Key:    line,
		UserID: user.ID,
		Name:   in.Name,
		Kind:   domain.CredentialSSHKey,
	})
	if err != nil {
		return domain.CredentialKey{}, fmt.Errorf("store ssh key: %w", err)
	}
	return key, nil
}

func (s *Service) ListKeys(ctx context.Context, user domain.User, kind domain.CredentialKind) ([]domain.CredentialKey, error) {
	keys, err := s.keys.ListByUser(ctx, user.ID, kind)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	if keys == nil {
		keys = []domain.CredentialKey{}
	}
	return keys, nil
}

// DeleteKey removes one of the caller's keys. Keys of other users and keys
// of the other kind are reported as not found.
func (s *Service) DeleteKey(ctx context.Context, user domain.User, kind domain.CredentialKind, in DeleteKeyInput) error {
	value := strings.TrimSpace(in.Key)
	key, err := s.keys.Get(ctx, value)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("load key: %w", err)
	}
	if !key.OwnedBy(user.ID) || key.Kind != kind {
		return domain.ErrKeyNotFound
	}
	if err := s.keys.Delete(ctx, value); err != nil {
		return fmt.Errorf("delete key: %w", err)
	}
	return nil
}
