package domain

import "time"

type CredentialKind string

const (
	CredentialAPIKey CredentialKind = "api"
	CredentialSSHKey CredentialKind = "ssh"
)

// CredentialKey is an API or SSH key. Key is both the credential value
// and the primary key, so storing the same value twice overwrites.
type CredentialKey struct {
	Key       string         `json:"key"`
	UserID    int64          `json:"user_id"`
	Name      string         `json:"name,omitempty"`
	Kind      CredentialKind `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
}

func (k CredentialKey) OwnedBy(userID int64) bool {
	return k.UserID == userID
}
