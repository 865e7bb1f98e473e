// Package coldstore is the bulk archival tier: compressed, lifecycle-managed
// blobs grouped into per-purpose containers.
package coldstore

import (
	"context"
	"time"
)

// ObjectMeta describes one stored blob.
type ObjectMeta struct {
	Path         string            `json:"path"`
	Size         int64             `json:"size"`
	CreatedAt    time.Time         `json:"created_at"`
	StorageClass string            `json:"storage_class"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// LifecyclePolicy is a container's age-based rule set: transition to a
// cheaper class after TransitionAfterDays, delete after DeleteAfterDays.
type LifecyclePolicy struct {
	InitialClass        string `json:"initial_class"`
	TransitionClass     string `json:"transition_class"`
	TransitionAfterDays int    `json:"transition_after_days"`
	DeleteAfterDays     int    `json:"delete_after_days"`
}

// BlobBackend is the abstract object-store contract the cold tier runs on.
// A managed object storage service satisfies it in production; the
// filesystem implementation below backs local deployments and tests.
type BlobBackend interface {
	// EnsureContainer creates the container if absent. Idempotent and safe
	// under concurrent callers: "already exists" is not an error.
	EnsureContainer(ctx context.Context, name string) error
	// Put stores a blob with its metadata.
	Put(ctx context.Context, container, path string, data []byte, metadata map[string]string) error
	// Get returns a blob and its metadata. Missing objects return an error
	// with code ErrCodeObjectNotFound.
	Get(ctx context.Context, container, path string) ([]byte, map[string]string, error)
	// List returns metadata for every object under the prefix.
	List(ctx context.Context, container, prefix string) ([]ObjectMeta, error)
	// Delete removes an object.
	Delete(ctx context.Context, container, path string) error
	// SetStorageClass moves an object to another storage class without
	// changing its logical path.
	SetStorageClass(ctx context.Context, container, path, class string) error
	// SetLifecyclePolicy installs or replaces the container's policy.
	SetLifecyclePolicy(ctx context.Context, container string, policy LifecyclePolicy) error
	// GetLifecyclePolicy returns the container's policy, if any.
	GetLifecyclePolicy(ctx context.Context, container string) (LifecyclePolicy, bool, error)
}
