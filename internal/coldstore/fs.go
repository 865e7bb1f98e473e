package coldstore

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rxtech-lab/tradelog/internal/utils"
	"github.com/rxtech-lab/tradelog/pkg/errors"
)

const (
	metaSuffix    = ".meta.json"
	policyFile    = ".lifecycle.json"
	defaultClass  = "STANDARD"
	dirPermission = 0o755
)

// fsObjectMeta is the sidecar file written next to every object.
type fsObjectMeta struct {
	CreatedAt    string            `json:"created_at"`
	StorageClass string            `json:"storage_class"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// FSBackend implements BlobBackend on the local filesystem. Each container
// is a directory under root; object metadata and storage class live in a
// sidecar JSON next to the blob.
type FSBackend struct {
	root  string
	clock utils.Clock
}

// NewFSBackend creates a filesystem backend rooted at root.
func NewFSBackend(root string, clock utils.Clock) (*FSBackend, error) {
	if err := os.MkdirAll(root, dirPermission); err != nil {
		return nil, errors.Wrap(errors.ErrCodeColdStoreUnavailable, "failed to create backend root", err)
	}

	return &FSBackend{root: root, clock: clock}, nil
}

// EnsureContainer implements BlobBackend. MkdirAll makes this naturally
// idempotent and tolerant of concurrent creators.
func (b *FSBackend) EnsureContainer(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(b.root, name), dirPermission); err != nil {
		return errors.Wrapf(errors.ErrCodeContainerFailed, err, "failed to create container %s", name)
	}

	return nil
}

// Put implements BlobBackend.
func (b *FSBackend) Put(ctx context.Context, container, path string, data []byte, metadata map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full := b.objectPath(container, path)

	if err := os.MkdirAll(filepath.Dir(full), dirPermission); err != nil {
		return errors.Wrapf(errors.ErrCodeUploadFailed, err, "failed to create object directory for %s", path)
	}

	if err := os.WriteFile(full, data, 0o644); err != nil {
		return errors.Wrapf(errors.ErrCodeUploadFailed, err, "failed to write object %s", path)
	}

	meta := fsObjectMeta{
		CreatedAt:    b.clock.Now().Format(time.RFC3339Nano),
		StorageClass: defaultClass,
		Metadata:     metadata,
	}

	return b.writeMeta(full, meta)
}

// Get implements BlobBackend.
func (b *FSBackend) Get(ctx context.Context, container, path string) ([]byte, map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	full := b.objectPath(container, path)

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Newf(errors.ErrCodeObjectNotFound, "object %s/%s not found", container, path)
		}

		return nil, nil, errors.Wrapf(errors.ErrCodeDownloadFailed, err, "failed to read object %s", path)
	}

	meta, err := b.readMeta(full)
	if err != nil {
		return nil, nil, err
	}

	return data, meta.Metadata, nil
}

// List implements BlobBackend.
func (b *FSBackend) List(ctx context.Context, container, prefix string) ([]ObjectMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	containerRoot := filepath.Join(b.root, container)

	var objects []ObjectMeta

	err := filepath.WalkDir(containerRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}

			return err
		}

		if d.IsDir() || strings.HasSuffix(path, metaSuffix) || filepath.Base(path) == policyFile {
			return nil
		}

		rel, err := filepath.Rel(containerRoot, path)
		if err != nil {
			return err
		}

		logical := filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(logical, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		meta, err := b.readMeta(path)
		if err != nil {
			return err
		}

		created, _ := parseMetaTime(meta.CreatedAt)

		objects = append(objects, ObjectMeta{
			Path:         logical,
			Size:         info.Size(),
			CreatedAt:    created,
			StorageClass: meta.StorageClass,
			Metadata:     meta.Metadata,
		})

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDownloadFailed, err, "failed to list container %s", container)
	}

	return objects, nil
}

// Delete implements BlobBackend.
func (b *FSBackend) Delete(ctx context.Context, container, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full := b.objectPath(container, path)

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrCodeObjectNotFound, "object %s/%s not found", container, path)
		}

		return errors.Wrapf(errors.ErrCodeDeleteFailed, err, "failed to delete object %s", path)
	}

	// Sidecar removal is best-effort; an orphaned sidecar is harmless.
	os.Remove(full + metaSuffix)

	return nil
}

// SetStorageClass implements BlobBackend.
func (b *FSBackend) SetStorageClass(ctx context.Context, container, path, class string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full := b.objectPath(container, path)

	meta, err := b.readMeta(full)
	if err != nil {
		return err
	}

	meta.StorageClass = class

	return b.writeMeta(full, meta)
}

// SetLifecyclePolicy implements BlobBackend.
func (b *FSBackend) SetLifecyclePolicy(ctx context.Context, container string, policy LifecyclePolicy) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded, err := json.Marshal(policy)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLifecyclePolicyFailed, "failed to encode lifecycle policy", err)
	}

	path := filepath.Join(b.root, container, policyFile)

	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return errors.Wrapf(errors.ErrCodeLifecyclePolicyFailed, err, "failed to write lifecycle policy for %s", container)
	}

	return nil
}

// GetLifecyclePolicy implements BlobBackend.
func (b *FSBackend) GetLifecyclePolicy(ctx context.Context, container string) (LifecyclePolicy, bool, error) {
	if err := ctx.Err(); err != nil {
		return LifecyclePolicy{}, false, err
	}

	raw, err := os.ReadFile(filepath.Join(b.root, container, policyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return LifecyclePolicy{}, false, nil
		}

		return LifecyclePolicy{}, false, errors.Wrapf(errors.ErrCodeLifecyclePolicyFailed, err, "failed to read lifecycle policy for %s", container)
	}

	var policy LifecyclePolicy
	if err := json.Unmarshal(raw, &policy); err != nil {
		return LifecyclePolicy{}, false, errors.Wrapf(errors.ErrCodeLifecyclePolicyFailed, err, "failed to decode lifecycle policy for %s", container)
	}

	return policy, true, nil
}

func (b *FSBackend) objectPath(container, path string) string {
	return filepath.Join(b.root, container, filepath.FromSlash(path))
}

func (b *FSBackend) writeMeta(objectFullPath string, meta fsObjectMeta) error {
	encoded, err := json.Marshal(meta)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUploadFailed, "failed to encode object metadata", err)
	}

	if err := os.WriteFile(objectFullPath+metaSuffix, encoded, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeUploadFailed, "failed to write object metadata", err)
	}

	return nil
}

func (b *FSBackend) readMeta(objectFullPath string) (fsObjectMeta, error) {
	raw, err := os.ReadFile(objectFullPath + metaSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			// Objects written out-of-band have no sidecar. Treat as defaults.
			return fsObjectMeta{StorageClass: defaultClass}, nil
		}

		return fsObjectMeta{}, errors.Wrap(errors.ErrCodeDownloadFailed, "failed to read object metadata", err)
	}

	var meta fsObjectMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return fsObjectMeta{}, errors.Wrap(errors.ErrCodeDownloadFailed, "failed to decode object metadata", err)
	}

	return meta, nil
}

func parseMetaTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	return time.Parse(time.RFC3339Nano, raw)
}
