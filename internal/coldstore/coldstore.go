package coldstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rxtech-lab/tradelog/internal/logger"
	"github.com/rxtech-lab/tradelog/internal/types"
	"github.com/rxtech-lab/tradelog/internal/utils"
	"github.com/rxtech-lab/tradelog/pkg/errors"
	"go.uber.org/zap"
)

// versionSuffix matches the _v{n} part of an archive file name.
var versionSuffix = regexp.MustCompile(`_v\d+(\.[a-z0-9.]+)$`)

// ColdStore layers compression, archive path/versioning, and version pruning
// on top of a BlobBackend.
type ColdStore struct {
	backend BlobBackend
	seq     Sequence
	clock   utils.Clock
	logger  *logger.Logger
}

// New creates a ColdStore.
func New(backend BlobBackend, seq Sequence, clock utils.Clock, log *logger.Logger) *ColdStore {
	return &ColdStore{
		backend: backend,
		seq:     seq,
		clock:   clock,
		logger:  log,
	}
}

// Backend exposes the underlying blob backend for lifecycle enforcement.
func (c *ColdStore) Backend() BlobBackend {
	return c.backend
}

// EnsureContainer creates the container if absent and installs its lifecycle
// policy. Idempotent: safe to call on every flush and lifecycle run.
func (c *ColdStore) EnsureContainer(ctx context.Context, name string, policy LifecyclePolicy) error {
	if err := c.backend.EnsureContainer(ctx, name); err != nil {
		return err
	}

	return c.backend.SetLifecyclePolicy(ctx, name, policy)
}

// PutCompressed gzips the payload and uploads it with content-encoding
// metadata so downstream readers decompress transparently.
func (c *ColdStore) PutCompressed(ctx context.Context, container, path string, data []byte) error {
	var buf bytes.Buffer

	writer := gzip.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeCompressionFailed, "failed to compress payload", err)
	}

	if err := writer.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeCompressionFailed, "failed to finish compression", err)
	}

	metadata := map[string]string{
		"content-encoding": "gzip",
		"content-type":     "application/json",
	}

	return c.backend.Put(ctx, container, path, buf.Bytes(), metadata)
}

// GetDecompressed downloads an object and inflates it when the metadata says
// it is gzip-encoded.
func (c *ColdStore) GetDecompressed(ctx context.Context, container, path string) ([]byte, error) {
	data, metadata, err := c.backend.Get(ctx, container, path)
	if err != nil {
		return nil, err
	}

	if metadata["content-encoding"] != "gzip" {
		return data, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeCompressionFailed, err, "failed to open gzip stream for %s", path)
	}
	defer reader.Close()

	inflated, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeCompressionFailed, err, "failed to decompress %s", path)
	}

	return inflated, nil
}

// ListObjects returns metadata for every object under the prefix.
func (c *ColdStore) ListObjects(ctx context.Context, container, prefix string) ([]ObjectMeta, error) {
	return c.backend.List(ctx, container, prefix)
}

// DeleteObject removes one object.
func (c *ColdStore) DeleteObject(ctx context.Context, container, path string) error {
	return c.backend.Delete(ctx, container, path)
}

// ArchivePath builds the versioned path for a new archive object:
// logs/{yyyy}/{mm}/{dd}/{botType}/{kind}_{HHMMSS}_v{n}.json.gz.
// The version is scoped to (kind, botType, day).
func (c *ColdStore) ArchivePath(ctx context.Context, kind types.ArchiveKind, botType string, at time.Time) (string, error) {
	at = at.UTC()

	scope := fmt.Sprintf("%s:%s:%s", kind, botType, at.Format("2006-01-02"))

	version, err := c.seq.Next(ctx, scope)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("logs/%04d/%02d/%02d/%s/%s_%s_v%d.json.gz",
		at.Year(), at.Month(), at.Day(), botType, kind, at.Format("150405"), version), nil
}

// DeleteOldVersions groups objects by base name (path minus the version
// suffix), keeps the keep most-recently-created per group, and deletes the
// rest. Returns the number of deleted objects.
func (c *ColdStore) DeleteOldVersions(ctx context.Context, container string, keep int) (int, error) {
	if keep <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "keep must be positive")
	}

	objects, err := c.backend.List(ctx, container, "")
	if err != nil {
		return 0, err
	}

	groups := make(map[string][]ObjectMeta)

	for _, obj := range objects {
		groups[baseName(obj.Path)] = append(groups[baseName(obj.Path)], obj)
	}

	deleted := 0

	for base, group := range groups {
		if len(group) <= keep {
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			return group[i].CreatedAt.After(group[j].CreatedAt)
		})

		for _, victim := range group[keep:] {
			if err := c.backend.Delete(ctx, container, victim.Path); err != nil {
				return deleted, errors.Wrapf(errors.ErrCodePruneFailed, err, "failed to prune %s (base %s)", victim.Path, base)
			}

			deleted++
		}
	}

	if deleted > 0 {
		c.logger.Info("pruned archive versions",
			zap.String("container", container),
			zap.Int("deleted", deleted),
			zap.Int("keep", keep),
		)
	}

	return deleted, nil
}

// baseName strips the version suffix from an archive path so all versions of
// the same logical object group together.
func baseName(path string) string {
	if m := versionSuffix.FindStringSubmatchIndex(path); m != nil {
		return path[:m[0]] + path[m[2]:m[3]]
	}

	// No version suffix. Group by full path minus extension.
	if idx := strings.Index(path, "."); idx > 0 {
		return path[:idx]
	}

	return path
}
