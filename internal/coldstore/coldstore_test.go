package coldstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rxtech-lab/tradelog/internal/logger"
	"github.com/rxtech-lab/tradelog/internal/types"
	"github.com/rxtech-lab/tradelog/internal/utils"
	"github.com/rxtech-lab/tradelog/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ColdStoreTestSuite struct {
	suite.Suite
	backend *FSBackend
	store   *ColdStore
	clock   *utils.ManualClock
	ctx     context.Context
}

func (suite *ColdStoreTestSuite) SetupTest() {
	suite.clock = utils.NewManualClock(time.Date(2025, 6, 1, 14, 30, 5, 0, time.UTC))
	suite.ctx = context.Background()

	backend, err := NewFSBackend(suite.T().TempDir(), suite.clock)
	suite.Require().NoError(err)

	suite.backend = backend
	suite.store = New(backend, NewLocalSequence(), suite.clock, logger.NewNopLogger())
}

func TestColdStoreSuite(t *testing.T) {
	suite.Run(t, new(ColdStoreTestSuite))
}

func (suite *ColdStoreTestSuite) policy() LifecyclePolicy {
	return LifecyclePolicy{
		InitialClass:        "STANDARD",
		TransitionClass:     "COOL",
		TransitionAfterDays: 30,
		DeleteAfterDays:     365,
	}
}

func (suite *ColdStoreTestSuite) TestEnsureContainerIdempotent() {
	for i := 0; i < 3; i++ {
		suite.Require().NoError(suite.store.EnsureContainer(suite.ctx, "trade-logs", suite.policy()))
	}

	policy, found, err := suite.backend.GetLifecyclePolicy(suite.ctx, "trade-logs")
	suite.Require().NoError(err)
	suite.True(found)
	suite.Equal(suite.policy(), policy)
}

func (suite *ColdStoreTestSuite) TestCompressedRoundTrip() {
	payload := []byte(`[{"message":"trade filled","symbol":"BTCUSDT"}]`)

	suite.Require().NoError(suite.store.EnsureContainer(suite.ctx, "trade-logs", suite.policy()))
	suite.Require().NoError(suite.store.PutCompressed(suite.ctx, "trade-logs", "logs/a.json.gz", payload))

	// Stored bytes are gzip, not the original payload.
	raw, metadata, err := suite.backend.Get(suite.ctx, "trade-logs", "logs/a.json.gz")
	suite.Require().NoError(err)
	suite.NotEqual(payload, raw)
	suite.Equal("gzip", metadata["content-encoding"])
	suite.Equal("application/json", metadata["content-type"])

	// The round trip restores the payload byte for byte.
	restored, err := suite.store.GetDecompressed(suite.ctx, "trade-logs", "logs/a.json.gz")
	suite.Require().NoError(err)
	suite.Equal(payload, restored)
}

func (suite *ColdStoreTestSuite) TestGetDecompressedPassthrough() {
	suite.Require().NoError(suite.backend.EnsureContainer(suite.ctx, "system-logs"))
	suite.Require().NoError(suite.backend.Put(suite.ctx, "system-logs", "plain.json", []byte(`{}`), nil))

	data, err := suite.store.GetDecompressed(suite.ctx, "system-logs", "plain.json")
	suite.Require().NoError(err)
	suite.Equal([]byte(`{}`), data)
}

func (suite *ColdStoreTestSuite) TestGetMissingObject() {
	_, err := suite.store.GetDecompressed(suite.ctx, "trade-logs", "logs/ghost.json.gz")

	suite.True(errors.HasCode(err, errors.ErrCodeObjectNotFound))
}

func (suite *ColdStoreTestSuite) TestDeleteMissingObject() {
	err := suite.store.DeleteObject(suite.ctx, "trade-logs", "logs/ghost.json.gz")

	suite.True(errors.HasCode(err, errors.ErrCodeObjectNotFound))
}

func (suite *ColdStoreTestSuite) TestArchivePathScheme() {
	path, err := suite.store.ArchivePath(suite.ctx, types.ArchiveKindTrades, "paper-bot", suite.clock.Now())

	suite.Require().NoError(err)
	suite.Equal("logs/2025/06/01/paper-bot/trades_143005_v1.json.gz", path)
}

func (suite *ColdStoreTestSuite) TestArchivePathVersionScope() {
	now := suite.clock.Now()

	// Same (kind, bot, day) scope increments.
	path, err := suite.store.ArchivePath(suite.ctx, types.ArchiveKindTrades, "paper-bot", now)
	suite.Require().NoError(err)
	suite.Contains(path, "_v1.json.gz")

	path, err = suite.store.ArchivePath(suite.ctx, types.ArchiveKindTrades, "paper-bot", now.Add(time.Minute))
	suite.Require().NoError(err)
	suite.Contains(path, "_v2.json.gz")

	// Different bot, kind, or day each start back at v1.
	path, err = suite.store.ArchivePath(suite.ctx, types.ArchiveKindTrades, "futures-bot", now)
	suite.Require().NoError(err)
	suite.Contains(path, "_v1.json.gz")

	path, err = suite.store.ArchivePath(suite.ctx, types.ArchiveKindCognitive, "paper-bot", now)
	suite.Require().NoError(err)
	suite.Contains(path, "_v1.json.gz")

	path, err = suite.store.ArchivePath(suite.ctx, types.ArchiveKindTrades, "paper-bot", now.Add(24*time.Hour))
	suite.Require().NoError(err)
	suite.Contains(path, "_v1.json.gz")
}

func (suite *ColdStoreTestSuite) TestListWithPrefix() {
	suite.Require().NoError(suite.store.EnsureContainer(suite.ctx, "trade-logs", suite.policy()))

	suite.Require().NoError(suite.store.PutCompressed(suite.ctx, "trade-logs", "logs/2025/06/01/bot/a_v1.json.gz", []byte("a")))
	suite.Require().NoError(suite.store.PutCompressed(suite.ctx, "trade-logs", "logs/2025/06/02/bot/b_v1.json.gz", []byte("b")))

	objects, err := suite.store.ListObjects(suite.ctx, "trade-logs", "logs/2025/06/01/")
	suite.Require().NoError(err)
	suite.Require().Len(objects, 1)
	suite.Equal("logs/2025/06/01/bot/a_v1.json.gz", objects[0].Path)

	// Sidecars and the policy file never show up as objects.
	objects, err = suite.store.ListObjects(suite.ctx, "trade-logs", "")
	suite.Require().NoError(err)
	suite.Len(objects, 2)
}

func (suite *ColdStoreTestSuite) TestListMissingContainer() {
	objects, err := suite.store.ListObjects(suite.ctx, "never-created", "")

	suite.NoError(err)
	suite.Empty(objects)
}

func (suite *ColdStoreTestSuite) TestObjectMetadata() {
	suite.Require().NoError(suite.store.EnsureContainer(suite.ctx, "trade-logs", suite.policy()))
	suite.Require().NoError(suite.store.PutCompressed(suite.ctx, "trade-logs", "logs/a.json.gz", []byte("x")))

	objects, err := suite.store.ListObjects(suite.ctx, "trade-logs", "")
	suite.Require().NoError(err)
	suite.Require().Len(objects, 1)

	suite.Equal("STANDARD", objects[0].StorageClass)
	suite.Equal(suite.clock.Now(), objects[0].CreatedAt)
	suite.Positive(objects[0].Size)
}

func (suite *ColdStoreTestSuite) TestSetStorageClass() {
	suite.Require().NoError(suite.store.EnsureContainer(suite.ctx, "trade-logs", suite.policy()))
	suite.Require().NoError(suite.store.PutCompressed(suite.ctx, "trade-logs", "logs/a.json.gz", []byte("x")))

	suite.Require().NoError(suite.backend.SetStorageClass(suite.ctx, "trade-logs", "logs/a.json.gz", "COOL"))

	objects, err := suite.store.ListObjects(suite.ctx, "trade-logs", "")
	suite.Require().NoError(err)
	suite.Require().Len(objects, 1)
	suite.Equal("COOL", objects[0].StorageClass)
}

func (suite *ColdStoreTestSuite) TestDeleteOldVersions() {
	suite.Require().NoError(suite.store.EnsureContainer(suite.ctx, "trade-logs", suite.policy()))

	// Seven versions of the same logical archive, created an hour apart.
	for v := 1; v <= 7; v++ {
		path := fmt.Sprintf("logs/2025/06/01/bot/trades_120000_v%d.json.gz", v)
		suite.Require().NoError(suite.store.PutCompressed(suite.ctx, "trade-logs", path, []byte("x")))
		suite.clock.Advance(time.Hour)
	}

	deleted, err := suite.store.DeleteOldVersions(suite.ctx, "trade-logs", 5)
	suite.Require().NoError(err)
	suite.Equal(2, deleted)

	objects, err := suite.store.ListObjects(suite.ctx, "trade-logs", "")
	suite.Require().NoError(err)
	suite.Require().Len(objects, 5)

	// The two oldest versions are the ones gone.
	for _, obj := range objects {
		suite.NotContains([]string{
			"logs/2025/06/01/bot/trades_120000_v1.json.gz",
			"logs/2025/06/01/bot/trades_120000_v2.json.gz",
		}, obj.Path)
	}
}

func (suite *ColdStoreTestSuite) TestDeleteOldVersionsDistinctBases() {
	suite.Require().NoError(suite.store.EnsureContainer(suite.ctx, "trade-logs", suite.policy()))

	// Two versions each of two different base names: nothing to prune at keep=5.
	for _, path := range []string{
		"logs/2025/06/01/bot/trades_120000_v1.json.gz",
		"logs/2025/06/01/bot/trades_120000_v2.json.gz",
		"logs/2025/06/01/bot/trades_130000_v1.json.gz",
		"logs/2025/06/01/bot/trades_130000_v2.json.gz",
	} {
		suite.Require().NoError(suite.store.PutCompressed(suite.ctx, "trade-logs", path, []byte("x")))
	}

	deleted, err := suite.store.DeleteOldVersions(suite.ctx, "trade-logs", 5)
	suite.Require().NoError(err)
	suite.Equal(0, deleted)
}

func (suite *ColdStoreTestSuite) TestDeleteOldVersionsRejectsZeroKeep() {
	_, err := suite.store.DeleteOldVersions(suite.ctx, "trade-logs", 0)

	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

type SequenceTestSuite struct {
	suite.Suite
}

func TestSequenceSuite(t *testing.T) {
	suite.Run(t, new(SequenceTestSuite))
}

func (suite *SequenceTestSuite) TestLocalSequenceMonotonic() {
	seq := NewLocalSequence()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := seq.Next(ctx, "trades:bot:2025-06-01")
		suite.Require().NoError(err)
		suite.Equal(want, got)
	}
}

func (suite *SequenceTestSuite) TestLocalSequenceScopedKeys() {
	seq := NewLocalSequence()
	ctx := context.Background()

	first, err := seq.Next(ctx, "trades:bot:2025-06-01")
	suite.Require().NoError(err)

	other, err := seq.Next(ctx, "cognitive:bot:2025-06-01")
	suite.Require().NoError(err)

	suite.Equal(int64(1), first)
	suite.Equal(int64(1), other)
}
