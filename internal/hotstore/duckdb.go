package hotstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/tradelog/internal/logger"
	"github.com/rxtech-lab/tradelog/internal/utils"
	"github.com/rxtech-lab/tradelog/pkg/errors"
	"go.uber.org/zap"
)

// scalar columns mirrored out of the document for filtering and ordering.
var queryableColumns = map[string]string{
	"key":          "key",
	"timestamp":    "created_at",
	"created_at":   "created_at",
	"expires_at":   "expires_at",
	"level":        "level",
	"category":     "category",
	"bot_type":     "bot_type",
	"acknowledged": "acknowledged",
	"resolved":     "resolved",
}

// DuckDBStore implements Store on an embedded DuckDB database. Records live
// in a single table keyed by (collection, key) with the document mirrored
// into a JSON column plus indexed scalar columns.
type DuckDBStore struct {
	db     *sql.DB
	clock  utils.Clock
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBStore opens (or creates) the database at path. Use ":memory:"
// for an ephemeral store.
func NewDuckDBStore(path string, clock utils.Clock, log *logger.Logger) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHotStoreUnavailable, "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeHotStoreUnavailable, "failed to connect to database", err)
	}

	store := &DuckDBStore{
		db:     db,
		clock:  clock,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

func (s *DuckDBStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS hot_records (
			collection TEXT NOT NULL,
			key TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP,
			level TEXT,
			category TEXT,
			bot_type TEXT,
			acknowledged BOOLEAN DEFAULT FALSE,
			resolved BOOLEAN DEFAULT FALSE,
			data TEXT NOT NULL,
			PRIMARY KEY (collection, key)
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeHotStoreUnavailable, "failed to create hot_records table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sequences (
			name TEXT PRIMARY KEY,
			value BIGINT NOT NULL
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeHotStoreUnavailable, "failed to create sequences table", err)
	}

	return nil
}

// Upsert implements Store.
func (s *DuckDBStore) Upsert(ctx context.Context, collection, key string, data map[string]any, expiresAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUpsertFailed, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := s.mergeWrite(ctx, tx, collection, key, data, expiresAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeUpsertFailed, "failed to commit upsert", err)
	}

	return nil
}

// UpsertBatch implements Store. The batch is one transaction: either every
// write lands or none do, so the caller can safely retry per record.
func (s *DuckDBStore) UpsertBatch(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBatchUpsertFailed, "failed to begin batch transaction", err)
	}
	defer tx.Rollback()

	for _, w := range writes {
		if err := s.mergeWrite(ctx, tx, w.Collection, w.Key, w.Data, w.ExpiresAt); err != nil {
			return errors.Wrapf(errors.ErrCodeBatchUpsertFailed, err, "batch write failed at %s/%s", w.Collection, w.Key)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeBatchUpsertFailed, "failed to commit batch", err)
	}

	return nil
}

// mergeWrite reads the existing document, overlays the provided fields, and
// replaces the row. Existing expiry and creation time survive unless the
// write carries its own expiry.
func (s *DuckDBStore) mergeWrite(ctx context.Context, tx *sql.Tx, collection, key string, data map[string]any, newExpiry time.Time) error {
	now := s.clock.Now()

	var (
		existingData sql.NullString
		createdAt    = now
		expiresAt    sql.NullTime
		acknowledged bool
		resolved     bool
	)

	row := tx.QueryRowContext(ctx,
		`SELECT data, created_at, expires_at, acknowledged, resolved FROM hot_records WHERE collection = ? AND key = ?`,
		collection, key)

	var existingCreated sql.NullTime

	err := row.Scan(&existingData, &existingCreated, &expiresAt, &acknowledged, &resolved)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrap(errors.ErrCodeUpsertFailed, "failed to read existing record", err)
	}

	merged := make(map[string]any, len(data))

	if existingData.Valid && existingData.String != "" {
		if err := json.Unmarshal([]byte(existingData.String), &merged); err != nil {
			return errors.Wrap(errors.ErrCodeUpsertFailed, "failed to decode existing record", err)
		}
	}

	for k, v := range data {
		merged[k] = v
	}

	if existingCreated.Valid {
		createdAt = existingCreated.Time
	}

	if !newExpiry.IsZero() {
		expiresAt = sql.NullTime{Time: newExpiry, Valid: true}
	}

	encoded, err := json.Marshal(merged)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSerializeFailed, "failed to encode record", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO hot_records
			(collection, key, created_at, expires_at, level, category, bot_type, acknowledged, resolved, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		collection, key, createdAt, expiresAt,
		stringField(merged, "level"), stringField(merged, "category"), stringField(merged, "bot_type"),
		acknowledged, resolved, string(encoded))
	if err != nil {
		return errors.Wrap(errors.ErrCodeUpsertFailed, "failed to write record", err)
	}

	return nil
}

// Query implements Store.
func (s *DuckDBStore) Query(ctx context.Context, collection string, q Query) ([]map[string]any, error) {
	builder := s.sq.
		Select("key", "data").
		From("hot_records").
		Where(squirrel.Eq{"collection": collection})

	for _, f := range q.Filters {
		column, ok := queryableColumns[f.Field]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "field %q is not queryable", f.Field)
		}

		switch f.Op {
		case "==":
			builder = builder.Where(squirrel.Eq{column: f.Value})
		case "!=":
			builder = builder.Where(squirrel.NotEq{column: f.Value})
		case ">":
			builder = builder.Where(squirrel.Gt{column: f.Value})
		case ">=":
			builder = builder.Where(squirrel.GtOrEq{column: f.Value})
		case "<":
			builder = builder.Where(squirrel.Lt{column: f.Value})
		case "<=":
			builder = builder.Where(squirrel.LtOrEq{column: f.Value})
		default:
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported filter op %q", f.Op)
		}
	}

	if q.OrderBy != "" {
		column, ok := queryableColumns[q.OrderBy]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "field %q is not orderable", q.OrderBy)
		}

		direction := "ASC"
		if q.Descending {
			direction = "DESC"
		}

		builder = builder.OrderBy(column + " " + direction)
	}

	if q.Limit > 0 {
		builder = builder.Limit(uint64(q.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", err)
	}
	defer rows.Close()

	var records []map[string]any

	for rows.Next() {
		var (
			key  string
			data string
		)

		if err := rows.Scan(&key, &data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan record", err)
		}

		record := make(map[string]any)
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to decode record", err)
		}

		record["_key"] = key

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating records", err)
	}

	return records, nil
}

// Count implements Store.
func (s *DuckDBStore) Count(ctx context.Context, collection string) (int64, error) {
	var count int64

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM hot_records WHERE collection = ?`, collection).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count records", err)
	}

	return count, nil
}

// DeleteExpired implements Store. One bounded page per call: select at most
// batchLimit expired keys, then delete them.
func (s *DuckDBStore) DeleteExpired(ctx context.Context, collection string, cutoff time.Time, batchLimit int) (int, error) {
	if batchLimit <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "batchLimit must be positive")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT key FROM hot_records
		WHERE collection = ? AND expires_at IS NOT NULL AND expires_at <= ?
		LIMIT ?`,
		collection, cutoff, batchLimit)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeDeleteFailed, "failed to select expired records", err)
	}

	var keys []string

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()

			return 0, errors.Wrap(errors.ErrCodeDeleteFailed, "failed to scan expired key", err)
		}

		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		rows.Close()

		return 0, errors.Wrap(errors.ErrCodeDeleteFailed, "error iterating expired keys", err)
	}

	rows.Close()

	if len(keys) == 0 {
		return 0, nil
	}

	return s.Delete(ctx, collection, keys)
}

// Delete implements Store.
func (s *DuckDBStore) Delete(ctx context.Context, collection string, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	query, args, err := s.sq.
		Delete("hot_records").
		Where(squirrel.Eq{"collection": collection, "key": keys}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeDeleteFailed, "failed to build delete", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeDeleteFailed, "failed to delete records", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		// DuckDB reports affected rows; treat a missing count as full success.
		s.logger.Warn("delete affected-rows unavailable", zap.Error(err))

		return len(keys), nil
	}

	return int(affected), nil
}

// Acknowledge implements Store.
func (s *DuckDBStore) Acknowledge(ctx context.Context, collection, key string) error {
	return s.setFlag(ctx, collection, key, "acknowledged")
}

// Resolve implements Store.
func (s *DuckDBStore) Resolve(ctx context.Context, collection, key string) error {
	return s.setFlag(ctx, collection, key, "resolved")
}

func (s *DuckDBStore) setFlag(ctx context.Context, collection, key, column string) error {
	query, args, err := s.sq.
		Update("hot_records").
		Set(column, true).
		Where(squirrel.Eq{"collection": collection, "key": key}).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeUpsertFailed, "failed to build update", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeUpsertFailed, err, "failed to set %s", column)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return errors.Newf(errors.ErrCodeRecordNotFound, "record %s/%s not found", collection, key)
	}

	return nil
}

// NextSequence implements Store.
func (s *DuckDBStore) NextSequence(ctx context.Context, name string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeSequenceFailed, "failed to begin sequence transaction", err)
	}
	defer tx.Rollback()

	var value int64

	err = tx.QueryRowContext(ctx, `SELECT value FROM sequences WHERE name = ?`, name).Scan(&value)
	if err != nil && err != sql.ErrNoRows {
		return 0, errors.Wrap(errors.ErrCodeSequenceFailed, "failed to read sequence", err)
	}

	value++

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO sequences (name, value) VALUES (?, ?)`, name, value)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeSequenceFailed, "failed to advance sequence", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeSequenceFailed, "failed to commit sequence", err)
	}

	return value, nil
}

// Close implements Store.
func (s *DuckDBStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func stringField(data map[string]any, field string) string {
	if v, ok := data[field].(string); ok {
		return v
	}

	return ""
}
