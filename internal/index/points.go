package index

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/kailas-cloud/studyvault/internal/domain"
)

// Hash field names. The tag fields are indexed for filtering; the rest are
// payload returned with search hits.
const (
	fieldText        = "text"
	fieldUserID      = "user_id"
	fieldUserName    = "user_name"
	fieldTitle       = "title"
	fieldSourceType  = "source_type"
	fieldLocator     = "source_locator"
	fieldExternalRef = "external_reference_id"
	fieldChunkIndex  = "chunk_index"
	fieldIngestedAt  = "ingestion_timestamp"
)

// deletePageSize bounds how many keys one delete round collects.
const deletePageSize = 200

// Upsert writes records as one batch with all-or-nothing visibility: if any
// write in the batch fails, every key of the batch is removed before the
// error is returned, so search never sees a partially indexed document.
func (c *Collection) Upsert(ctx context.Context, records []domain.VectorRecord) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}

	keys := make([]string, len(records))
	cmds := make([]rueidis.Completed, len(records))
	for i, rec := range records {
		keys[i] = c.pointKey(rec.ID)
		cmd := c.store.b().Hset().Key(keys[i]).FieldValue()
		for k, v := range buildHashFields(rec) {
			cmd = cmd.FieldValue(k, v)
		}
		cmds[i] = cmd.Build()
	}

	results := c.store.doMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			c.rollback(keys)
			return nil, &Error{Op: OpHSet, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
	}

	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return ids, nil
}

// rollback removes batch keys after a partial write failure. Best effort on
// a fresh context: the caller's context may already be canceled.
func (c *Collection) rollback(keys []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := c.store.b().Del().Key(keys...).Build()
	if err := c.store.do(ctx, cmd).Error(); err != nil {
		c.logger.Error("failed to roll back partial upsert",
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
}

// DeleteByRef removes every point of one document owned by one user and
// returns the number of points removed. Deleting an absent document (or a
// collection that was never created) returns 0 without error.
func (c *Collection) DeleteByRef(ctx context.Context, externalRef, userID int64) (int, error) {
	query := fmt.Sprintf("@%s:{%d} @%s:{%d}", fieldExternalRef, externalRef, fieldUserID, userID)

	deleted := 0
	for {
		keys, err := c.searchKeys(ctx, query, deletePageSize)
		if err != nil {
			if isRedisErr(unwrapStoreErr(err), "unknown index name") {
				return deleted, nil
			}
			return deleted, err
		}
		if len(keys) == 0 {
			return deleted, nil
		}

		cmd := c.store.b().Del().Key(keys...).Build()
		n, err := c.store.do(ctx, cmd).AsInt64()
		if err != nil {
			return deleted, &Error{Op: OpDel, Err: err}
		}
		deleted += int(n)

		// A short page means the matching set is exhausted.
		if len(keys) < deletePageSize {
			return deleted, nil
		}
	}
}

// searchKeys runs a filter-only FT.SEARCH returning just the matching keys.
func (c *Collection) searchKeys(ctx context.Context, query string, limit int) ([]string, error) {
	args := []string{
		c.indexName(), query,
		"NOCONTENT",
		"LIMIT", "0", strconv.Itoa(limit),
		"DIALECT", "2",
	}
	cmd := c.store.b().Arbitrary(OpSearch).Args(args...).Build()
	raw, err := c.store.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &Error{Op: OpSearch, Err: err}
	}
	if len(raw) <= 1 {
		return nil, nil
	}

	keys := make([]string, 0, len(raw)-1)
	for _, msg := range raw[1:] {
		key, err := msg.ToString()
		if err != nil {
			return nil, &Error{Op: OpSearch, Err: fmt.Errorf("parse key: %w", err)}
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// buildHashFields flattens a record into the HSET field map.
func buildHashFields(rec domain.VectorRecord) map[string]string {
	p := rec.Payload
	return map[string]string{
		vectorField:      vectorToBytes(rec.Vector),
		fieldText:        p.Text,
		fieldUserID:      strconv.FormatInt(p.UserID, 10),
		fieldUserName:    p.UserName,
		fieldTitle:       p.Title,
		fieldSourceType:  string(p.SourceType),
		fieldLocator:     p.SourceLocator,
		fieldExternalRef: strconv.FormatInt(p.ExternalRef, 10),
		fieldChunkIndex:  strconv.Itoa(p.ChunkIndex),
		fieldIngestedAt:  p.IngestedAt.UTC().Format(time.RFC3339Nano),
	}
}

// parsePayload rebuilds a payload from returned hash fields.
func parsePayload(fields map[string]string) domain.Payload {
	p := domain.Payload{
		Text:          fields[fieldText],
		UserName:      fields[fieldUserName],
		Title:         fields[fieldTitle],
		SourceType:    domain.SourceType(fields[fieldSourceType]),
		SourceLocator: fields[fieldLocator],
	}
	p.UserID, _ = strconv.ParseInt(fields[fieldUserID], 10, 64)
	p.ExternalRef, _ = strconv.ParseInt(fields[fieldExternalRef], 10, 64)
	p.ChunkIndex, _ = strconv.Atoi(fields[fieldChunkIndex])
	if ts, err := time.Parse(time.RFC3339Nano, fields[fieldIngestedAt]); err == nil {
		p.IngestedAt = ts
	}
	return p
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
