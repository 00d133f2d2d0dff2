package index

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/studyvault/internal/domain"
)

// scoreField is the distance field RediSearch attaches to KNN hits.
const scoreField = "__" + vectorField + "_score"

var returnFields = []string{
	fieldText, fieldUserID, fieldUserName, fieldTitle,
	fieldSourceType, fieldLocator, fieldExternalRef,
	fieldChunkIndex, fieldIngestedAt, scoreField,
}

// Search runs a user-scoped KNN query and returns hits ordered by descending
// similarity; equal scores are broken by most recent ingestion timestamp.
func (c *Collection) Search(
	ctx context.Context, vector []float32, userID int64, topK int,
) ([]domain.Match, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector is required")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	query := fmt.Sprintf("(@%s:{%d})=>[KNN %d @%s $BLOB]", fieldUserID, userID, topK, vectorField)

	args := []string{c.indexName(), query}
	args = append(args, "RETURN", strconv.Itoa(len(returnFields)))
	args = append(args, returnFields...)
	args = append(args,
		"SORTBY", scoreField,
		"PARAMS", "2", "BLOB", vectorToBytes(vector),
		"LIMIT", "0", strconv.Itoa(topK),
		"DIALECT", "2",
	)

	cmd := c.store.b().Arbitrary(OpSearch).Args(args...).Build()
	raw, err := c.store.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") {
			return nil, nil
		}
		return nil, &Error{Op: OpSearch, Err: err}
	}

	matches, err := parseKNNReply(raw, c.keyPrefix())
	if err != nil {
		return nil, &Error{Op: OpSearch, Err: err}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Payload.IngestedAt.After(matches[j].Payload.IngestedAt)
	})
	return matches, nil
}

// parseKNNReply converts the RESP2 FT.SEARCH reply ([total, key, fields,
// key, fields, ...]) into matches. Cosine distance is converted to
// similarity (1 - distance) so that higher means more relevant.
func parseKNNReply(raw []rueidis.RedisMessage, prefix string) ([]domain.Match, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 || len(raw) < 3 {
		return nil, nil
	}

	matches := make([]domain.Match, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			return nil, fmt.Errorf("parse key: %w", err)
		}

		fieldMsgs, err := raw[i+1].ToArray()
		if err != nil {
			return nil, fmt.Errorf("parse fields for %s: %w", key, err)
		}
		fields := make(map[string]string, len(fieldMsgs)/2)
		for j := 0; j+1 < len(fieldMsgs); j += 2 {
			k, kerr := fieldMsgs[j].ToString()
			v, verr := fieldMsgs[j+1].ToString()
			if kerr != nil || verr != nil {
				continue
			}
			fields[k] = v
		}

		score := 0.0
		if distStr, ok := fields[scoreField]; ok {
			if dist, err := strconv.ParseFloat(distStr, 64); err == nil {
				score = 1 - dist
			}
		}

		matches = append(matches, domain.Match{
			ID:      strings.TrimPrefix(key, prefix),
			Score:   score,
			Payload: parsePayload(fields),
		})
	}
	return matches, nil
}
