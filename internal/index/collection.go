package index

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/kailas-cloud/studyvault/internal/domain"
)

// vectorField is the hash field holding the embedding blob.
const vectorField = "embedding"

// distanceMetric is fixed: the whole collection uses cosine similarity.
const distanceMetric = "COSINE"

// CollectionConfig describes the vector collection.
type CollectionConfig struct {
	// Name of the logical collection (one shared by all users).
	Name string
	// KeyPrefix namespaces all hash keys in the store.
	KeyPrefix string
	// Dimension of every vector in the collection.
	Dimension int
	Logger    *zap.Logger
}

// Collection is the vector collection handle. User isolation is enforced
// through the user_id payload field and query filters, never through
// separate collections.
type Collection struct {
	store  *Store
	name   string
	prefix string
	dim    int
	logger *zap.Logger
}

// NewCollection creates a collection handle over an existing store.
func NewCollection(store *Store, cfg CollectionConfig) *Collection {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection{
		store:  store,
		name:   cfg.Name,
		prefix: cfg.KeyPrefix,
		dim:    cfg.Dimension,
		logger: logger,
	}
}

// indexName returns the FT index name for this collection.
func (c *Collection) indexName() string {
	return c.prefix + c.name + ":idx"
}

// keyPrefix returns the hash key prefix for points in this collection.
func (c *Collection) keyPrefix() string {
	return c.prefix + c.name + ":"
}

func (c *Collection) pointKey(id string) string {
	return c.keyPrefix() + id
}

// EnsureCollection creates the FT index if absent and verifies dimension and
// distance metric when it already exists. Safe to call before every write.
func (c *Collection) EnsureCollection(ctx context.Context) error {
	cmd := c.store.b().Arbitrary(OpIndexInfo).Args(c.indexName()).Build()
	raw, err := c.store.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") {
			return c.create(ctx)
		}
		return &Error{Op: OpIndexInfo, Err: err}
	}

	dim, metric, err := parseIndexInfo(raw)
	if err != nil {
		return &Error{Op: OpIndexInfo, Err: err}
	}
	if dim != c.dim || !strings.EqualFold(metric, distanceMetric) {
		return fmt.Errorf(
			"collection %s has dim=%d metric=%s, want dim=%d metric=%s: %w",
			c.name, dim, metric, c.dim, distanceMetric, domain.ErrDimensionMismatch,
		)
	}
	return nil
}

// create issues the FT.CREATE for the collection schema: tag fields for
// exact-match filters, plus the vector field.
func (c *Collection) create(ctx context.Context) error {
	args := []string{
		c.indexName(),
		"ON", "HASH",
		"PREFIX", "1", c.keyPrefix(),
		"SCHEMA",
		fieldUserID, "TAG",
		fieldExternalRef, "TAG",
		fieldSourceType, "TAG",
		vectorField, "VECTOR", "FLAT", "6",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(c.dim),
		"DISTANCE_METRIC", distanceMetric,
	}

	cmd := c.store.b().Arbitrary(OpCreateIndex).Args(args...).Build()
	if err := c.store.do(ctx, cmd).Error(); err != nil {
		// Lost a creation race: the index now exists, which is what we want.
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return &Error{Op: OpCreateIndex, Err: err}
	}

	c.logger.Info("created vector collection",
		zap.String("collection", c.name),
		zap.Int("dimension", c.dim),
	)
	return nil
}

// parseIndexInfo pulls DIM and DISTANCE_METRIC of the vector attribute out
// of an FT.INFO reply.
func parseIndexInfo(raw []rueidis.RedisMessage) (dim int, metric string, err error) {
	attrs, err := infoSection(raw, "attributes")
	if err != nil {
		return 0, "", err
	}

	for _, attr := range attrs {
		fields, err := attr.ToArray()
		if err != nil {
			continue
		}
		strs := messageStrings(fields)
		if !isVectorAttribute(strs) {
			continue
		}
		for i := 0; i+1 < len(strs); i++ {
			switch strings.ToUpper(strs[i]) {
			case "DIM":
				dim, _ = strconv.Atoi(strs[i+1])
			case "DISTANCE_METRIC":
				metric = strs[i+1]
			}
		}
		if dim > 0 {
			return dim, metric, nil
		}
	}
	return 0, "", fmt.Errorf("no vector attribute in index info")
}

// infoSection finds a named section in the alternating key/value FT.INFO reply.
func infoSection(raw []rueidis.RedisMessage, name string) ([]rueidis.RedisMessage, error) {
	for i := 0; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		if key == name {
			return raw[i+1].ToArray()
		}
	}
	return nil, fmt.Errorf("index info has no %s section", name)
}

func isVectorAttribute(strs []string) bool {
	for i := 0; i+1 < len(strs); i++ {
		if strings.EqualFold(strs[i], "identifier") && strs[i+1] == vectorField {
			return true
		}
	}
	return false
}

func messageStrings(msgs []rueidis.RedisMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		s, err := m.ToString()
		if err != nil {
			s = ""
		}
		out = append(out, s)
	}
	return out
}
