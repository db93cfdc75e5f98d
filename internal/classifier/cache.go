package classifier

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"screening-workers/internal/common/logger"
	"screening-workers/internal/common/metrics"
	"screening-workers/internal/scoring"
)

const cacheKeyPrefix = "screening:prediction:"

// CachedModel is a Redis read-through cache in front of another Model. Labels are
// keyed by model id and the three scores. Redis errors are logged and bypassed.
type CachedModel struct {
	inner   Model
	redis   *redis.Client
	modelID string
	ttl     time.Duration
	logger  logger.Logger
}

func NewCachedModel(inner Model, rdb *redis.Client, modelID string, ttl time.Duration, log logger.Logger) *CachedModel {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &CachedModel{
		inner:   inner,
		redis:   rdb,
		modelID: modelID,
		ttl:     ttl,
		logger:  log.WithFields(map[string]interface{}{"component": "classifier-cache"}),
	}
}

func (m *CachedModel) Predict(ctx context.Context, rows []scoring.CategoryScores) ([]int, error) {
	if len(rows) == 0 {
		return []int{}, nil
	}

	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = m.cacheKey(row)
	}

	labels := make([]int, len(rows))
	misses := make([]int, 0, len(rows))

	cached, err := m.redis.MGet(ctx, keys...).Result()
	if err != nil {
		m.logger.Warn("Prediction cache read failed", map[string]interface{}{"error": err})
		metrics.ClassifierCacheLookups.WithLabelValues("error").Inc()
		return m.inner.Predict(ctx, rows)
	}

	for i, v := range cached {
		label, ok := parseCachedLabel(v)
		if !ok {
			misses = append(misses, i)
			continue
		}
		labels[i] = label
	}
	metrics.ClassifierCacheLookups.WithLabelValues("hit").Add(float64(len(rows) - len(misses)))
	metrics.ClassifierCacheLookups.WithLabelValues("miss").Add(float64(len(misses)))

	if len(misses) == 0 {
		return labels, nil
	}

	pending := make([]scoring.CategoryScores, len(misses))
	for j, idx := range misses {
		pending[j] = rows[idx]
	}

	fresh, err := m.inner.Predict(ctx, pending)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(pending) {
		return nil, fmt.Errorf("classifier returned %d labels for %d rows", len(fresh), len(pending))
	}

	for j, idx := range misses {
		labels[idx] = fresh[j]
		if fresh[j] != 0 && fresh[j] != 1 {
			continue
		}
		if err := m.redis.Set(ctx, keys[idx], strconv.Itoa(fresh[j]), m.ttl).Err(); err != nil {
			m.logger.Warn("Prediction cache write failed", map[string]interface{}{"error": err})
		}
	}
	return labels, nil
}

func (m *CachedModel) Close() error {
	return m.inner.Close()
}

func (m *CachedModel) cacheKey(row scoring.CategoryScores) string {
	h := sha1.New()
	_, _ = io.WriteString(h, m.modelID)
	for _, v := range features(row) {
		_, _ = io.WriteString(h, "|")
		_, _ = io.WriteString(h, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func parseCachedLabel(v interface{}) (int, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	label, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return label, true
}
